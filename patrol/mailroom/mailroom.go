// Package mailroom handles the service inbox: moderator invitations (and the
// join workflow they trigger), removal notices, and stray mail.
package mailroom

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/botguard/botguard/patrol/engine"
	"github.com/botguard/botguard/platform"
)

var (
	invitePattern  = regexp.MustCompile(`(?i)^invitation to moderate [\w-]+$`)
	removalPattern = regexp.MustCompile(`(?i)has been removed as a moderator from [\w-]+$`)
)

// community types an invitation may be accepted for
var joinableTypes = map[string]bool{
	"public":       true,
	"restricted":   true,
	"premium_only": true,
	"user":         true,
}

// platform accounts whose mail is noise
var systemSenders = map[string]bool{
	"mod_mailer": true,
	"platform":   true,
}

const inboxFetchLimit = 10

// Mailroom consumes unread inbox messages. It owns no state of its own; the
// community set is mutated through the engine when an invitation is accepted.
type Mailroom struct {
	Logger *slog.Logger
	Engine *engine.Engine
}

func NewMailroom(logger *slog.Logger, eng *engine.Engine) *Mailroom {
	return &Mailroom{Logger: logger, Engine: eng}
}

func (m *Mailroom) CheckMail(ctx context.Context) error {
	m.Logger.Info("checking mail")
	msgs, err := m.Engine.Client.UnreadMessages(ctx, inboxFetchLimit)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		if err := m.handleMessage(ctx, msg); err != nil {
			m.Logger.Error("error handling message", "id", msg.ID, "err", err)
		}
	}
	return nil
}

func (m *Mailroom) handleMessage(ctx context.Context, msg platform.Message) error {
	client := m.Engine.Client

	if systemSenders[msg.Author] {
		return client.MarkRead(ctx, msg.ID)
	}

	// direct mail from an account rather than a community
	if msg.Community == "" {
		if err := client.MarkRead(ctx, msg.ID); err != nil {
			return err
		}
		if msg.Distinguished != "admin" {
			reply := fmt.Sprintf("Please send community mail to %s if you would like to get in touch.", m.Engine.Home)
			if err := client.ReplyMessage(ctx, msg.ID, reply); err != nil {
				m.Logger.Error("error replying to direct mail", "id", msg.ID, "err", err)
			}
		}
		return nil
	}

	switch {
	case invitePattern.MatchString(msg.Subject):
		return m.handleInvite(ctx, msg)
	case removalPattern.MatchString(msg.Subject):
		if err := client.MarkRead(ctx, msg.ID); err != nil {
			return err
		}
		// rebuild the community set so enforcement stops immediately
		if err := m.Engine.Communities.Reload(ctx, client); err != nil {
			return err
		}
		if !m.Engine.Communities.Contains(msg.Community) {
			m.Logger.Info("removed as moderator", "community", msg.Community)
		}
		return nil
	default:
		return client.MarkRead(ctx, msg.ID)
	}
}

func (m *Mailroom) handleInvite(ctx context.Context, msg platform.Message) error {
	client := m.Engine.Client
	m.Logger.Info("invited to moderate", "community", msg.Community)

	joined, reason := m.JoinCommunity(ctx, msg.Community)
	if err := client.MarkRead(ctx, msg.ID); err != nil {
		return err
	}

	if !joined {
		if reason == "error" {
			m.Logger.Info("failure accepting invite", "community", msg.Community)
			return nil
		}
		m.Logger.Info("declining invite", "community", msg.Community, "reason", reason)
		reply := fmt.Sprintf("This service isn't really needed on non-public communities due to very limited automated"+
			" activity. If you believe this was sent in error, please contact the moderators of %s.", m.Engine.Home)
		if err := client.ReplyMessage(ctx, msg.ID, reply); err != nil {
			m.Logger.Error("error replying to declined invite", "id", msg.ID, "err", err)
		}
		return nil
	}

	m.Logger.Info("joined community", "community", msg.Community)
	held, err := client.CommunityCapabilities(ctx, msg.Community, m.Engine.Self)
	if err != nil {
		return err
	}
	if held.Has(platform.CapAll) {
		return nil
	}
	if !held.Has(platform.CapAccess) || !held.Has(platform.CapPosts) {
		current := strings.Join(held.Strings(), ", ")
		if current == "" {
			current = "*no capabilities*"
		}
		m.Logger.Info("incorrect capabilities", "community", msg.Community, "held", current)
		reply := fmt.Sprintf("Thank you for adding %s!\n\nThis service works best with `access` and `posts`"+
			" capabilities (current capabilities: %s). For more information, please see the guide in %s.",
			m.Engine.Self, current, m.Engine.Home)
		if err := client.ReplyMessage(ctx, msg.ID, reply); err != nil {
			m.Logger.Error("error replying with capability guidance", "id", msg.ID, "err", err)
		}
	}
	return nil
}

// JoinCommunity applies the invitation acceptance policy: quarantined and
// non-public community types are rejected with a reason, anything else is
// joined and added to the monitored set. Reason is one of "quarantined", the
// community type, or "error".
func (m *Mailroom) JoinCommunity(ctx context.Context, name string) (bool, string) {
	client := m.Engine.Client

	info, err := client.CommunityInfo(ctx, name)
	if err != nil {
		m.Logger.Error("error inspecting community", "community", name, "err", err)
		return false, "error"
	}
	if info.Quarantined {
		return false, "quarantined"
	}
	if !joinableTypes[info.Type] {
		return false, info.Type
	}

	if err := client.AcceptInvite(ctx, name); err != nil {
		m.Logger.Error("error joining community", "community", name, "err", err)
		return false, "error"
	}
	m.Engine.Communities.Add(*info)
	return true, ""
}
