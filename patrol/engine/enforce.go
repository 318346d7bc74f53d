package engine

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Message shown to the banned account. The dispute path goes through the home
// community's moderators, never through replies to the ban notice.
const banMessageTemplate = "Automated accounts are not welcome in %s.\n\n" +
	"This action was performed automatically. If you wish to dispute whether " +
	"this account is automated, please contact the moderators of %s rather " +
	"than replying to this message."

// banNote is the attribution written to the (moderator-visible) ban note.
// ReverseEnforcement recognizes the service's own bans by finding the actor
// name inside the note, so the actor name must stay part of this format.
func (eng *Engine) banNote(account, permalink string) string {
	date := time.Now().UTC().Format("2006-01-02")
	return fmt.Sprintf("/u/%s banned by /u/%s at %s for %s", account, eng.Self, date, permalink)
}

// noteMatchesSignature reports whether a ban note attributes the ban to this
// service. Plain substring match on the actor name, kept bug-compatible with
// historical ban notes; empty notes never match.
func (eng *Engine) noteMatchesSignature(note string) bool {
	return note != "" && strings.Contains(note, eng.Self)
}

// ApplyEnforcement bans an account in one community, idempotently: an existing
// ban record (whoever placed it) means no mutation. Mutes additionally when
// allowed and the messaging capability is held. A failed ban is returned so
// the item stays out of its dedup cache and retries on the next poll.
func (eng *Engine) ApplyEnforcement(ctx context.Context, account, community string, allowMute bool, permalink string) error {
	log := eng.Logger.With("account", account, "community", community)
	log.Info("banning account")

	bans, err := eng.Client.BansFor(ctx, community, account)
	if err != nil {
		log.Error("error checking ban status", "err", err)
	} else if len(bans) > 0 {
		log.Info("account already banned")
		return nil
	}

	message := fmt.Sprintf(banMessageTemplate, community, eng.Home)
	if err := eng.Client.AddBan(ctx, community, account, message, eng.banNote(account, permalink)); err != nil {
		log.Error("error banning account", "err", err)
		return fmt.Errorf("banning /u/%s in %s: %w", account, community, err)
	}
	banCount.Inc()
	log.Info("banned account")
	if allowMute {
		log.Info("muting account")
		if err := eng.Client.MuteAccount(ctx, community, account); err != nil {
			log.Error("error muting account", "err", err)
		}
	}
	return nil
}

// ReverseEnforcement sweeps every monitored community and lifts only the bans
// this service placed, recognized by the attribution signature in the note.
// Bans placed by human moderators are left untouched. A community whose ban
// list cannot be read is logged and skipped; the sweep carries on.
func (eng *Engine) ReverseEnforcement(ctx context.Context, account string) {
	for _, community := range eng.Communities.Names() {
		log := eng.Logger.With("account", account, "community", community)
		bans, err := eng.Client.BansFor(ctx, community, account)
		if err != nil {
			log.Warn("unable to check ban", "err", err)
			continue
		}
		for _, ban := range bans {
			if !eng.noteMatchesSignature(ban.Note) {
				log.Debug("not unbanning", "note", ban.Note)
				continue
			}
			log.Info("unbanning account", "note", ban.Note)
			if err := eng.Client.RemoveBan(ctx, community, account); err != nil {
				log.Error("error unbanning account", "err", err)
				continue
			}
			unbanCount.Inc()
		}
	}
}
