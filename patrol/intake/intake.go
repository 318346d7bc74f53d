// Package intake turns user-submitted reports in the home community into
// canonical ledger posts, one per reported account, deduplicated against the
// existing ledger.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/botguard/botguard/patrol/engine"
	"github.com/botguard/botguard/platform"
)

// a conforming report links straight to the reported account's profile
var reportURLPattern = regexp.MustCompile(`^https?://[\w.-]+/u(?:ser)?/([\w-]{3,20})`)

const (
	fetchLimit = 100
	// how deep the fallback scan of recent ledger posts goes when search
	// misses an existing entry
	dedupScanLimit = 1000
)

// Intake processes reports submitted to the home community. ProfileBase is
// the URL prefix canonical ledger posts link to ("https://host/user/").
type Intake struct {
	Logger      *slog.Logger
	Engine      *engine.Engine
	ProfileBase string
}

func NewIntake(logger *slog.Logger, eng *engine.Engine, profileBase string) *Intake {
	return &Intake{Logger: logger, Engine: eng, ProfileBase: profileBase}
}

func (in *Intake) CheckContributions(ctx context.Context) error {
	in.Logger.Info("checking contributions")
	posts, err := in.Engine.Client.CommunityPosts(ctx, in.Engine.Home, fetchLimit)
	if err != nil {
		return err
	}
	for _, post := range posts {
		if post.Author == in.Engine.Self {
			continue
		}
		if err := in.handleContribution(ctx, post); err != nil {
			in.Logger.Error("error processing contribution", "post", post.ID, "err", err)
		}
	}
	return nil
}

func (in *Intake) handleContribution(ctx context.Context, post platform.Post) error {
	client := in.Engine.Client
	log := in.Logger.With("post", post.ID, "author", post.Author)

	// a flagged account posting into the home community is itself activity
	// worth enforcing on
	if in.Engine.AccountStatus(ctx, post.Author) == engine.StatusFlagged {
		log.Info("contribution from flagged account")
		acted, err := in.Engine.ProcessActivity(ctx, platform.ActivityItem{
			ID:        post.ID,
			Kind:      platform.KindSubmission,
			Author:    post.Author,
			Community: in.Engine.Home,
			Permalink: post.Permalink,
		})
		if err != nil {
			return err
		}
		if acted {
			return nil
		}
	}

	account := reportedAccount(post.URL)
	// non-conforming posts are removed by companion automation, just skip them
	if account == "" {
		return nil
	}

	name, err := client.ResolveAccount(ctx, account)
	if err != nil {
		log.Debug("error resolving account", "account", account, "err", err)
		name = ""
	}
	if name == "" {
		if err := client.RemovePost(ctx, post.ID); err != nil {
			return err
		}
		reply := "Thank you for your submission! That account does not appear to exist (perhaps it has" +
			" already been suspended or deleted), but please get in touch if you believe this was an error."
		if err := client.ReplyDistinguished(ctx, post.ID, reply); err != nil {
			log.Error("error replying to rejected contribution", "err", err)
		}
		log.Info("contribution rejected", "account", account)
		return nil
	}

	title := "overview for " + name
	profileURL := in.ProfileBase + name

	canonical := in.findCanonical(ctx, title, profileURL)

	var created *platform.Post
	if canonical == nil {
		created, err = client.SubmitPost(ctx, in.Engine.Home, title, profileURL)
		if err != nil {
			log.Error("error creating canonical post", "err", err)
			created = nil
		} else {
			report := fmt.Sprintf("Reviewable submission from /u/%s: please approve and update label", post.Author)
			if err := client.ReportPost(ctx, created.ID, report); err != nil {
				log.Error("error reporting canonical post", "err", err)
			}
		}
	}

	if err := client.RemovePost(ctx, post.ID); err != nil {
		return err
	}

	switch {
	case created != nil:
		reply := fmt.Sprintf("Thank you for your submission! We have created a new entry for this account (%s).", created.Permalink)
		if err := client.ReplyDistinguished(ctx, post.ID, reply); err != nil {
			log.Error("error replying to accepted contribution", "err", err)
		}
		log.Info("contribution accepted", "account", name)
	case canonical != nil:
		reply := fmt.Sprintf("Thank you for your submission! It looks like we already have an entry for this account (%s).", canonical.Permalink)
		if err := client.ReplyDistinguished(ctx, post.ID, reply); err != nil {
			log.Error("error replying to duplicate contribution", "err", err)
		}
		log.Info("contribution duplicate", "account", name)
	default:
		if err := client.ReplyDistinguished(ctx, post.ID, "Thank you for your submission!"); err != nil {
			log.Error("error replying to contribution", "err", err)
		}
		log.Error("contribution error", "account", name)
	}
	return nil
}

// findCanonical locates an existing ledger post for the account: first by URL
// and title search, then by scanning recent ledger posts. Dedup here is plain
// text comparison; the human review queue catches anything that slips past.
func (in *Intake) findCanonical(ctx context.Context, title, profileURL string) *platform.Post {
	client := in.Engine.Client

	for _, query := range []string{
		fmt.Sprintf("url:%q", profileURL),
		fmt.Sprintf("title:%q", title),
	} {
		results, err := client.SearchPosts(ctx, in.Engine.Home, query)
		if err != nil {
			in.Logger.Error("error searching for canonical post", "query", query, "err", err)
			continue
		}
		for i := range results {
			if results[i].Title == title && results[i].Author == in.Engine.Self {
				return &results[i]
			}
		}
	}

	recent, err := client.CommunityPosts(ctx, in.Engine.Home, dedupScanLimit)
	if err != nil {
		in.Logger.Error("error scanning recent posts for canonical post", "err", err)
		return nil
	}
	for i := range recent {
		if recent[i].Title == title && recent[i].Author == in.Engine.Self {
			return &recent[i]
		}
	}
	return nil
}

func reportedAccount(url string) string {
	m := reportURLPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}
