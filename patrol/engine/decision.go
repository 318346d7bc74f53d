package engine

import (
	"context"
	"fmt"
	"regexp"

	"github.com/botguard/botguard/platform"
)

// author flair classes ending in a "proof" token whitelist verified humans
var proofClassPattern = regexp.MustCompile(`proof\b`)

// evidence holds the four whitelist signals. Each carries its fail-safe
// substitution already applied: an inconclusive check always lands on the
// value that prevents enforcement.
type evidence struct {
	flagged     bool
	proofMarked bool
	contributor bool
	moderator   bool
}

func (ev evidence) enforce() bool {
	return ev.flagged && !ev.proofMarked && !ev.contributor && !ev.moderator
}

func (eng *Engine) gatherEvidence(ctx context.Context, item platform.ActivityItem, held platform.CapabilitySet) evidence {
	var ev evidence
	log := eng.Logger.With("account", item.Author, "community", item.Community)

	// oracle unknown is treated as not flagged for this decision (inaction bias)
	status := eng.AccountStatus(ctx, item.Author)
	ev.flagged = status == StatusFlagged
	if status == StatusUnknown {
		log.Error("account not resolvable in marked list")
	} else {
		log.Info("account flag status resolved", "status", status.String())
	}

	flair, err := eng.Client.AccountFlair(ctx, item.Community, item.Author)
	if err != nil {
		// lookup failure means no proof marker
		log.Error("error checking flair class", "err", err)
	} else if proofClassPattern.MatchString(flair) {
		ev.proofMarked = true
		log.Info("account whitelisted via flair class")
	}

	contributor, err := eng.Client.IsContributor(ctx, item.Community, item.Author)
	if err != nil {
		// an unreliable approved-users check must never cause a ban; this is
		// extra important when held capabilities are broad or unknown
		ev.contributor = true
		if held.Empty() || held.Has(platform.CapAccess) || held.Has(platform.CapAll) {
			log.Error("unable to check approved users, failing safe", "err", err)
		} else {
			log.Info("unable to check approved users, failing safe", "err", err)
		}
	} else if contributor {
		ev.contributor = true
		log.Info("account whitelisted via approved users")
	}

	moderator, err := eng.Client.IsModerator(ctx, item.Community, item.Author)
	if err != nil {
		// never ban a real moderator on an inconclusive check
		ev.moderator = true
		log.Error("error checking moderator list, failing safe", "err", err)
	} else if moderator {
		ev.moderator = true
		log.Info("account whitelisted via moderator list")
	}

	return ev
}

// considerAction is the decision procedure for one activity item: no-op
// outside monitored communities, otherwise gather evidence and apply whatever
// enforcement the held capabilities allow. Ban and content removal are
// independent; a community granting only one still gets partial enforcement.
func (eng *Engine) considerAction(ctx context.Context, item platform.ActivityItem) (bool, error) {
	if !eng.Communities.Contains(item.Community) {
		return false, nil
	}

	log := eng.Logger.With("account", item.Author, "community", item.Community)
	log.Info("community hit", "permalink", item.Permalink)

	held, err := eng.Client.CommunityCapabilities(ctx, item.Community, eng.Self)
	if err != nil {
		log.Error("error checking held capabilities", "err", err)
		held = nil
	}

	ev := eng.gatherEvidence(ctx, item, held)
	if !ev.enforce() {
		return false, nil
	}

	if eng.PreEnforce != nil {
		eng.PreEnforce()
	}

	// the two actions are independent; attempt both, report the first failure
	var firstErr error
	if held.Has(platform.CapAccess) || held.Has(platform.CapAll) {
		if err := eng.ApplyEnforcement(ctx, item.Author, item.Community, held.Has(platform.CapMail), item.Permalink); err != nil {
			firstErr = err
		}
	}
	if held.Has(platform.CapPosts) || held.Has(platform.CapAll) {
		// skip content a moderator or the platform already removed
		if item.RemovedBy == "" {
			log.Info("removing content", "permalink", item.Permalink)
			if err := eng.Client.RemoveContent(ctx, item.ID, true); err != nil {
				log.Error("error removing content", "permalink", item.Permalink, "err", err)
				if firstErr == nil {
					firstErr = fmt.Errorf("removing %s: %w", item.Permalink, err)
				}
			} else {
				removalCount.Inc()
			}
		}
	} else if !held.Empty() {
		if err := eng.Client.ReportContent(ctx, item.ID, "automated actor (moderator capabilities limited to reporting)"); err != nil {
			log.Error("error reporting content", "permalink", item.Permalink, "err", err)
		} else {
			reportCount.Inc()
		}
	}
	return true, firstErr
}
