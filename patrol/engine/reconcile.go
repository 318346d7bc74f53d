package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/botguard/botguard/platform"
)

// Ledger post labels. Pending means a human has not decided yet; anything
// other than the two informative labels is treated as cleared, matching how
// moderators have historically relabeled posts.
const (
	LabelPending = "pending"
	LabelFlagged = "flagged"
	LabelCleared = "cleared"
)

// ErrStatusUnknown marks a ledger entry that could not be reconciled because
// the oracle was inconclusive. The entry stays out of the dedup cache so it is
// retried while it remains inside the fetch window.
var ErrStatusUnknown = errors.New("account flag status unknown")

var accountURLPattern = regexp.MustCompile(`/u(?:ser)?/([\w-]+)`)

// AccountFromURL extracts the account a ledger post is about from its embedded
// account URL. Empty if the URL does not reference an account.
func AccountFromURL(url string) string {
	m := accountURLPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// SyncLedgerPost maps one ledger post's current label onto the canonical
// registry, and on a cleared label sweeps away the bans previously applied.
// Idempotent: a label already matching registry state is a no-op. Returns true
// if the registry was mutated.
func (eng *Engine) SyncLedgerPost(ctx context.Context, post *platform.Post) (bool, error) {
	account := AccountFromURL(post.URL)
	if account == "" {
		return false, nil
	}
	if post.Label == LabelPending {
		return false, nil
	}

	log := eng.Logger.With("account", account, "post", post.ID, "label", post.Label)

	status := eng.AccountStatus(ctx, account)
	if status == StatusUnknown {
		// never flip the registry on an inconclusive read
		log.Error("skipping ledger sync", "err", ErrStatusUnknown)
		return false, ErrStatusUnknown
	}

	switch {
	case post.Label == LabelFlagged && status == StatusClear:
		if err := eng.Client.MarkAccount(ctx, account); err != nil {
			return false, fmt.Errorf("marking account %s: %w", account, err)
		}
		eng.purgeStatus(ctx, account)
		registryPromotionCount.Inc()
		log.Info("marked account")
		return true, nil

	case post.Label != LabelFlagged && status == StatusFlagged:
		if err := eng.Client.UnmarkAccount(ctx, account); err != nil {
			return false, fmt.Errorf("unmarking account %s: %w", account, err)
		}
		eng.purgeStatus(ctx, account)
		registryDemotionCount.Inc()
		log.Info("unmarked account")
		// appeal sweep: lift our own bans everywhere
		eng.ReverseEnforcement(ctx, account)
		return true, nil
	}

	return false, nil
}
