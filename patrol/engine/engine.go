// Package engine implements the decision-and-reconciliation core: deciding
// whether observed activity comes from a flagged automated actor, enforcing
// that decision across every moderated community, and keeping the canonical
// marked-account registry consistent with the human-curated ledger.
package engine

import (
	"context"
	"log/slog"

	"github.com/botguard/botguard/patrol/cachestore"
	"github.com/botguard/botguard/platform"
)

// Engine holds all mutable state shared by the enforcement and reconciliation
// paths. It is driven from a single scheduler thread; nothing here locks.
//
// TODO: careful when initializing: several fields should not be null or zero, even though they are pointer type.
type Engine struct {
	Logger      *slog.Logger
	Client      platform.API
	Communities *CommunitySet
	Marked      *Roster
	Cache       cachestore.CacheStore

	// Self is the account the service runs as; its name is the attribution
	// signature matched in ban notes.
	Self string
	// Home is the ledger community holding one post per flagged account.
	Home string

	// PreEnforce, if set, runs right before any ban is applied. The daemon
	// uses it to force a kill-switch check.
	PreEnforce func()
}

// ProcessActivity runs the decision procedure for one comment, submission, or
// queue item. Returns true if enforcement was applied.
func (eng *Engine) ProcessActivity(ctx context.Context, item platform.ActivityItem) (acted bool, err error) {
	// similar to an HTTP server, we want to recover any panics from decision execution
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("decision execution exception", "err", r, "account", item.Author, "community", item.Community)
		}
	}()

	eventProcessCount.WithLabelValues(string(item.Kind)).Inc()
	acted, err = eng.considerAction(ctx, item)
	if err != nil {
		eventErrorCount.WithLabelValues(string(item.Kind)).Inc()
	}
	return acted, err
}
