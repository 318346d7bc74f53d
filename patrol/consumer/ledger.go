package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/botguard/botguard/patrol/dedupe"
	"github.com/botguard/botguard/patrol/engine"
	"github.com/botguard/botguard/platform"
)

// moderation log action recorded when a human edits a ledger post's label
const ledgerEditAction = "editflair"

// log entries younger than this are never cached, so a label edited twice in
// quick succession is re-read on the next poll
const recencyGuard = 10 * time.Minute

// LedgerConsumer reads the ledger community's moderation log and reconciles
// label edits into the canonical registry via the engine.
type LedgerConsumer struct {
	Logger     *slog.Logger
	Engine     *engine.Engine
	FetchLimit int

	seen *dedupe.Window

	// overridable clock for tests
	now func() time.Time
}

func NewLedgerConsumer(logger *slog.Logger, eng *engine.Engine) *LedgerConsumer {
	return &LedgerConsumer{
		Logger:     logger,
		Engine:     eng,
		FetchLimit: defaultFetchLimit,
		seen:       dedupe.NewWindow(),
		now:        time.Now,
	}
}

// CheckLedger processes new label-edit entries from the ledger's moderation
// log. Only ledger posts authored by the service itself are considered; a log
// identifier is cached only after its entry was fully processed without error
// and has aged past the recency guard.
func (lc *LedgerConsumer) CheckLedger(ctx context.Context) error {
	lc.Logger.Info("checking ledger log")
	entries, err := lc.Engine.Client.ModLog(ctx, lc.Engine.Home, ledgerEditAction, lc.FetchLimit)
	if err != nil {
		return err
	}

	// recent ledger posts are fetched in one batch, lazily, the first time an
	// uncached entry shows up
	var recent map[string]*platform.Post
	mutated := false

	for _, entry := range entries {
		if lc.seen.Seen(entry.ID) {
			continue
		}
		if recent == nil {
			recent = lc.fetchRecentPosts(ctx)
		}

		if err := lc.processEntry(ctx, entry, recent, &mutated); err != nil {
			lc.Logger.Error("error processing ledger entry", "id", entry.ID, "err", err)
			continue
		}
		if lc.now().Sub(entry.CreatedAt) > recencyGuard {
			lc.seen.Mark(entry.ID)
		}
	}
	lc.seen.Trim()

	if mutated {
		// keep the queue pre-filter roster in step with the registry
		if err := lc.Engine.Marked.Refresh(ctx, lc.Engine.Client); err != nil {
			lc.Logger.Error("error refreshing marked roster", "err", err)
		}
	}
	return nil
}

func (lc *LedgerConsumer) processEntry(ctx context.Context, entry platform.ModLogEntry, recent map[string]*platform.Post, mutated *bool) error {
	postID, ok := entry.PostID()
	if !ok || entry.TargetAuthor != lc.Engine.Self {
		return nil
	}

	post := recent[postID]
	if post == nil {
		var err error
		post, err = lc.Engine.Client.GetPost(ctx, postID)
		if err != nil {
			return err
		}
	}

	changed, err := lc.Engine.SyncLedgerPost(ctx, post)
	if err != nil {
		return err
	}
	if changed {
		*mutated = true
	}
	return nil
}

func (lc *LedgerConsumer) fetchRecentPosts(ctx context.Context) map[string]*platform.Post {
	out := make(map[string]*platform.Post)
	posts, err := lc.Engine.Client.CommunityPosts(ctx, lc.Engine.Home, lc.FetchLimit)
	if err != nil {
		// individual entries fall back to direct post fetches
		lc.Logger.Warn("unable to batch-fetch recent ledger posts", "err", err)
		return out
	}
	for i := range posts {
		out[posts[i].ID] = &posts[i]
	}
	return out
}
