// Package consumer polls the platform's activity streams and the ledger
// community's moderation log, feeding new items into the engine. Both pollers
// share the same dedup discipline: an identifier is cached only after the
// engine handled it without error, so failed items retry on the next poll for
// as long as they remain inside the fetch window.
package consumer

import (
	"context"
	"log/slog"

	"github.com/botguard/botguard/patrol/dedupe"
	"github.com/botguard/botguard/patrol/engine"
	"github.com/botguard/botguard/platform"
)

// how many recent items one poll fetches per stream
const defaultFetchLimit = 100

// ActivityPoller drives the three activity streams: comments and submissions
// in the scanned scope, plus the moderation queue across all communities.
type ActivityPoller struct {
	Logger *slog.Logger
	Engine *engine.Engine
	// Scan is the community scope polled for comments and submissions.
	Scan       string
	FetchLimit int

	comments    *dedupe.Window
	submissions *dedupe.Window
	queue       *dedupe.Window
}

func NewActivityPoller(logger *slog.Logger, eng *engine.Engine, scan string) *ActivityPoller {
	return &ActivityPoller{
		Logger:      logger,
		Engine:      eng,
		Scan:        scan,
		FetchLimit:  defaultFetchLimit,
		comments:    dedupe.NewWindow(),
		submissions: dedupe.NewWindow(),
		queue:       dedupe.NewWindow(),
	}
}

func (p *ActivityPoller) CheckComments(ctx context.Context) error {
	p.Logger.Info("checking comments")
	items, err := p.Engine.Client.RecentComments(ctx, p.Scan, p.FetchLimit)
	if err != nil {
		return err
	}
	p.processWindow(ctx, items, p.comments, false)
	return nil
}

func (p *ActivityPoller) CheckSubmissions(ctx context.Context) error {
	p.Logger.Info("checking submissions")
	items, err := p.Engine.Client.RecentSubmissions(ctx, p.Scan, p.FetchLimit)
	if err != nil {
		return err
	}
	p.processWindow(ctx, items, p.submissions, false)
	return nil
}

// CheckQueue polls the cross-community moderation queue. Queue items get a
// cheap roster pre-filter so the oracle's tiered lookup only runs for items
// that plausibly reference a flagged account.
func (p *ActivityPoller) CheckQueue(ctx context.Context) error {
	p.Logger.Info("checking queue")
	items, err := p.Engine.Client.ModQueue(ctx, p.FetchLimit)
	if err != nil {
		return err
	}
	p.processWindow(ctx, items, p.queue, true)
	return nil
}

func (p *ActivityPoller) processWindow(ctx context.Context, items []platform.ActivityItem, w *dedupe.Window, prefilter bool) {
	for _, item := range items {
		if w.Seen(item.ID) {
			continue
		}
		if prefilter && !p.Engine.Marked.Contains(item.Author) {
			w.Mark(item.ID)
			continue
		}
		if prefilter {
			p.Logger.Info("queue hit", "account", item.Author, "community", item.Community, "permalink", item.Permalink)
		}
		if _, err := p.Engine.ProcessActivity(ctx, item); err != nil {
			// leave the id uncached; the next poll retries it
			p.Logger.Error("error processing activity", "id", item.ID, "err", err)
			continue
		}
		w.Mark(item.ID)
	}
	w.Trim()
}
