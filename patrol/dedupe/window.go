// Package dedupe provides the sliding-window identifier caches which keep
// overlapping poll windows from reprocessing the same items.
package dedupe

// Trim thresholds. Exact history does not matter, only recency: once the
// window grows past maxEntries it is cut back to the newest keepEntries.
const (
	maxEntries  = 200
	keepEntries = 100
)

// Window is a bounded, ordered set of recently-processed identifiers for one
// stream. Not safe for concurrent use; all callers run on the scheduler thread.
type Window struct {
	ids  []string
	seen map[string]struct{}
}

func NewWindow() *Window {
	return &Window{
		seen: make(map[string]struct{}),
	}
}

func (w *Window) Seen(id string) bool {
	_, ok := w.seen[id]
	return ok
}

// Mark records an identifier as processed. Callers mark only after the item
// was handled without error, so failed items stay eligible for the next poll.
func (w *Window) Mark(id string) {
	if w.Seen(id) {
		return
	}
	w.ids = append(w.ids, id)
	w.seen[id] = struct{}{}
}

// Trim drops everything but the most recent entries once the window exceeds
// its bound. Called once per poll, after the whole fetch window is processed.
func (w *Window) Trim() {
	if len(w.ids) <= maxEntries {
		return
	}
	w.ids = append([]string(nil), w.ids[len(w.ids)-keepEntries:]...)
	w.seen = make(map[string]struct{}, len(w.ids))
	for _, id := range w.ids {
		w.seen[id] = struct{}{}
	}
}

func (w *Window) Len() int {
	return len(w.ids)
}
