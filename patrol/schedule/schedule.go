// Package schedule gates the periodic tasks of the single-threaded main loop,
// giving each task its own minimum interval.
package schedule

import (
	"time"
)

// DefaultInterval applies to any task key without a configured interval.
const DefaultInterval = 60 * time.Second

// Scheduler tracks per-task last-run timestamps. Not safe for concurrent use;
// there is exactly one loop thread.
type Scheduler struct {
	intervals map[string]time.Duration
	last      map[string]time.Time

	// overridable clock for tests
	now func() time.Time
}

func NewScheduler(intervals map[string]time.Duration) *Scheduler {
	return &Scheduler{
		intervals: intervals,
		last:      make(map[string]time.Time),
		now:       time.Now,
	}
}

// Ready returns true at most once per interval for the given key, or always
// when forced. On returning true the last-run stamp is taken immediately, so a
// task that fails still consumes its interval instead of retrying hot.
func (s *Scheduler) Ready(key string, force bool) bool {
	interval, ok := s.intervals[key]
	if !ok {
		interval = DefaultInterval
	}
	now := s.now()
	if !force && now.Sub(s.last[key]) < interval {
		return false
	}
	s.last[key] = now
	return true
}
