package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerGating(t *testing.T) {
	assert := assert.New(t)

	clock := time.Unix(1000, 0)
	sched := NewScheduler(map[string]time.Duration{
		"comments": 5 * time.Second,
	})
	sched.now = func() time.Time { return clock }

	assert.True(sched.Ready("comments", false))
	assert.False(sched.Ready("comments", false))

	clock = clock.Add(4 * time.Second)
	assert.False(sched.Ready("comments", false))

	clock = clock.Add(1 * time.Second)
	assert.True(sched.Ready("comments", false))
}

func TestSchedulerForce(t *testing.T) {
	assert := assert.New(t)

	clock := time.Unix(1000, 0)
	sched := NewScheduler(nil)
	sched.now = func() time.Time { return clock }

	assert.True(sched.Ready("marked", false))
	assert.True(sched.Ready("marked", true))

	// forcing stamps last-run too
	clock = clock.Add(30 * time.Second)
	assert.False(sched.Ready("marked", false))
}

func TestSchedulerDefaultInterval(t *testing.T) {
	assert := assert.New(t)

	clock := time.Unix(1000, 0)
	sched := NewScheduler(nil)
	sched.now = func() time.Time { return clock }

	assert.True(sched.Ready("unconfigured", false))
	clock = clock.Add(59 * time.Second)
	assert.False(sched.Ready("unconfigured", false))
	clock = clock.Add(1 * time.Second)
	assert.True(sched.Ready("unconfigured", false))
}
