package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/botguard/botguard/patrol/engine"
	"github.com/botguard/botguard/platform"

	"github.com/stretchr/testify/assert"
)

func pollerFixture() (*ActivityPoller, *platform.Mock) {
	eng := engine.EngineTestFixture()
	p := NewActivityPoller(slog.Default(), eng, "all")
	return p, eng.Mock()
}

func monitoredItems(n int) []platform.ActivityItem {
	out := make([]platform.ActivityItem, n)
	for i := range out {
		out[i] = platform.ActivityItem{
			ID:        fmt.Sprintf("c%03d", i),
			Kind:      platform.KindComment,
			Author:    "suspect",
			Community: "widgets",
			Permalink: fmt.Sprintf("https://www.example.com/comments/c%03d", i),
		}
	}
	return out
}

func TestStreamDedupAcrossPolls(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p, mock := pollerFixture()
	items := monitoredItems(3)
	mock.RecentCommentsFunc = func(ctx context.Context, scope string, limit int) ([]platform.ActivityItem, error) {
		return items, nil
	}
	lookups := 0
	mock.AccountMarkedFunc = func(ctx context.Context, account string) (bool, error) {
		lookups++
		return false, nil
	}

	assert.NoError(p.CheckComments(ctx))
	assert.Equal(3, lookups)

	// the overlapping window is not reprocessed
	assert.NoError(p.CheckComments(ctx))
	assert.Equal(3, lookups)
}

func TestStreamRetriesFailedItems(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p, mock := pollerFixture()
	items := monitoredItems(1)
	mock.RecentCommentsFunc = func(ctx context.Context, scope string, limit int) ([]platform.ActivityItem, error) {
		return items, nil
	}
	mock.AccountMarkedFunc = func(ctx context.Context, account string) (bool, error) {
		return true, nil
	}
	mock.CommunityCapabilitiesFunc = func(ctx context.Context, community, account string) (platform.CapabilitySet, error) {
		return platform.CapabilitySet{platform.CapAccess}, nil
	}

	banFails := true
	banAttempts := 0
	mock.AddBanFunc = func(ctx context.Context, community, account, message, note string) error {
		banAttempts++
		if banFails {
			return fmt.Errorf("HTTP 503")
		}
		return nil
	}

	// the failed item stays out of the cache and is retried next poll
	assert.NoError(p.CheckComments(ctx))
	assert.Equal(1, banAttempts)
	assert.NoError(p.CheckComments(ctx))
	assert.Equal(2, banAttempts)

	// once it succeeds the item is cached for good
	banFails = false
	assert.NoError(p.CheckComments(ctx))
	assert.Equal(3, banAttempts)
	assert.NoError(p.CheckComments(ctx))
	assert.Equal(3, banAttempts)
}

func TestStreamFetchErrorPropagates(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p, mock := pollerFixture()
	mock.RecentSubmissionsFunc = func(ctx context.Context, scope string, limit int) ([]platform.ActivityItem, error) {
		return nil, fmt.Errorf("HTTP 500")
	}
	assert.Error(p.CheckSubmissions(ctx))
}

func TestQueuePrefilterSkipsUnmarkedAuthors(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p, mock := pollerFixture()
	assert.NoError(p.Engine.Marked.Refresh(ctx, &platform.Mock{
		MarkedAccountsFunc: func(ctx context.Context) ([]string, error) {
			return []string{"knownbot"}, nil
		},
	}))

	items := []platform.ActivityItem{
		{ID: "q1", Kind: platform.KindSubmission, Author: "innocent", Community: "widgets"},
		{ID: "q2", Kind: platform.KindSubmission, Author: "knownbot", Community: "widgets"},
	}
	mock.ModQueueFunc = func(ctx context.Context, limit int) ([]platform.ActivityItem, error) {
		return items, nil
	}
	var looked []string
	mock.AccountMarkedFunc = func(ctx context.Context, account string) (bool, error) {
		looked = append(looked, account)
		return true, nil
	}

	assert.NoError(p.CheckQueue(ctx))
	// only the roster hit reaches the oracle
	assert.Equal([]string{"knownbot"}, looked)

	// the filtered item is still cached and not revisited
	assert.NoError(p.CheckQueue(ctx))
	assert.Equal([]string{"knownbot"}, looked)
}
