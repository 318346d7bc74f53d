package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/botguard/botguard/platform"

	"github.com/stretchr/testify/assert"
)

func ledgerPost(account, label string) *platform.Post {
	return &platform.Post{
		ID:     "post1",
		Author: "botguard",
		Title:  "overview for " + account,
		URL:    "https://www.example.com/user/" + account,
		Label:  label,
	}
}

func TestAccountFromURL(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("spam-bot", AccountFromURL("https://www.example.com/user/spam-bot"))
	assert.Equal("spam_bot", AccountFromURL("https://www.example.com/u/spam_bot?context=3"))
	assert.Equal("", AccountFromURL("https://www.example.com/comments/abc123"))
	assert.Equal("", AccountFromURL(""))
}

func TestReconcilePromote(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture()
	mock := eng.Mock()
	mock.AccountMarkedFunc = func(ctx context.Context, account string) (bool, error) { return false, nil }
	var markedAccounts []string
	mock.MarkAccountFunc = func(ctx context.Context, account string) error {
		markedAccounts = append(markedAccounts, account)
		return nil
	}

	changed, err := eng.SyncLedgerPost(ctx, ledgerPost("spam-bot", LabelFlagged))
	assert.NoError(err)
	assert.True(changed)
	assert.Equal([]string{"spam-bot"}, markedAccounts)
}

func TestReconcileDemoteSweepsBans(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// account Y cleared while flagged and banned in two communities with
	// attributed notes: registry flips and both bans are lifted
	eng := EngineTestFixture()
	eng.Communities.Add(platform.Community{Name: "c1", Type: "public"})
	eng.Communities.Add(platform.Community{Name: "c2", Type: "public"})
	mock := eng.Mock()

	mock.AccountMarkedFunc = func(ctx context.Context, account string) (bool, error) { return true, nil }
	unmarked := false
	mock.UnmarkAccountFunc = func(ctx context.Context, account string) error {
		unmarked = true
		return nil
	}
	note := "/u/accountY banned by /u/botguard at 2026-07-01 for link"
	mock.BansForFunc = func(ctx context.Context, community, account string) ([]platform.Ban, error) {
		if community == "c1" || community == "c2" {
			return []platform.Ban{{Account: account, Note: note}}, nil
		}
		return nil, nil
	}
	var removed []string
	mock.RemoveBanFunc = func(ctx context.Context, community, account string) error {
		removed = append(removed, community)
		return nil
	}

	changed, err := eng.SyncLedgerPost(ctx, ledgerPost("accountY", LabelCleared))
	assert.NoError(err)
	assert.True(changed)
	assert.True(unmarked)
	assert.ElementsMatch([]string{"c1", "c2"}, removed)
}

func TestReconcileUnknownStatusBlocksMutation(t *testing.T) {
	ctx := context.Background()
	boom := fmt.Errorf("platform unavailable")

	for _, label := range []string{LabelFlagged, LabelCleared} {
		t.Run(label, func(t *testing.T) {
			assert := assert.New(t)

			eng := EngineTestFixture()
			mock := eng.Mock()
			mock.AccountMarkedFunc = func(ctx context.Context, account string) (bool, error) { return false, boom }
			mock.LookupMarkedFunc = func(ctx context.Context, account string) (bool, error) { return false, boom }
			mock.MarkedAccountsFunc = func(ctx context.Context) ([]string, error) { return nil, boom }

			touched := false
			mock.MarkAccountFunc = func(ctx context.Context, account string) error {
				touched = true
				return nil
			}
			mock.UnmarkAccountFunc = func(ctx context.Context, account string) error {
				touched = true
				return nil
			}
			mock.RemoveBanFunc = func(ctx context.Context, community, account string) error {
				touched = true
				return nil
			}

			changed, err := eng.SyncLedgerPost(ctx, ledgerPost("spam-bot", label))
			assert.ErrorIs(err, ErrStatusUnknown)
			assert.False(changed)
			assert.False(touched)
		})
	}
}

func TestReconcileIdempotentNoOps(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture()
	mock := eng.Mock()
	touched := false
	mock.MarkAccountFunc = func(ctx context.Context, account string) error {
		touched = true
		return nil
	}
	mock.UnmarkAccountFunc = func(ctx context.Context, account string) error {
		touched = true
		return nil
	}

	// flagged label, already marked
	mock.AccountMarkedFunc = func(ctx context.Context, account string) (bool, error) { return true, nil }
	changed, err := eng.SyncLedgerPost(ctx, ledgerPost("spam-bot", LabelFlagged))
	assert.NoError(err)
	assert.False(changed)

	// cleared label, already clear
	mock.AccountMarkedFunc = func(ctx context.Context, account string) (bool, error) { return false, nil }
	changed, err = eng.SyncLedgerPost(ctx, ledgerPost("spam-bot", LabelCleared))
	assert.NoError(err)
	assert.False(changed)

	// pending label never mutates
	mock.AccountMarkedFunc = func(ctx context.Context, account string) (bool, error) { return true, nil }
	changed, err = eng.SyncLedgerPost(ctx, ledgerPost("spam-bot", LabelPending))
	assert.NoError(err)
	assert.False(changed)

	// unrecognized labels behave like cleared: no-op while already clear
	mock.AccountMarkedFunc = func(ctx context.Context, account string) (bool, error) { return false, nil }
	changed, err = eng.SyncLedgerPost(ctx, ledgerPost("spam-bot", "under review"))
	assert.NoError(err)
	assert.False(changed)

	assert.False(touched)
}

func TestReconcileUnrecognizedLabelClears(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture()
	mock := eng.Mock()
	mock.AccountMarkedFunc = func(ctx context.Context, account string) (bool, error) { return true, nil }
	unmarked := false
	mock.UnmarkAccountFunc = func(ctx context.Context, account string) error {
		unmarked = true
		return nil
	}

	changed, err := eng.SyncLedgerPost(ctx, ledgerPost("spam-bot", "retired"))
	assert.NoError(err)
	assert.True(changed)
	assert.True(unmarked)
}
