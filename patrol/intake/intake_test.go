package intake

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/botguard/botguard/patrol/engine"
	"github.com/botguard/botguard/platform"

	"github.com/stretchr/testify/assert"
)

const profileBase = "https://www.example.com/user/"

func intakeFixture() (*Intake, *platform.Mock) {
	eng := engine.EngineTestFixture()
	in := NewIntake(slog.Default(), eng, profileBase)
	return in, eng.Mock()
}

func contribution(id, author, account string) platform.Post {
	return platform.Post{
		ID:        id,
		Title:     "found a bot",
		Author:    author,
		URL:       "https://www.example.com/user/" + account,
		Permalink: "/r/botguardhome/comments/" + id,
	}
}

func TestReportedAccount(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("spam-bot", reportedAccount("https://www.example.com/user/spam-bot"))
	assert.Equal("spam_bot", reportedAccount("https://example.com/u/spam_bot?context=3"))
	assert.Equal("", reportedAccount("https://www.example.com/comments/abc123"))
	assert.Equal("", reportedAccount("just some text"))
	// account names shorter than the platform minimum don't conform
	assert.Equal("", reportedAccount("https://www.example.com/user/ab"))
}

func TestContributionCreatesCanonicalEntry(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	in, mock := intakeFixture()
	mock.CommunityPostsFunc = func(ctx context.Context, community string, limit int) ([]platform.Post, error) {
		if limit == dedupScanLimit {
			return nil, nil
		}
		return []platform.Post{contribution("c1", "helpful", "spambot9000")}, nil
	}

	var submitted *platform.Post
	mock.SubmitPostFunc = func(ctx context.Context, community, title, url string) (*platform.Post, error) {
		assert.Equal("botguardhome", community)
		assert.Equal("overview for spambot9000", title)
		assert.Equal(profileBase+"spambot9000", url)
		submitted = &platform.Post{ID: "canon1", Title: title, URL: url, Permalink: "/r/botguardhome/comments/canon1"}
		return submitted, nil
	}
	var reported []string
	mock.ReportPostFunc = func(ctx context.Context, id, reason string) error {
		assert.Contains(reason, "/u/helpful")
		reported = append(reported, id)
		return nil
	}
	var removed []string
	mock.RemovePostFunc = func(ctx context.Context, id string) error {
		removed = append(removed, id)
		return nil
	}
	var replies []string
	mock.ReplyDistinguishedFunc = func(ctx context.Context, parentID, body string) error {
		assert.Equal("c1", parentID)
		replies = append(replies, body)
		return nil
	}

	assert.NoError(in.CheckContributions(ctx))
	assert.Equal([]string{"canon1"}, reported)
	assert.Equal([]string{"c1"}, removed)
	if assert.Len(replies, 1) {
		assert.Contains(replies[0], "created a new entry")
		assert.Contains(replies[0], "/r/botguardhome/comments/canon1")
	}
}

func TestContributionDuplicateFoundBySearch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	in, mock := intakeFixture()
	mock.CommunityPostsFunc = func(ctx context.Context, community string, limit int) ([]platform.Post, error) {
		return []platform.Post{contribution("c1", "helpful", "spambot9000")}, nil
	}
	mock.SearchPostsFunc = func(ctx context.Context, community, query string) ([]platform.Post, error) {
		return []platform.Post{{
			ID:        "canon1",
			Title:     "overview for spambot9000",
			Author:    "botguard",
			Permalink: "/r/botguardhome/comments/canon1",
		}}, nil
	}
	submitted := 0
	mock.SubmitPostFunc = func(ctx context.Context, community, title, url string) (*platform.Post, error) {
		submitted++
		return nil, nil
	}
	var replies []string
	mock.ReplyDistinguishedFunc = func(ctx context.Context, parentID, body string) error {
		replies = append(replies, body)
		return nil
	}

	assert.NoError(in.CheckContributions(ctx))
	assert.Zero(submitted)
	if assert.Len(replies, 1) {
		assert.Contains(replies[0], "already have an entry")
	}
}

func TestContributionDuplicateFoundByScan(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	in, mock := intakeFixture()
	mock.CommunityPostsFunc = func(ctx context.Context, community string, limit int) ([]platform.Post, error) {
		if limit == dedupScanLimit {
			return []platform.Post{{
				ID:        "canon7",
				Title:     "overview for spambot9000",
				Author:    "botguard",
				Permalink: "/r/botguardhome/comments/canon7",
			}}, nil
		}
		return []platform.Post{contribution("c1", "helpful", "spambot9000")}, nil
	}
	// searches miss, so the fallback scan has to find it
	mock.SearchPostsFunc = func(ctx context.Context, community, query string) ([]platform.Post, error) {
		return nil, nil
	}
	submitted := 0
	mock.SubmitPostFunc = func(ctx context.Context, community, title, url string) (*platform.Post, error) {
		submitted++
		return nil, nil
	}
	var replies []string
	mock.ReplyDistinguishedFunc = func(ctx context.Context, parentID, body string) error {
		replies = append(replies, body)
		return nil
	}

	assert.NoError(in.CheckContributions(ctx))
	assert.Zero(submitted)
	if assert.Len(replies, 1) {
		assert.Contains(replies[0], "/r/botguardhome/comments/canon7")
	}
}

func TestContributionNonexistentAccountRejected(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	in, mock := intakeFixture()
	mock.CommunityPostsFunc = func(ctx context.Context, community string, limit int) ([]platform.Post, error) {
		return []platform.Post{contribution("c1", "helpful", "ghostaccount")}, nil
	}
	mock.ResolveAccountFunc = func(ctx context.Context, name string) (string, error) {
		return "", fmt.Errorf("HTTP 404")
	}
	submitted := 0
	mock.SubmitPostFunc = func(ctx context.Context, community, title, url string) (*platform.Post, error) {
		submitted++
		return nil, nil
	}
	var removed []string
	mock.RemovePostFunc = func(ctx context.Context, id string) error {
		removed = append(removed, id)
		return nil
	}
	var replies []string
	mock.ReplyDistinguishedFunc = func(ctx context.Context, parentID, body string) error {
		replies = append(replies, body)
		return nil
	}

	assert.NoError(in.CheckContributions(ctx))
	assert.Zero(submitted)
	assert.Equal([]string{"c1"}, removed)
	if assert.Len(replies, 1) {
		assert.Contains(replies[0], "does not appear to exist")
	}
}

func TestContributionNonConformingPostSkipped(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	in, mock := intakeFixture()
	post := contribution("c1", "helpful", "x")
	post.URL = "https://www.example.com/comments/abc123"
	mock.CommunityPostsFunc = func(ctx context.Context, community string, limit int) ([]platform.Post, error) {
		return []platform.Post{post}, nil
	}
	removed := 0
	mock.RemovePostFunc = func(ctx context.Context, id string) error {
		removed++
		return nil
	}

	assert.NoError(in.CheckContributions(ctx))
	assert.Zero(removed)
}

func TestContributionFromFlaggedAccountEnforced(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	in, mock := intakeFixture()
	post := contribution("c1", "sneakybot", "someoneelse")
	mock.CommunityPostsFunc = func(ctx context.Context, community string, limit int) ([]platform.Post, error) {
		return []platform.Post{post}, nil
	}
	mock.AccountMarkedFunc = func(ctx context.Context, account string) (bool, error) {
		return account == "sneakybot", nil
	}
	mock.CommunityCapabilitiesFunc = func(ctx context.Context, community, account string) (platform.CapabilitySet, error) {
		return platform.CapabilitySet{platform.CapAll}, nil
	}
	var banned []string
	mock.AddBanFunc = func(ctx context.Context, community, account, message, note string) error {
		banned = append(banned, account)
		return nil
	}
	submitted := 0
	mock.SubmitPostFunc = func(ctx context.Context, community, title, url string) (*platform.Post, error) {
		submitted++
		return nil, nil
	}

	assert.NoError(in.CheckContributions(ctx))
	assert.Equal([]string{"sneakybot"}, banned)
	// the post is handled as enforcement, not as a report
	assert.Zero(submitted)
}

func TestSelfPostsAreIgnored(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	in, mock := intakeFixture()
	mock.CommunityPostsFunc = func(ctx context.Context, community string, limit int) ([]platform.Post, error) {
		return []platform.Post{contribution("c1", "botguard", "spambot9000")}, nil
	}
	resolved := 0
	mock.ResolveAccountFunc = func(ctx context.Context, name string) (string, error) {
		resolved++
		return name, nil
	}

	assert.NoError(in.CheckContributions(ctx))
	assert.Zero(resolved)
}
