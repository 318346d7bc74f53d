package platform

import (
	"context"
)

// API is the surface of the moderated platform consumed by the rest of the
// service. *Client implements it against the live platform; tests use Mock.
type API interface {
	// directory
	ModeratedCommunities(ctx context.Context) ([]Community, error)
	CommunityCapabilities(ctx context.Context, community, account string) (CapabilitySet, error)
	CommunityInfo(ctx context.Context, community string) (*Community, error)

	// activity streams
	RecentComments(ctx context.Context, scope string, limit int) ([]ActivityItem, error)
	RecentSubmissions(ctx context.Context, scope string, limit int) ([]ActivityItem, error)
	ModQueue(ctx context.Context, limit int) ([]ActivityItem, error)

	// evidence lookups
	AccountFlair(ctx context.Context, community, account string) (string, error)
	IsContributor(ctx context.Context, community, account string) (bool, error)
	IsModerator(ctx context.Context, community, account string) (bool, error)

	// marked-account relation (the canonical registry)
	AccountMarked(ctx context.Context, account string) (bool, error)
	LookupMarked(ctx context.Context, account string) (bool, error)
	MarkedAccounts(ctx context.Context) ([]string, error)
	MarkAccount(ctx context.Context, account string) error
	UnmarkAccount(ctx context.Context, account string) error

	// enforcement
	BansFor(ctx context.Context, community, account string) ([]Ban, error)
	AddBan(ctx context.Context, community, account, message, note string) error
	RemoveBan(ctx context.Context, community, account string) error
	MuteAccount(ctx context.Context, community, account string) error
	RemoveContent(ctx context.Context, id string, spam bool) error
	ReportContent(ctx context.Context, id, reason string) error

	// posts and the ledger
	ModLog(ctx context.Context, community, action string, limit int) ([]ModLogEntry, error)
	GetPost(ctx context.Context, id string) (*Post, error)
	CommunityPosts(ctx context.Context, community string, limit int) ([]Post, error)
	SearchPosts(ctx context.Context, community, query string) ([]Post, error)
	SubmitPost(ctx context.Context, community, title, url string) (*Post, error)
	EditPost(ctx context.Context, id, body string) error
	ReportPost(ctx context.Context, id, reason string) error
	RemovePost(ctx context.Context, id string) error
	ReplyDistinguished(ctx context.Context, parentID, body string) error

	// account resolution
	ResolveAccount(ctx context.Context, name string) (string, error)

	// inbox
	UnreadMessages(ctx context.Context, limit int) ([]Message, error)
	MarkRead(ctx context.Context, id string) error
	ReplyMessage(ctx context.Context, id, body string) error
	AcceptInvite(ctx context.Context, community string) error
}
