package platform

import (
	"context"
)

// Mock implements API with per-method function fields for tests. Unset fields
// behave like an empty but healthy platform: lookups miss, mutations succeed.
type Mock struct {
	ModeratedCommunitiesFunc  func(ctx context.Context) ([]Community, error)
	CommunityCapabilitiesFunc func(ctx context.Context, community, account string) (CapabilitySet, error)
	CommunityInfoFunc         func(ctx context.Context, community string) (*Community, error)
	RecentCommentsFunc        func(ctx context.Context, scope string, limit int) ([]ActivityItem, error)
	RecentSubmissionsFunc     func(ctx context.Context, scope string, limit int) ([]ActivityItem, error)
	ModQueueFunc              func(ctx context.Context, limit int) ([]ActivityItem, error)
	AccountFlairFunc          func(ctx context.Context, community, account string) (string, error)
	IsContributorFunc         func(ctx context.Context, community, account string) (bool, error)
	IsModeratorFunc           func(ctx context.Context, community, account string) (bool, error)
	AccountMarkedFunc         func(ctx context.Context, account string) (bool, error)
	LookupMarkedFunc          func(ctx context.Context, account string) (bool, error)
	MarkedAccountsFunc        func(ctx context.Context) ([]string, error)
	MarkAccountFunc           func(ctx context.Context, account string) error
	UnmarkAccountFunc         func(ctx context.Context, account string) error
	BansForFunc               func(ctx context.Context, community, account string) ([]Ban, error)
	AddBanFunc                func(ctx context.Context, community, account, message, note string) error
	RemoveBanFunc             func(ctx context.Context, community, account string) error
	MuteAccountFunc           func(ctx context.Context, community, account string) error
	RemoveContentFunc         func(ctx context.Context, id string, spam bool) error
	ReportContentFunc         func(ctx context.Context, id, reason string) error
	ModLogFunc                func(ctx context.Context, community, action string, limit int) ([]ModLogEntry, error)
	GetPostFunc               func(ctx context.Context, id string) (*Post, error)
	CommunityPostsFunc        func(ctx context.Context, community string, limit int) ([]Post, error)
	SearchPostsFunc           func(ctx context.Context, community, query string) ([]Post, error)
	SubmitPostFunc            func(ctx context.Context, community, title, url string) (*Post, error)
	EditPostFunc              func(ctx context.Context, id, body string) error
	ReportPostFunc            func(ctx context.Context, id, reason string) error
	RemovePostFunc            func(ctx context.Context, id string) error
	ReplyDistinguishedFunc    func(ctx context.Context, parentID, body string) error
	ResolveAccountFunc        func(ctx context.Context, name string) (string, error)
	UnreadMessagesFunc        func(ctx context.Context, limit int) ([]Message, error)
	MarkReadFunc              func(ctx context.Context, id string) error
	ReplyMessageFunc          func(ctx context.Context, id, body string) error
	AcceptInviteFunc          func(ctx context.Context, community string) error
}

var _ API = (*Mock)(nil)

func (m *Mock) ModeratedCommunities(ctx context.Context) ([]Community, error) {
	if m.ModeratedCommunitiesFunc != nil {
		return m.ModeratedCommunitiesFunc(ctx)
	}
	return nil, nil
}

func (m *Mock) CommunityCapabilities(ctx context.Context, community, account string) (CapabilitySet, error) {
	if m.CommunityCapabilitiesFunc != nil {
		return m.CommunityCapabilitiesFunc(ctx, community, account)
	}
	return nil, nil
}

func (m *Mock) CommunityInfo(ctx context.Context, community string) (*Community, error) {
	if m.CommunityInfoFunc != nil {
		return m.CommunityInfoFunc(ctx, community)
	}
	return &Community{Name: community, Type: "public"}, nil
}

func (m *Mock) RecentComments(ctx context.Context, scope string, limit int) ([]ActivityItem, error) {
	if m.RecentCommentsFunc != nil {
		return m.RecentCommentsFunc(ctx, scope, limit)
	}
	return nil, nil
}

func (m *Mock) RecentSubmissions(ctx context.Context, scope string, limit int) ([]ActivityItem, error) {
	if m.RecentSubmissionsFunc != nil {
		return m.RecentSubmissionsFunc(ctx, scope, limit)
	}
	return nil, nil
}

func (m *Mock) ModQueue(ctx context.Context, limit int) ([]ActivityItem, error) {
	if m.ModQueueFunc != nil {
		return m.ModQueueFunc(ctx, limit)
	}
	return nil, nil
}

func (m *Mock) AccountFlair(ctx context.Context, community, account string) (string, error) {
	if m.AccountFlairFunc != nil {
		return m.AccountFlairFunc(ctx, community, account)
	}
	return "", nil
}

func (m *Mock) IsContributor(ctx context.Context, community, account string) (bool, error) {
	if m.IsContributorFunc != nil {
		return m.IsContributorFunc(ctx, community, account)
	}
	return false, nil
}

func (m *Mock) IsModerator(ctx context.Context, community, account string) (bool, error) {
	if m.IsModeratorFunc != nil {
		return m.IsModeratorFunc(ctx, community, account)
	}
	return false, nil
}

func (m *Mock) AccountMarked(ctx context.Context, account string) (bool, error) {
	if m.AccountMarkedFunc != nil {
		return m.AccountMarkedFunc(ctx, account)
	}
	return false, nil
}

func (m *Mock) LookupMarked(ctx context.Context, account string) (bool, error) {
	if m.LookupMarkedFunc != nil {
		return m.LookupMarkedFunc(ctx, account)
	}
	return false, nil
}

func (m *Mock) MarkedAccounts(ctx context.Context) ([]string, error) {
	if m.MarkedAccountsFunc != nil {
		return m.MarkedAccountsFunc(ctx)
	}
	return nil, nil
}

func (m *Mock) MarkAccount(ctx context.Context, account string) error {
	if m.MarkAccountFunc != nil {
		return m.MarkAccountFunc(ctx, account)
	}
	return nil
}

func (m *Mock) UnmarkAccount(ctx context.Context, account string) error {
	if m.UnmarkAccountFunc != nil {
		return m.UnmarkAccountFunc(ctx, account)
	}
	return nil
}

func (m *Mock) BansFor(ctx context.Context, community, account string) ([]Ban, error) {
	if m.BansForFunc != nil {
		return m.BansForFunc(ctx, community, account)
	}
	return nil, nil
}

func (m *Mock) AddBan(ctx context.Context, community, account, message, note string) error {
	if m.AddBanFunc != nil {
		return m.AddBanFunc(ctx, community, account, message, note)
	}
	return nil
}

func (m *Mock) RemoveBan(ctx context.Context, community, account string) error {
	if m.RemoveBanFunc != nil {
		return m.RemoveBanFunc(ctx, community, account)
	}
	return nil
}

func (m *Mock) MuteAccount(ctx context.Context, community, account string) error {
	if m.MuteAccountFunc != nil {
		return m.MuteAccountFunc(ctx, community, account)
	}
	return nil
}

func (m *Mock) RemoveContent(ctx context.Context, id string, spam bool) error {
	if m.RemoveContentFunc != nil {
		return m.RemoveContentFunc(ctx, id, spam)
	}
	return nil
}

func (m *Mock) ReportContent(ctx context.Context, id, reason string) error {
	if m.ReportContentFunc != nil {
		return m.ReportContentFunc(ctx, id, reason)
	}
	return nil
}

func (m *Mock) ModLog(ctx context.Context, community, action string, limit int) ([]ModLogEntry, error) {
	if m.ModLogFunc != nil {
		return m.ModLogFunc(ctx, community, action, limit)
	}
	return nil, nil
}

func (m *Mock) GetPost(ctx context.Context, id string) (*Post, error) {
	if m.GetPostFunc != nil {
		return m.GetPostFunc(ctx, id)
	}
	return nil, &Error{StatusCode: 404, Message: "no such post"}
}

func (m *Mock) CommunityPosts(ctx context.Context, community string, limit int) ([]Post, error) {
	if m.CommunityPostsFunc != nil {
		return m.CommunityPostsFunc(ctx, community, limit)
	}
	return nil, nil
}

func (m *Mock) SearchPosts(ctx context.Context, community, query string) ([]Post, error) {
	if m.SearchPostsFunc != nil {
		return m.SearchPostsFunc(ctx, community, query)
	}
	return nil, nil
}

func (m *Mock) SubmitPost(ctx context.Context, community, title, url string) (*Post, error) {
	if m.SubmitPostFunc != nil {
		return m.SubmitPostFunc(ctx, community, title, url)
	}
	return &Post{ID: "submitted", Title: title, URL: url}, nil
}

func (m *Mock) EditPost(ctx context.Context, id, body string) error {
	if m.EditPostFunc != nil {
		return m.EditPostFunc(ctx, id, body)
	}
	return nil
}

func (m *Mock) ReportPost(ctx context.Context, id, reason string) error {
	if m.ReportPostFunc != nil {
		return m.ReportPostFunc(ctx, id, reason)
	}
	return nil
}

func (m *Mock) RemovePost(ctx context.Context, id string) error {
	if m.RemovePostFunc != nil {
		return m.RemovePostFunc(ctx, id)
	}
	return nil
}

func (m *Mock) ReplyDistinguished(ctx context.Context, parentID, body string) error {
	if m.ReplyDistinguishedFunc != nil {
		return m.ReplyDistinguishedFunc(ctx, parentID, body)
	}
	return nil
}

func (m *Mock) ResolveAccount(ctx context.Context, name string) (string, error) {
	if m.ResolveAccountFunc != nil {
		return m.ResolveAccountFunc(ctx, name)
	}
	return name, nil
}

func (m *Mock) UnreadMessages(ctx context.Context, limit int) ([]Message, error) {
	if m.UnreadMessagesFunc != nil {
		return m.UnreadMessagesFunc(ctx, limit)
	}
	return nil, nil
}

func (m *Mock) MarkRead(ctx context.Context, id string) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, id)
	}
	return nil
}

func (m *Mock) ReplyMessage(ctx context.Context, id, body string) error {
	if m.ReplyMessageFunc != nil {
		return m.ReplyMessageFunc(ctx, id, body)
	}
	return nil
}

func (m *Mock) AcceptInvite(ctx context.Context, community string) error {
	if m.AcceptInviteFunc != nil {
		return m.AcceptInviteFunc(ctx, community)
	}
	return nil
}
