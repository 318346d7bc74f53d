package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/botguard/botguard/util"

	"github.com/carlmjohnson/versioninfo"
	"golang.org/x/time/rate"
)

// Client talks to the moderated platform's REST API. All methods block; rate
// limiting, retries, and timeouts live inside the client so callers stay
// single-threaded and simple.
type Client struct {
	// Client is an HTTP client to use. If not set, defaults to util.RobustHTTPClient().
	Client    *http.Client
	Host      string
	Token     string
	UserAgent *string
	// Limiter, if set, gates every outbound request.
	Limiter *rate.Limiter
}

var _ API = (*Client)(nil)

// Error is returned for non-2xx API responses.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("platform error (HTTP %d): %s", e.StatusCode, e.Message)
}

func (e *Error) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (c *Client) getClient() *http.Client {
	if c.Client == nil {
		return util.RobustHTTPClient()
	}
	return c.Client
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	u := c.Host + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("constructing request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.UserAgent != nil {
		req.Header.Set("User-Agent", *c.UserAgent)
	} else {
		req.Header.Set("User-Agent", "botguard/"+versioninfo.Short())
	}

	resp, err := c.getClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var eb struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err := json.Unmarshal(raw, &eb); err != nil || eb.Message == "" {
			eb.Message = string(raw)
		}
		return &Error{StatusCode: resp.StatusCode, Message: eb.Message}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
	}
	return nil
}

func limitParams(limit int) url.Values {
	return url.Values{"limit": []string{strconv.Itoa(limit)}}
}

// notFound reports whether err is an API-level 404.
func notFound(err error) bool {
	pe, ok := err.(*Error)
	return ok && pe.NotFound()
}

func (c *Client) ModeratedCommunities(ctx context.Context) ([]Community, error) {
	var out []Community
	if err := c.do(ctx, http.MethodGet, "/api/v1/me/communities", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CommunityCapabilities(ctx context.Context, community, account string) (CapabilitySet, error) {
	var out struct {
		Capabilities CapabilitySet `json:"capabilities"`
	}
	path := "/api/v1/communities/" + url.PathEscape(community) + "/moderators/" + url.PathEscape(account)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return out.Capabilities, nil
}

func (c *Client) CommunityInfo(ctx context.Context, community string) (*Community, error) {
	var out Community
	path := "/api/v1/communities/" + url.PathEscape(community) + "/about"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RecentComments(ctx context.Context, scope string, limit int) ([]ActivityItem, error) {
	var out []ActivityItem
	path := "/api/v1/communities/" + url.PathEscape(scope) + "/comments"
	if err := c.do(ctx, http.MethodGet, path, limitParams(limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RecentSubmissions(ctx context.Context, scope string, limit int) ([]ActivityItem, error) {
	var out []ActivityItem
	path := "/api/v1/communities/" + url.PathEscape(scope) + "/submissions"
	if err := c.do(ctx, http.MethodGet, path, limitParams(limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ModQueue(ctx context.Context, limit int) ([]ActivityItem, error) {
	var out []ActivityItem
	params := limitParams(limit)
	params.Set("only", "submissions")
	if err := c.do(ctx, http.MethodGet, "/api/v1/me/modqueue", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AccountFlair(ctx context.Context, community, account string) (string, error) {
	var out struct {
		CSSClass string `json:"css_class"`
	}
	path := "/api/v1/communities/" + url.PathEscape(community) + "/flair/" + url.PathEscape(account)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		if notFound(err) {
			return "", nil
		}
		return "", err
	}
	return out.CSSClass, nil
}

func (c *Client) IsContributor(ctx context.Context, community, account string) (bool, error) {
	path := "/api/v1/communities/" + url.PathEscape(community) + "/contributors/" + url.PathEscape(account)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, nil); err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) IsModerator(ctx context.Context, community, account string) (bool, error) {
	path := "/api/v1/communities/" + url.PathEscape(community) + "/moderators/" + url.PathEscape(account)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, nil); err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) AccountMarked(ctx context.Context, account string) (bool, error) {
	var out struct {
		Name   string `json:"name"`
		Marked bool   `json:"marked"`
	}
	path := "/api/v1/accounts/" + url.PathEscape(account)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return false, err
	}
	return out.Marked, nil
}

func (c *Client) LookupMarked(ctx context.Context, account string) (bool, error) {
	var out struct {
		Name string `json:"name"`
	}
	path := "/api/v1/me/marked/" + url.PathEscape(account)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	return out.Name == account, nil
}

func (c *Client) MarkedAccounts(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/api/v1/me/marked", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MarkAccount(ctx context.Context, account string) error {
	path := "/api/v1/me/marked/" + url.PathEscape(account)
	return c.do(ctx, http.MethodPut, path, nil, nil, nil)
}

func (c *Client) UnmarkAccount(ctx context.Context, account string) error {
	path := "/api/v1/me/marked/" + url.PathEscape(account)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) BansFor(ctx context.Context, community, account string) ([]Ban, error) {
	var out []Ban
	path := "/api/v1/communities/" + url.PathEscape(community) + "/banned"
	params := url.Values{"account": []string{account}}
	if err := c.do(ctx, http.MethodGet, path, params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddBan(ctx context.Context, community, account, message, note string) error {
	path := "/api/v1/communities/" + url.PathEscape(community) + "/banned"
	body := map[string]string{
		"account": account,
		"message": message,
		"note":    note,
	}
	return c.do(ctx, http.MethodPost, path, nil, body, nil)
}

func (c *Client) RemoveBan(ctx context.Context, community, account string) error {
	path := "/api/v1/communities/" + url.PathEscape(community) + "/banned/" + url.PathEscape(account)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) MuteAccount(ctx context.Context, community, account string) error {
	path := "/api/v1/communities/" + url.PathEscape(community) + "/muted"
	return c.do(ctx, http.MethodPost, path, nil, map[string]string{"account": account}, nil)
}

func (c *Client) RemoveContent(ctx context.Context, id string, spam bool) error {
	path := "/api/v1/items/" + url.PathEscape(id) + "/remove"
	return c.do(ctx, http.MethodPost, path, nil, map[string]bool{"spam": spam}, nil)
}

func (c *Client) ReportContent(ctx context.Context, id, reason string) error {
	path := "/api/v1/items/" + url.PathEscape(id) + "/report"
	return c.do(ctx, http.MethodPost, path, nil, map[string]string{"reason": reason}, nil)
}

func (c *Client) ModLog(ctx context.Context, community, action string, limit int) ([]ModLogEntry, error) {
	var out []ModLogEntry
	path := "/api/v1/communities/" + url.PathEscape(community) + "/log"
	params := limitParams(limit)
	params.Set("action", action)
	if err := c.do(ctx, http.MethodGet, path, params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*Post, error) {
	var out Post
	path := "/api/v1/posts/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CommunityPosts(ctx context.Context, community string, limit int) ([]Post, error) {
	var out []Post
	path := "/api/v1/communities/" + url.PathEscape(community) + "/posts"
	if err := c.do(ctx, http.MethodGet, path, limitParams(limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchPosts(ctx context.Context, community, query string) ([]Post, error) {
	var out []Post
	path := "/api/v1/communities/" + url.PathEscape(community) + "/search"
	params := url.Values{"q": []string{query}}
	if err := c.do(ctx, http.MethodGet, path, params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SubmitPost(ctx context.Context, community, title, postURL string) (*Post, error) {
	var out Post
	path := "/api/v1/communities/" + url.PathEscape(community) + "/posts"
	body := map[string]string{"title": title, "url": postURL}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EditPost(ctx context.Context, id, body string) error {
	path := "/api/v1/posts/" + url.PathEscape(id) + "/edit"
	return c.do(ctx, http.MethodPost, path, nil, map[string]string{"body": body}, nil)
}

func (c *Client) ReportPost(ctx context.Context, id, reason string) error {
	path := "/api/v1/posts/" + url.PathEscape(id) + "/report"
	return c.do(ctx, http.MethodPost, path, nil, map[string]string{"reason": reason}, nil)
}

func (c *Client) RemovePost(ctx context.Context, id string) error {
	path := "/api/v1/posts/" + url.PathEscape(id) + "/remove"
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

func (c *Client) ReplyDistinguished(ctx context.Context, parentID, body string) error {
	path := "/api/v1/posts/" + url.PathEscape(parentID) + "/replies"
	req := map[string]any{"body": body, "distinguish": true}
	return c.do(ctx, http.MethodPost, path, nil, req, nil)
}

func (c *Client) ResolveAccount(ctx context.Context, name string) (string, error) {
	var out struct {
		Name string `json:"name"`
	}
	path := "/api/v1/accounts/" + url.PathEscape(name)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		if notFound(err) {
			return "", nil
		}
		return "", err
	}
	return out.Name, nil
}

func (c *Client) UnreadMessages(ctx context.Context, limit int) ([]Message, error) {
	var out []Message
	if err := c.do(ctx, http.MethodGet, "/api/v1/me/inbox/unread", limitParams(limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MarkRead(ctx context.Context, id string) error {
	path := "/api/v1/messages/" + url.PathEscape(id) + "/read"
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

func (c *Client) ReplyMessage(ctx context.Context, id, body string) error {
	path := "/api/v1/messages/" + url.PathEscape(id) + "/replies"
	return c.do(ctx, http.MethodPost, path, nil, map[string]string{"body": body}, nil)
}

func (c *Client) AcceptInvite(ctx context.Context, community string) error {
	path := "/api/v1/communities/" + url.PathEscape(community) + "/moderators/accept_invite"
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}
