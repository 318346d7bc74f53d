package platform

import (
	"time"
)

// Capability is a single moderation permission held in one community.
type Capability string

const (
	// CapAccess allows restricting accounts (ban/unban).
	CapAccess = Capability("access")
	// CapPosts allows removing and approving content.
	CapPosts = Capability("posts")
	// CapMail allows community messaging, including muting accounts.
	CapMail = Capability("mail")
	// CapAll is full control, implying every other capability.
	CapAll = Capability("all")
)

// CapabilitySet is the set of permissions held in one community.
type CapabilitySet []Capability

func (s CapabilitySet) Has(c Capability) bool {
	for _, cur := range s {
		if cur == c {
			return true
		}
	}
	return false
}

func (s CapabilitySet) Empty() bool {
	return len(s) == 0
}

// Strings returns the wire values, for logging.
func (s CapabilitySet) Strings() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = string(c)
	}
	return out
}

// Community is a moderated space on the platform.
type Community struct {
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	Quarantined bool          `json:"quarantined"`
	Held        CapabilitySet `json:"capabilities,omitempty"`
}

// ItemKind discriminates the activity streams.
type ItemKind string

const (
	KindComment    = ItemKind("comment")
	KindSubmission = ItemKind("submission")
)

// ActivityItem is a single comment, submission, or moderation queue entry.
type ActivityItem struct {
	ID        string   `json:"id"`
	Kind      ItemKind `json:"kind"`
	Author    string   `json:"author"`
	Community string   `json:"community"`
	Permalink string   `json:"permalink"`
	// set if a moderator (or the platform itself) already removed the content
	RemovedBy string `json:"removed_by,omitempty"`
}

// Ban is one entry in a community's ban list.
type Ban struct {
	Account string `json:"account"`
	Note    string `json:"note,omitempty"`
}

// ModLogEntry is one entry from a community's moderation log.
type ModLogEntry struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	Actor        string    `json:"actor"`
	TargetAuthor string    `json:"target_author"`
	TargetID     string    `json:"target_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Post is a submission in a community, including ledger posts whose label
// (link flair) carries the flag/clear decision for one account.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	URL       string    `json:"url,omitempty"`
	Permalink string    `json:"permalink"`
	Label     string    `json:"label,omitempty"`
	SelfPost  bool      `json:"self_post"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a single inbox item.
type Message struct {
	ID            string `json:"id"`
	Author        string `json:"author"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	Community     string `json:"community,omitempty"`
	Distinguished string `json:"distinguished,omitempty"`
}

// post fullnames carry a type prefix on the wire
const postIDPrefix = "t3_"

// PostID extracts the bare post identifier from a mod log target, or returns
// false if the target is not a post.
func (e *ModLogEntry) PostID() (string, bool) {
	if len(e.TargetID) > len(postIDPrefix) && e.TargetID[:len(postIDPrefix)] == postIDPrefix {
		return e.TargetID[len(postIDPrefix):], true
	}
	return "", false
}
