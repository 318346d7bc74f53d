package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/botguard/botguard/platform"
)

// CommunitySet is the current set of monitored communities. It is rebuilt
// periodically from the platform and appended to when a moderator invitation
// is accepted. Single-writer; no locking.
type CommunitySet struct {
	byName map[string]platform.Community
}

func NewCommunitySet() *CommunitySet {
	return &CommunitySet{
		byName: make(map[string]platform.Community),
	}
}

func (s *CommunitySet) Contains(name string) bool {
	_, ok := s.byName[name]
	return ok
}

func (s *CommunitySet) Add(c platform.Community) {
	s.byName[c.Name] = c
}

func (s *CommunitySet) Len() int {
	return len(s.byName)
}

// Names returns the member community names in stable order.
func (s *CommunitySet) Names() []string {
	out := make([]string, 0, len(s.byName))
	for name := range s.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Reload replaces the whole set from the platform's directory of communities
// this account moderates. An empty result is treated as an error: the account
// always moderates at least its own home community.
func (s *CommunitySet) Reload(ctx context.Context, client platform.API) error {
	communities, err := client.ModeratedCommunities(ctx)
	if err != nil {
		return fmt.Errorf("loading moderated communities: %w", err)
	}
	if len(communities) == 0 {
		return fmt.Errorf("empty community list")
	}
	byName := make(map[string]platform.Community, len(communities))
	for _, c := range communities {
		byName[c.Name] = c
	}
	s.byName = byName
	return nil
}
