package engine

import (
	"log/slog"

	"github.com/botguard/botguard/platform"
)

// EngineTestFixture returns an engine wired against an empty platform mock,
// moderating its home community plus one scanned community. No cache store is
// attached so tests observe every oracle lookup.
func EngineTestFixture() *Engine {
	eng := &Engine{
		Logger:      slog.Default(),
		Client:      &platform.Mock{},
		Communities: NewCommunitySet(),
		Marked:      NewRoster(),
		Self:        "botguard",
		Home:        "botguardhome",
	}
	eng.Communities.Add(platform.Community{Name: "botguardhome", Type: "public"})
	eng.Communities.Add(platform.Community{Name: "widgets", Type: "public"})
	return eng
}

// Mock returns the fixture's platform mock for per-test behavior overrides.
func (eng *Engine) Mock() *platform.Mock {
	return eng.Client.(*platform.Mock)
}
