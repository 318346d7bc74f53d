package engine

import (
	"context"
	"fmt"

	"github.com/botguard/botguard/platform"
)

// Roster is a snapshot of the platform's marked-account list. The moderation
// queue consults it as a cheap pre-filter before the oracle's tiered lookup,
// and the full-list oracle tier refreshes it as a side effect.
type Roster struct {
	accounts map[string]bool
}

func NewRoster() *Roster {
	return &Roster{
		accounts: make(map[string]bool),
	}
}

func (r *Roster) Contains(account string) bool {
	return r.accounts[account]
}

func (r *Roster) Len() int {
	return len(r.accounts)
}

func (r *Roster) replace(accounts []string) {
	m := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		m[a] = true
	}
	r.accounts = m
}

// Refresh reloads the snapshot. An empty marked list is an error: the ledger
// always carries flagged accounts, so empty means a bad read.
func (r *Roster) Refresh(ctx context.Context, client platform.API) error {
	accounts, err := client.MarkedAccounts(ctx)
	if err != nil {
		return fmt.Errorf("loading marked accounts: %w", err)
	}
	if len(accounts) == 0 {
		return fmt.Errorf("empty marked account list")
	}
	r.replace(accounts)
	return nil
}
