package engine

import (
	"context"
)

// Status is the three-valued answer to "is this account currently flagged".
// Unknown is not false: callers must never mutate state on an Unknown read.
type Status int

const (
	StatusUnknown = Status(iota)
	StatusClear
	StatusFlagged
)

func (s Status) String() string {
	switch s {
	case StatusClear:
		return "clear"
	case StatusFlagged:
		return "flagged"
	default:
		return "unknown"
	}
}

const flagCacheName = "flag"

// AccountStatus resolves the canonical flag state for an account with tiered
// fallback: the per-account relation, then the relation lookup endpoint, then
// a full scan of the marked list. Each tier is tried only after the previous
// one errored; Unknown is returned only when all three fail. Definitive
// answers are cached briefly; Unknown never is.
func (eng *Engine) AccountStatus(ctx context.Context, account string) Status {
	if eng.Cache != nil {
		switch v, err := eng.Cache.Get(ctx, flagCacheName, account); {
		case err != nil:
			eng.Logger.Warn("flag cache read failed", "account", account, "err", err)
		case v == "flagged":
			oracleLookupCount.WithLabelValues("cached").Inc()
			return StatusFlagged
		case v == "clear":
			oracleLookupCount.WithLabelValues("cached").Inc()
			return StatusClear
		}
	}

	marked, ok := eng.lookupMarked(ctx, account)
	if !ok {
		oracleLookupCount.WithLabelValues("unknown").Inc()
		return StatusUnknown
	}

	status := StatusClear
	if marked {
		status = StatusFlagged
	}
	oracleLookupCount.WithLabelValues(status.String()).Inc()
	if eng.Cache != nil {
		if err := eng.Cache.Set(ctx, flagCacheName, account, status.String()); err != nil {
			eng.Logger.Warn("flag cache write failed", "account", account, "err", err)
		}
	}
	return status
}

func (eng *Engine) lookupMarked(ctx context.Context, account string) (marked, ok bool) {
	marked, err := eng.Client.AccountMarked(ctx, account)
	if err == nil {
		return marked, true
	}
	oracleTierErrorCount.WithLabelValues("relation").Inc()
	eng.Logger.Debug("account relation check failed", "account", account, "err", err)

	marked, err = eng.Client.LookupMarked(ctx, account)
	if err == nil {
		return marked, true
	}
	oracleTierErrorCount.WithLabelValues("lookup").Inc()
	eng.Logger.Debug("marked relation lookup failed", "account", account, "err", err)

	accounts, err := eng.Client.MarkedAccounts(ctx)
	if err != nil {
		oracleTierErrorCount.WithLabelValues("scan").Inc()
		eng.Logger.Error("marked list scan failed", "account", account, "err", err)
		return false, false
	}
	// keep the roster fresh while we have the full list in hand
	if eng.Marked != nil && len(accounts) > 0 {
		eng.Marked.replace(accounts)
	}
	for _, a := range accounts {
		if a == account {
			return true, true
		}
	}
	return false, true
}

// purgeStatus drops any cached answer for an account. Called after every
// registry mutation so the next decision sees the new state.
func (eng *Engine) purgeStatus(ctx context.Context, account string) {
	if eng.Cache == nil {
		return
	}
	if err := eng.Cache.Purge(ctx, flagCacheName, account); err != nil {
		eng.Logger.Warn("flag cache purge failed", "account", account, "err", err)
	}
}
