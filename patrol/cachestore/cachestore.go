package cachestore

import (
	"context"
)

// CacheStore is a generic TTL string cache, namespaced by name. The oracle
// uses it to hold definitive flag answers between polls.
type CacheStore interface {
	Get(ctx context.Context, name, key string) (string, error)
	Set(ctx context.Context, name, key string, val string) error
	Purge(ctx context.Context, name, key string) error
}
