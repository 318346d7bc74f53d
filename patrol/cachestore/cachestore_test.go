package cachestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemCacheStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCacheStore(10, time.Minute)

	v, err := cs.Get(ctx, "flag", "alice")
	assert.NoError(err)
	assert.Equal("", v)

	assert.NoError(cs.Set(ctx, "flag", "alice", "true"))
	v, err = cs.Get(ctx, "flag", "alice")
	assert.NoError(err)
	assert.Equal("true", v)

	// namespaces do not collide
	v, err = cs.Get(ctx, "other", "alice")
	assert.NoError(err)
	assert.Equal("", v)

	assert.NoError(cs.Purge(ctx, "flag", "alice"))
	v, err = cs.Get(ctx, "flag", "alice")
	assert.NoError(err)
	assert.Equal("", v)
}

func TestMemCacheStoreExpiry(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCacheStore(10, 50*time.Millisecond)
	assert.NoError(cs.Set(ctx, "flag", "bob", "false"))
	time.Sleep(100 * time.Millisecond)

	v, err := cs.Get(ctx, "flag", "bob")
	assert.NoError(err)
	assert.Equal("", v)
}
