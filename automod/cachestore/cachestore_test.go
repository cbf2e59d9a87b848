package cachestore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCacheStore(t *testing.T, cs CacheStore) {
	assert := assert.New(t)
	ctx := context.Background()

	v, err := cs.Get(ctx, "admin", "100/7")
	assert.NoError(err)
	assert.Equal("", v)

	assert.NoError(cs.Set(ctx, "admin", "100/7", "true"))
	assert.NoError(cs.Set(ctx, "admin", "100/8", "false"))
	assert.NoError(cs.Set(ctx, "other", "100/7", "x"))

	v, err = cs.Get(ctx, "admin", "100/7")
	assert.NoError(err)
	assert.Equal("true", v)
	v, err = cs.Get(ctx, "admin", "100/8")
	assert.NoError(err)
	assert.Equal("false", v)
	v, err = cs.Get(ctx, "other", "100/7")
	assert.NoError(err)
	assert.Equal("x", v)

	assert.NoError(cs.Purge(ctx, "admin", "100/7"))
	assert.NoError(cs.Purge(ctx, "admin", "100/7"))
	v, err = cs.Get(ctx, "admin", "100/7")
	assert.NoError(err)
	assert.Equal("", v)
}

func TestMemCacheStore(t *testing.T) {
	cs := NewMemCacheStore(10, time.Hour)
	testCacheStore(t, cs)
	assert.Equal(t, 2, cs.Len())
}

func TestMemCacheStoreEviction(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	cs := NewMemCacheStore(2, time.Hour)

	assert.NoError(cs.Set(ctx, "admin", "a", "true"))
	assert.NoError(cs.Set(ctx, "admin", "b", "true"))
	assert.NoError(cs.Set(ctx, "admin", "c", "true"))

	v, _ := cs.Get(ctx, "admin", "a")
	assert.Equal("", v)
	v, _ = cs.Get(ctx, "admin", "c")
	assert.Equal("true", v)
}

func TestRedisCacheStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cs := NewRedisCacheStoreFromClient(rdb, time.Hour)
	testCacheStore(t, cs)
	assert.True(t, mr.Exists(DefaultRedisPrefix+"admin/100/8"))
}

func TestRedisCacheStoreURL(t *testing.T) {
	mr := miniredis.RunT(t)
	cs, err := NewRedisCacheStore("redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	testCacheStore(t, cs)

	_, err = NewRedisCacheStore("not a url", time.Minute)
	assert.Error(t, err)
}
