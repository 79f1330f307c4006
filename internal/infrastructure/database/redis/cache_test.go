package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
)

type cachedResult struct {
	HS6        string  `json:"hs6"`
	Confidence float64 `json:"confidence"`
}

func newTestCache(t *testing.T) Cache {
	t.Helper()
	client := newTestClient(t)
	return NewRedisCache(client, logging.NewNopLogger(), WithPrefix("test:"))
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	in := cachedResult{HS6: "090121", Confidence: 0.82}
	require.NoError(t, cache.Set(ctx, "result:abc", in, time.Minute))

	var out cachedResult
	require.NoError(t, cache.Get(ctx, "result:abc", &out))
	assert.Equal(t, in, out)
}

func TestCache_GetMiss(t *testing.T) {
	cache := newTestCache(t)

	var out cachedResult
	err := cache.Get(context.Background(), "absent", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCache_Delete(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, cache.Delete(ctx, "k"))

	exists, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCache_GetOrSet_LoadsOnceAndCaches(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return cachedResult{HS6: "610910", Confidence: 0.9}, nil
	}

	var first cachedResult
	require.NoError(t, cache.GetOrSet(ctx, "k", &first, time.Minute, loader))
	assert.Equal(t, "610910", first.HS6)

	var second cachedResult
	require.NoError(t, cache.GetOrSet(ctx, "k", &second, time.Minute, loader))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCache_GetOrSet_NilResultNegativelyCached(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	loader := func(ctx context.Context) (interface{}, error) { return nil, nil }

	var out cachedResult
	err := cache.GetOrSet(ctx, "void", &out, time.Minute, loader)
	assert.ErrorIs(t, err, ErrCacheMiss)

	// The sentinel must read back as a miss, not as a value.
	err = cache.Get(ctx, "void", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCache_GetOrSet_LoaderErrorPropagates(t *testing.T) {
	cache := newTestCache(t)

	boom := errors.New("backend down")
	var out cachedResult
	err := cache.GetOrSet(context.Background(), "k", &out, time.Minute,
		func(ctx context.Context) (interface{}, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestCache_DeleteByPrefix(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "emb:a", []float32{1}, time.Minute))
	require.NoError(t, cache.Set(ctx, "emb:b", []float32{2}, time.Minute))
	require.NoError(t, cache.Set(ctx, "result:c", "keep", time.Minute))

	deleted, err := cache.DeleteByPrefix(ctx, "emb:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	exists, err := cache.Exists(ctx, "result:c")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCache_Incr(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	n, err := cache.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = cache.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

//Personal.AI order the ending
