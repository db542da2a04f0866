package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func TestKeys(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "post:5", PostKey(5))
	assert.Equal(t, "post:5:likes", LikeCountKey(5))
	assert.Equal(t, "posts:latest", PostsListKey())
}

func TestGetSetJSON(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	found, err := GetJSON(ctx, "missing", &payload{})
	assert.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "k", payload{Name: "v"}, time.Minute))

	var got payload
	found, err = GetJSON(ctx, "k", &got)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", got.Name)
}

func TestAside(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *int) func() error {
		return func() error {
			calls++
			*dest = 42
			return nil
		}
	}

	var v int
	require.NoError(t, Aside(ctx, "answer", &v, time.Minute, fetch(&v)))
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	// Second read is served from the cache.
	var v2 int
	require.NoError(t, Aside(ctx, "answer", &v2, time.Minute, fetch(&v2)))
	assert.Equal(t, 42, v2)
	assert.Equal(t, 1, calls)
}

func TestAsidePropagatesFetchError(t *testing.T) {
	withMiniredis(t)

	sentinel := errors.New("boom")
	var v int
	err := Aside(context.Background(), "k", &v, time.Minute, func() error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestInvalidatePost(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey(1), "a", time.Minute))
	require.NoError(t, SetJSON(ctx, LikeCountKey(1), 3, time.Minute))
	require.NoError(t, SetJSON(ctx, PostsListKey(), "list", time.Minute))

	InvalidatePost(ctx, 1)

	for _, key := range []string{PostKey(1), LikeCountKey(1), PostsListKey()} {
		found, err := GetJSON(ctx, key, new(string))
		assert.NoError(t, err)
		assert.False(t, found, "expected %s to be invalidated", key)
	}
}

func TestNilClientDegradesGracefully(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	found, err := GetJSON(ctx, "k", new(string))
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetJSON(ctx, "k", "v", time.Minute))

	calls := 0
	var v string
	require.NoError(t, Aside(ctx, "k", &v, time.Minute, func() error {
		calls++
		v = "fresh"
		return nil
	}))
	assert.Equal(t, "fresh", v)
	assert.Equal(t, 1, calls)
}
