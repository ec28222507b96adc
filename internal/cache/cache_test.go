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

// The cache uses a package-level client, so these tests do not run in parallel.
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

type page struct {
	Titles []string `json:"titles"`
}

func TestAside_MissThenHit(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *page) func() error {
		return func() error {
			calls++
			dest.Titles = []string{"first"}
			return nil
		}
	}

	var a page
	require.NoError(t, Aside(ctx, PostsListKey(1), &a, time.Minute, fetch(&a)))
	var b page
	require.NoError(t, Aside(ctx, PostsListKey(1), &b, time.Minute, fetch(&b)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"first"}, b.Titles)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := withMiniredis(t)
	boom := errors.New("db down")

	var p page
	err := Aside(context.Background(), PostsListKey(1), &p, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(PostsListKey(1)))
}

func TestAside_WithoutRedis(t *testing.T) {
	SetClient(nil)
	calls := 0
	var p page
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(context.Background(), "k", &p, time.Minute, func() error {
			calls++
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
}

func TestInvalidatePostsList(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostsListKey(1), page{}, time.Minute))
	require.NoError(t, SetJSON(ctx, PostsListKey(2), page{}, time.Minute))
	require.NoError(t, SetJSON(ctx, CategoriesKey(), page{}, time.Minute))
	require.NoError(t, mr.Set("session:abc", "{}"))

	InvalidatePostsList(ctx)

	assert.False(t, mr.Exists(PostsListKey(1)))
	assert.False(t, mr.Exists(PostsListKey(2)))
	assert.False(t, mr.Exists(CategoriesKey()))
	assert.True(t, mr.Exists("session:abc"))
}

func TestMetricsHookCountsErrors(t *testing.T) {
	mr := withMiniredis(t)
	mr.SetError("forced failure")
	defer mr.SetError("")

	_, err := GetJSON(context.Background(), "k", &page{})
	assert.Error(t, err)
}
