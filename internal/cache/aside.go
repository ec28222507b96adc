package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tecnopronto/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	// PostsListTTL bounds staleness of the cached first page of published posts.
	PostsListTTL = 2 * time.Minute
	// CategoriesTTL bounds staleness of the cached category navigation.
	CategoriesTTL = 10 * time.Minute

	postsListPrefix = "posts:published:"
	categoriesKey   = "categories:nav"
)

// PostsListKey is the key of one page of the published posts listing.
func PostsListKey(page int) string {
	return fmt.Sprintf("%spage:%d", postsListPrefix, page)
}

// CategoriesKey is the key of the category navigation with post counts.
func CategoriesKey() string {
	return categoriesKey
}

// GetJSON loads key into dest. It returns (false, nil) on a miss or when Redis is disabled.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores v under key with ttl.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, raw, ttl).Err()
}

// Aside reads key into dest, falling back to fetch (which must populate dest)
// on a miss. Cache failures are logged and never fail the read.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Invalidate deletes the given keys.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", slog.String("error", err.Error()))
	}
}

// InvalidatePostsList drops every cached listing page and the category counts.
func InvalidatePostsList(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, postsListPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache scan failed", slog.String("error", err.Error()))
	}
	Invalidate(ctx, append(keys, categoriesKey)...)
}
