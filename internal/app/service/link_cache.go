package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	linkCachePrefix = "link:"
	linkCacheTTL    = 5 * time.Minute
	linkCacheOpTTL  = 2 * time.Second
)

// TargetCache caches code -> target URL mappings for the redirect hot path.
// Entries exist only for resolvable (active) links; writers invalidate on any
// visibility change.
type TargetCache interface {
	Get(ctx context.Context, code string) (string, bool)
	Set(ctx context.Context, code, target string)
	Invalidate(ctx context.Context, code string)
}

type nopTargetCache struct{}

func (nopTargetCache) Get(context.Context, string) (string, bool) { return "", false }
func (nopTargetCache) Set(context.Context, string, string)        {}
func (nopTargetCache) Invalidate(context.Context, string)         {}

// LinkCache is a best-effort Redis TargetCache. The short TTL bounds how long
// an entry that slipped past invalidation can live. All methods tolerate a
// nil receiver and swallow Redis errors: the store stays the source of truth.
type LinkCache struct {
	rdb *redis.Client
}

// NewLinkCache wraps the given Redis client. A nil client yields a no-op cache.
func NewLinkCache(rdb *redis.Client) *LinkCache {
	if rdb == nil {
		return nil
	}
	return &LinkCache{rdb: rdb}
}

// Get returns the cached target for code, if any.
func (c *LinkCache) Get(ctx context.Context, code string) (string, bool) {
	if c == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, linkCacheOpTTL)
	defer cancel()

	target, err := c.rdb.Get(ctx, linkCachePrefix+code).Result()
	if err != nil {
		return "", false
	}
	return target, true
}

// Set caches the target for code.
func (c *LinkCache) Set(ctx context.Context, code, target string) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, linkCacheOpTTL)
	defer cancel()

	c.rdb.Set(ctx, linkCachePrefix+code, target, linkCacheTTL)
}

// Invalidate drops the cached entry for code.
func (c *LinkCache) Invalidate(ctx context.Context, code string) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, linkCacheOpTTL)
	defer cancel()

	c.rdb.Del(ctx, linkCachePrefix+code)
}
