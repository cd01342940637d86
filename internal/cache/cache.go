package cache

import (
	"context"
	"time"
)

// Cache is a small JSON read-through cache. The feed path uses it to avoid
// re-reading the full published-job list on every swipe request; writers
// invalidate with Del.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// KeyPublishedJobs caches the base list the swipe feed ranks.
const KeyPublishedJobs = "jobs:published"
