package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"quill/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Aside is the cache-aside read path: return the cached value when the
// key holds one, otherwise run fetch (which must populate dest) and
// store the result with ttl. Without a connected client every call
// falls through to fetch. The write-back is best-effort.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	prefix := keyPrefix(key)

	found, err := lookup(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		middleware.CacheHits.WithLabelValues(prefix).Inc()
		return nil
	}
	middleware.CacheMisses.WithLabelValues(prefix).Inc()

	if err := fetch(); err != nil {
		return err
	}

	if client != nil {
		if b, err := json.Marshal(dest); err == nil {
			client.Set(ctx, key, b, ttl)
		}
	}
	return nil
}

// lookup reads and unmarshals a cached value, reporting whether the
// key was present. Unmarshal failures count as errors, not misses, so
// a corrupt entry is noticed rather than silently refetched forever.
func lookup(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}

	s, err := client.Get(ctx, key).Result()
	switch {
	case err == redis.Nil:
		return false, nil
	case err != nil:
		return false, err
	}

	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

func keyPrefix(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
