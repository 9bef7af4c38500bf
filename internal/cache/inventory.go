package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	indexKeyPrefix     = "index_page:p%d"
	blacklistKeyPrefix = "blacklist:%s"
)

const (
	// IndexTTL bounds how stale the cached index listing may be.
	IndexTTL = 20 * time.Second
	// BlacklistTTL keeps revoked token IDs around for the token lifetime.
	BlacklistTTL = 24 * time.Hour
)

// IndexKey returns the cache key for one page of the index listing.
func IndexKey(page int) string {
	return fmt.Sprintf(indexKeyPrefix, page)
}

// BlacklistKey returns the revocation key for a token JTI.
func BlacklistKey(jti string) string {
	return fmt.Sprintf(blacklistKeyPrefix, jti)
}

// Invalidate removes a key. It is a no-op without a connected client.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// BlacklistToken marks a token JTI as revoked.
func BlacklistToken(ctx context.Context, jti string) {
	if client != nil {
		client.Set(ctx, BlacklistKey(jti), "1", BlacklistTTL)
	}
}

// IsTokenBlacklisted reports whether a token JTI has been revoked.
// Without a connected client no token counts as revoked.
func IsTokenBlacklisted(ctx context.Context, jti string) bool {
	if client == nil {
		return false
	}
	n, err := client.Exists(ctx, BlacklistKey(jti)).Result()
	return err == nil && n > 0
}
