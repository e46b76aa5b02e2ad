package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:jti:"

// RevocationCache keeps revoked JTIs in redis so the per-request
// revocation check usually avoids a database round trip. It is a pure
// accelerator: a miss means "consult the token store", never "valid".
type RevocationCache struct {
	client *redis.Client
}

func NewRevocationCache(client *redis.Client) *RevocationCache {
	return &RevocationCache{client: client}
}

// MarkRevoked records jti as revoked until its natural expiry, after
// which the entry is useless anyway.
func (c *RevocationCache) MarkRevoked(ctx context.Context, jti string, expiresAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether jti is known-revoked. Errors degrade to a
// miss so redis outages only cost the database lookup.
func (c *RevocationCache) IsRevoked(ctx context.Context, jti string) bool {
	if c == nil || c.client == nil {
		return false
	}
	n, err := c.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false
	}
	return n > 0
}
