package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const blocklistKeyPrefix = "blocklist:"

// Blocklist tracks revoked token identifiers in Redis. Entries carry a TTL
// equal to the access-token lifetime, so expiry is the cleanup; no sweep
// process exists.
type Blocklist struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBlocklist constructs a Blocklist with the given revocation TTL.
func NewBlocklist(client *redis.Client, ttl time.Duration) *Blocklist {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Blocklist{client: client, ttl: ttl}
}

// Revoke records a jti until its TTL elapses.
func (b *Blocklist) Revoke(ctx context.Context, jti string) error {
	if err := b.client.Set(ctx, blocklistKeyPrefix+jti, "", b.ttl).Err(); err != nil {
		return fmt.Errorf("auth: revoke jti: %w", err)
	}
	return nil
}

// IsRevoked reports whether a jti has been revoked. A registry error is
// returned to the caller so the request fails instead of silently passing
// a possibly-revoked token.
func (b *Blocklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blocklistKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("auth: blocklist lookup: %w", err)
	}
	return n > 0, nil
}

// Remove deletes an entry before its TTL elapses. Normal operation relies on
// passive expiry; this exists for operational cleanup.
func (b *Blocklist) Remove(ctx context.Context, jti string) error {
	if err := b.client.Del(ctx, blocklistKeyPrefix+jti).Err(); err != nil {
		return fmt.Errorf("auth: remove jti: %w", err)
	}
	return nil
}
