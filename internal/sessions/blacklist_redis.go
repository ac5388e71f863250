package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist records revoked access tokens until they would have expired anyway.
// A nil *Blacklist, or one without a client, revokes nothing.
type Blacklist struct {
	client redis.UniversalClient
	prefix string
}

func NewBlacklist(client redis.UniversalClient) *Blacklist {
	return &Blacklist{client: client, prefix: "portfolio:blacklist:access:"}
}

func (b *Blacklist) enabled() bool { return b != nil && b.client != nil }

// Revoke blacklists token for ttl. Non-positive ttls are ignored.
func (b *Blacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if !b.enabled() || ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, b.prefix+HashToken(token), "1", ttl).Err()
}

// IsRevoked reports whether token has been blacklisted.
func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if !b.enabled() {
		return false, nil
	}
	n, err := b.client.Exists(ctx, b.prefix+HashToken(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
