package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "portfolio:session:"

// RedisRepository keeps one hash per session at <prefix><tokenHash>.
// Redis expires the key at the session's ExpiresAt.
type RedisRepository struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisRepository(client redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(tokenHash string) string {
	return r.prefix + tokenHash
}

func (r *RedisRepository) Create(ctx context.Context, s *Session) error {
	if !s.ExpiresAt.After(time.Now()) {
		return fmt.Errorf("session already expired at %s", s.ExpiresAt.Format(time.RFC3339))
	}
	k := r.key(s.TokenHash)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, map[string]interface{}{
			"id":        s.ID,
			"subject":   s.Subject,
			"expiresAt": s.ExpiresAt.UTC().Format(time.RFC3339Nano),
			"createdAt": s.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		pipe.ExpireAt(ctx, k, s.ExpiresAt)
		return nil
	})
	return err
}

func (r *RedisRepository) Get(ctx context.Context, tokenHash string) (*Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key(tokenHash)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	s := &Session{ID: fields["id"], TokenHash: tokenHash, Subject: fields["subject"]}
	if s.ExpiresAt, err = time.Parse(time.RFC3339Nano, fields["expiresAt"]); err != nil {
		return nil, fmt.Errorf("session %s: bad expiresAt: %w", tokenHash, err)
	}
	// createdAt is informational
	s.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields["createdAt"])
	return s, nil
}

func (r *RedisRepository) Delete(ctx context.Context, tokenHash string) error {
	return r.client.Del(ctx, r.key(tokenHash)).Err()
}
