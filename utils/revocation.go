package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList remembers logged-out token ids until they would have expired anyway.
type RevocationList struct {
	client redis.Cmdable
	prefix string
}

func NewRevocationList(client redis.Cmdable, prefix string) *RevocationList {
	if prefix == "" {
		prefix = "revoked"
	}
	return &RevocationList{client: client, prefix: prefix}
}

func (r *RevocationList) key(tokenID string) string {
	return r.prefix + ":" + tokenID
}

// Revoke marks tokenID as unusable until expiresAt.
func (r *RevocationList) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RevocationList) Revoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}
