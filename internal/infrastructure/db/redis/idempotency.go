package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/libraryhub/circulation/internal/core/ports"
)

const (
	idempotencyTTL = 24 * time.Hour
	reservationTTL = time.Minute
	pendingMarker  = "pending"
)

// IdempotencyStore remembers checkout request keys in Redis.
// Key format: checkout:<idempotency_key> -> transaction id, or "pending"
// while the checkout that reserved it is running.
type IdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore wraps the given Redis client.
func NewIdempotencyStore(client redis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: idempotencyTTL}
}

// Reserve claims key with a short-lived pending marker via SETNX.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), pendingMarker, reservationTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("idempotency reserve: %w", err)
	}
	if ok {
		return "", true, nil
	}

	id, err := s.client.Get(ctx, s.key(key)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// expired between the two commands; the caller retries
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("idempotency reserve: %w", err)
	case id == pendingMarker:
		return "", false, nil
	}
	return id, false, nil
}

// Complete replaces the pending marker with the transaction id for the full TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, key, transactionID string) error {
	if err := s.client.Set(ctx, s.key(key), transactionID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(k string) string {
	return "checkout:" + k
}
