package memory

import (
	"context"
	"sync"
	"time"

	"github.com/libraryhub/circulation/internal/core/ports"
)

const (
	defaultKeyTTL = 24 * time.Hour
	// reservationTTL bounds how long a crashed request can hold its key.
	reservationTTL = time.Minute
)

// IdempotencyStore keeps checkout keys in memory until they expire.
type IdempotencyStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	keys map[string]idempotencyEntry
}

// idempotencyEntry with an empty transaction id is a pending reservation.
type idempotencyEntry struct {
	transactionID string
	expires       time.Time
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore creates a store whose keys live for ttl
// (24h when ttl <= 0).
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultKeyTTL
	}
	return &IdempotencyStore{ttl: ttl, now: time.Now, keys: make(map[string]idempotencyEntry)}
}

func (s *IdempotencyStore) Reserve(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.keys[key]; ok && now.Before(e.expires) {
		return e.transactionID, false, nil
	}
	s.keys[key] = idempotencyEntry{expires: now.Add(reservationTTL)}
	return "", true, nil
}

func (s *IdempotencyStore) Complete(_ context.Context, key, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys[key] = idempotencyEntry{transactionID: transactionID, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.keys, key)
	return nil
}
