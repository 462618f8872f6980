package ports

import "context"

// IdempotencyStore tracks which transaction a client request key produced.
// A key is reserved before the work starts so that concurrent retries of
// the same request cannot both run it.
type IdempotencyStore interface {
	// Reserve claims key for a new request and reports true on success.
	// When the key is already held it returns the transaction id recorded
	// for it, or "" while the first request is still running.
	Reserve(ctx context.Context, key string) (transactionID string, reserved bool, err error)
	// Complete records the transaction produced under a reserved key.
	Complete(ctx context.Context, key, transactionID string) error
	// Release drops a reservation whose request failed, so it can be retried.
	Release(ctx context.Context, key string) error
}
