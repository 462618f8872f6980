package ports

import (
	"context"

	"github.com/libraryhub/circulation/internal/core/domain"
)

// TransactionFilter narrows ListTransactions. Empty fields do not filter.
type TransactionFilter struct {
	UserID     string
	BookID     string
	Unreturned bool // only transactions without a return date
}

// TransactionRepository defines persistence operations for borrow records.
// Records are never deleted.
type TransactionRepository interface {
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
	FindTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	// SaveTransaction inserts or replaces t by ID while the stored version
	// equals t.Version, then bumps t.Version. A stale t yields
	// domain.ErrConcurrentUpdate.
	SaveTransaction(ctx context.Context, t *domain.Transaction) error
}
