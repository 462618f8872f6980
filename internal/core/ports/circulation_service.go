package ports

import (
	"context"
	"time"

	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/lifecycle"
)

// CheckoutInput is the librarian's checkout form.
type CheckoutInput struct {
	BookID string
	UserID string
	// DueDate is a calendar date; zero means the default loan period.
	DueDate        time.Time
	IdempotencyKey string
}

// ReturnInput identifies the loan being closed.
type ReturnInput struct {
	TransactionID string
}

// TransactionView is a transaction joined with its book and borrower and
// classified at the time of the request.
type TransactionView struct {
	domain.Transaction
	BookTitle      string
	BookAuthor     string
	UserName       string
	LibraryCardID  string
	Classification lifecycle.Classification
	// Replayed is true when an idempotency key matched an earlier checkout.
	Replayed bool
}

// IssuedFilter narrows the librarian's issued-books list.
type IssuedFilter struct {
	Search string          // title, borrower name or library card id
	Label  lifecycle.Label // optional
}

// Borrowings is one user's loans split the way the student views show them.
type Borrowings struct {
	User    domain.User
	Current []TransactionView
	History []TransactionView
	Summary lifecycle.BorrowingSummary
}

// CirculationService defines the checkout/return use cases.
type CirculationService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*TransactionView, error)
	Return(ctx context.Context, in ReturnInput) (*TransactionView, error)
	PayFine(ctx context.Context, transactionID string) (*TransactionView, error)
	ListIssued(ctx context.Context, filter IssuedFilter) ([]TransactionView, error)
	// Borrowings returns the user's loans; search filters the history by
	// title or author.
	Borrowings(ctx context.Context, userID, search string) (*Borrowings, error)
}

// ReturnRequest is a queued return from a batch drop-off.
type ReturnRequest struct {
	TransactionID string
	BookID        string
}

// ShardKey groups requests for the same book; requests without a book id
// fall back to their transaction id.
func (r ReturnRequest) ShardKey() string {
	if r.BookID != "" {
		return r.BookID
	}
	return r.TransactionID
}
