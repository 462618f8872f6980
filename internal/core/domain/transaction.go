package domain

import (
	"fmt"
	"time"
)

// TransactionType distinguishes borrow records from return records.
type TransactionType string

const (
	TypeBorrow TransactionType = "borrow"
	TypeReturn TransactionType = "return"
)

// TransactionStatus is the stored lifecycle state of a borrow record.
// Overdue is a cached hint; lateness derived from dates takes precedence.
type TransactionStatus string

const (
	StatusActive   TransactionStatus = "active"
	StatusOverdue  TransactionStatus = "overdue"
	StatusReturned TransactionStatus = "returned"
)

// validTransitions only moves forward; returned is terminal.
var validTransitions = map[TransactionStatus][]TransactionStatus{
	StatusActive:  {StatusOverdue, StatusReturned},
	StatusOverdue: {StatusReturned},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transaction links a user to a borrowed book copy.
type Transaction struct {
	ID         string            `json:"id" bson:"_id" yaml:"id"`
	BookID     string            `json:"book_id" bson:"book_id" yaml:"book_id"`
	UserID     string            `json:"user_id" bson:"user_id" yaml:"user_id"`
	Type       TransactionType   `json:"type" bson:"type" yaml:"type"`
	IssueDate  time.Time         `json:"issue_date" bson:"issue_date" yaml:"issue_date"`
	DueDate    time.Time         `json:"due_date" bson:"due_date" yaml:"due_date"`
	ReturnDate *time.Time        `json:"return_date,omitempty" bson:"return_date,omitempty" yaml:"return_date"`
	FineAmount Cents             `json:"fine_amount" bson:"fine_amount" yaml:"fine_amount"`
	FinePaid   bool              `json:"fine_paid" bson:"fine_paid" yaml:"fine_paid"`
	Status     TransactionStatus `json:"status" bson:"status" yaml:"status"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at" yaml:"created_at"`
	// Version is bumped by the store on every successful save.
	Version int64 `json:"-" bson:"version" yaml:"-"`
}

// Returned reports whether the book has come back.
func (t *Transaction) Returned() bool {
	return t.ReturnDate != nil || t.Status == StatusReturned
}

// Validate checks the stored record is self-consistent: a return date exactly
// when the status is returned, a due date after the issue date and no
// negative fine.
func (t *Transaction) Validate() error {
	switch t.Status {
	case StatusActive, StatusOverdue, StatusReturned:
	default:
		return fmt.Errorf("transaction %s: unknown status %q", t.ID, t.Status)
	}
	if (t.ReturnDate != nil) != (t.Status == StatusReturned) {
		return fmt.Errorf("transaction %s: status %q does not agree with return date", t.ID, t.Status)
	}
	if !t.DueDate.After(t.IssueDate) {
		return fmt.Errorf("transaction %s: %w", t.ID, ErrInvalidDateRange)
	}
	if t.FineAmount < 0 {
		return fmt.Errorf("transaction %s: negative fine %s", t.ID, t.FineAmount)
	}
	return nil
}
