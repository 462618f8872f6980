package lifecycle

import (
	"fmt"
	"time"

	"github.com/libraryhub/circulation/internal/core/domain"
)

// Checkout issues one copy of book to user. On success the book's available
// count is decremented and the new transaction is returned; on failure
// neither argument is modified.
func Checkout(id string, book *domain.Book, user *domain.User, dueDate, now time.Time) (domain.Transaction, error) {
	if book.AvailableCopies <= 0 {
		return domain.Transaction{}, domain.ErrNoCopiesAvailable
	}
	if !user.Active {
		return domain.Transaction{}, domain.ErrUserInactive
	}
	if !dueDate.After(now) {
		return domain.Transaction{}, fmt.Errorf("%w: due %s, issued %s",
			domain.ErrInvalidDateRange, dueDate.Format(time.RFC3339), now.Format(time.RFC3339))
	}

	book.AvailableCopies--
	book.UpdatedAt = now

	return domain.Transaction{
		ID:        id,
		BookID:    book.ID,
		UserID:    user.ID,
		Type:      domain.TypeBorrow,
		IssueDate: now,
		DueDate:   dueDate,
		Status:    domain.StatusActive,
		CreatedAt: now,
	}, nil
}

// ReturnBook closes t at now and puts the copy back on book. An unpaid fine
// is locked at perDay per late day; a zero fine is recorded as settled.
func ReturnBook(t *domain.Transaction, book *domain.Book, now time.Time, perDay domain.Cents) error {
	if t.Returned() {
		return domain.ErrAlreadyReturned
	}
	if book.ID != t.BookID {
		return fmt.Errorf("%w: transaction %s is for book %s, got %s", domain.ErrBookMismatch, t.ID, t.BookID, book.ID)
	}
	if book.AvailableCopies >= book.TotalCopies {
		return fmt.Errorf("%w: book %s", domain.ErrCopiesExceedTotal, book.ID)
	}
	if !t.Status.CanTransitionTo(domain.StatusReturned) {
		return fmt.Errorf("%w: from %s to %s", domain.ErrInvalidTransition, t.Status, domain.StatusReturned)
	}

	returned := now
	t.ReturnDate = &returned
	t.Status = domain.StatusReturned
	if !t.FinePaid {
		t.FineAmount = AccruedFine(t.DueDate, now, perDay)
		t.FinePaid = t.FineAmount == 0
	}

	return Restock(book, now)
}

// Restock puts one copy back on book.
func Restock(book *domain.Book, now time.Time) error {
	if book.AvailableCopies >= book.TotalCopies {
		return fmt.Errorf("%w: book %s", domain.ErrCopiesExceedTotal, book.ID)
	}
	book.AvailableCopies++
	book.UpdatedAt = now
	return nil
}

// PayFine settles the fine on a returned transaction.
func PayFine(t *domain.Transaction) error {
	if !t.Returned() {
		return domain.ErrFineNotFinal
	}
	if t.FinePaid {
		return domain.ErrFineAlreadyPaid
	}
	t.FinePaid = true
	return nil
}

// SyncStatus moves the stored status of a late, unreturned loan from active
// to overdue. It reports whether t changed.
func SyncStatus(t *domain.Transaction, now time.Time) bool {
	if t.Returned() || t.Status == domain.StatusOverdue {
		return false
	}
	if Classify(*t, now).Label != LabelOverdue {
		return false
	}
	if !t.Status.CanTransitionTo(domain.StatusOverdue) {
		return false
	}
	t.Status = domain.StatusOverdue
	return true
}
