package domain

import "errors"

// Circulation failures surfaced to callers as validation messages.
var (
	ErrNoCopiesAvailable = errors.New("no copies available")
	ErrInvalidDateRange  = errors.New("due date must be after issue date")
	ErrAlreadyReturned   = errors.New("transaction already returned")
	ErrUserInactive      = errors.New("user account is inactive")
	ErrBookMismatch      = errors.New("transaction does not belong to book")
	ErrCopiesExceedTotal = errors.New("available copies would exceed total copies")
	ErrFineAlreadyPaid   = errors.New("fine already paid")
	ErrFineNotFinal      = errors.New("fine is not final until the book is returned")
)

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrConcurrentUpdate = errors.New("record was modified concurrently")

// ErrRequestInProgress is returned while an earlier request with the same
// idempotency key has not finished.
var ErrRequestInProgress = errors.New("a request with this idempotency key is still in progress")

var ErrBookNotFound = errors.New("book not found")
var ErrTransactionNotFound = errors.New("transaction not found")
var ErrUserNotFound = errors.New("user not found")
