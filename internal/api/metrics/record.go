package metrics

import (
	"errors"
	"strconv"

	"github.com/libraryhub/circulation/internal/core/domain"
)

// RecordCheckout counts a successful or replayed checkout.
func RecordCheckout(replayed bool) {
	CheckoutsTotal.WithLabelValues(strconv.FormatBool(replayed)).Inc()
}

// RecordCheckoutFailure counts a rejected checkout under its reason.
func RecordCheckoutFailure(err error) {
	CheckoutFailuresTotal.WithLabelValues(Reason(err)).Inc()
}

// RecordReturn counts a completed return and the fine it locked.
func RecordReturn(fine domain.Cents) {
	ReturnsTotal.WithLabelValues(strconv.FormatBool(fine > 0)).Inc()
	if fine > 0 {
		FinesAssessedCents.Add(float64(fine))
	}
}

// RecordFinePaid adds a settled fine.
func RecordFinePaid(fine domain.Cents) {
	FinesPaidCents.Add(float64(fine))
}

// Reason maps a circulation error to a short, bounded label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoCopiesAvailable):
		return "no_copies"
	case errors.Is(err, domain.ErrInvalidDateRange):
		return "invalid_date"
	case errors.Is(err, domain.ErrUserInactive):
		return "user_inactive"
	case errors.Is(err, domain.ErrAlreadyReturned):
		return "already_returned"
	case errors.Is(err, domain.ErrBookNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConcurrentUpdate),
		errors.Is(err, domain.ErrRequestInProgress):
		return "conflict"
	default:
		return "error"
	}
}
