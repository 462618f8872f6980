package lifecycle

import (
	"time"

	"github.com/libraryhub/circulation/internal/core/domain"
)

// OutstandingFine sums the fines that have not been paid.
func OutstandingFine(txs []domain.Transaction) domain.Cents {
	var total domain.Cents
	for _, t := range txs {
		if !t.FinePaid {
			total += t.FineAmount
		}
	}
	return total
}

// AccruedFine is perDay for every whole day past due at now.
func AccruedFine(due, now time.Time, perDay domain.Cents) domain.Cents {
	late := -DaysUntilDue(due, now)
	if late <= 0 {
		return 0
	}
	return domain.Cents(late) * perDay
}
