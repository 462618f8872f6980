package lifecycle

import (
	"time"

	"github.com/libraryhub/circulation/internal/core/domain"
)

// BorrowingSummary holds the counters shown on a borrower's dashboard.
type BorrowingSummary struct {
	Current         int
	DueSoon         int
	Overdue         int
	Returned        int
	OutstandingFine domain.Cents
}

// Summarize classifies every transaction at now and tallies the result.
// DueSoon includes loans due today.
func Summarize(txs []domain.Transaction, now time.Time) BorrowingSummary {
	var s BorrowingSummary
	for _, t := range txs {
		switch Classify(t, now).Label {
		case LabelReturned:
			s.Returned++
			continue
		case LabelOverdue:
			s.Overdue++
		case LabelDueSoon, LabelDueToday:
			s.DueSoon++
		}
		s.Current++
	}
	s.OutstandingFine = OutstandingFine(txs)
	return s
}

// CountByLabel returns how many transactions carry each label at now.
func CountByLabel(txs []domain.Transaction, now time.Time) map[Label]int {
	counts := make(map[Label]int, len(Labels))
	for _, l := range Labels {
		counts[l] = 0
	}
	for _, t := range txs {
		counts[Classify(t, now).Label]++
	}
	return counts
}

// Inventory holds catalogue-wide copy counts.
type Inventory struct {
	Titles            int
	TotalCopies       int
	AvailableCopies   int
	CheckedOutCopies  int
	UnavailableTitles int
}

// InventorySummary totals copy counts across books.
func InventorySummary(books []domain.Book) Inventory {
	inv := Inventory{Titles: len(books)}
	for i := range books {
		b := &books[i]
		inv.TotalCopies += b.TotalCopies
		inv.AvailableCopies += b.AvailableCopies
		inv.CheckedOutCopies += b.CheckedOut()
		if b.AvailableCopies == 0 {
			inv.UnavailableTitles++
		}
	}
	return inv
}
