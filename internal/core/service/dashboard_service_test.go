package service

import (
	"context"
	"errors"
	"testing"

	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/lifecycle"
	"github.com/libraryhub/circulation/internal/core/ports"
)

func newDashboardFixture() *DashboardService {
	return NewDashboardService(
		newStubBookRepo(sampleBooks()...),
		newStubTxRepo(sampleTransactions()...),
		newStubUserRepo(sampleUsers()...),
		discardLogger,
	).WithClock(fixedClock)
}

func TestDashboardService_Librarian(t *testing.T) {
	d, err := newDashboardFixture().Librarian(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := lifecycle.Inventory{Titles: 3, TotalCopies: 16, AvailableCopies: 5, CheckedOutCopies: 11, UnavailableTitles: 1}
	if d.Inventory != want {
		t.Errorf("expected inventory %+v, got %+v", want, d.Inventory)
	}

	counts := map[lifecycle.Label]int{
		lifecycle.LabelOverdue:  2,
		lifecycle.LabelDueSoon:  1,
		lifecycle.LabelReturned: 0,
		lifecycle.LabelDueToday: 0,
		lifecycle.LabelActive:   0,
	}
	for label, n := range counts {
		if d.IssuedByLabel[label] != n {
			t.Errorf("label %s: expected %d, got %d", label, n, d.IssuedByLabel[label])
		}
	}

	if d.OutstandingFine != 550 {
		t.Errorf("expected outstanding fine 550, got %d", d.OutstandingFine)
	}
}

func TestDashboardService_Librarian_CountsOnlyIssuedLoans(t *testing.T) {
	d, err := newDashboardFixture().Librarian(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	total := 0
	for _, n := range d.IssuedByLabel {
		total += n
	}
	// t1, t2 and t3 are out; t4 came back in December
	if total != 3 {
		t.Errorf("expected 3 issued loans across labels, got %d: %v", total, d.IssuedByLabel)
	}
}

func TestDashboardService_Student(t *testing.T) {
	svc := newDashboardFixture()

	d, err := svc.Student(context.Background(), "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.User.Name != "Jane Smith" {
		t.Errorf("unexpected user %q", d.User.Name)
	}
	want := lifecycle.BorrowingSummary{Current: 1, Overdue: 1, OutstandingFine: 550}
	if d.Summary != want {
		t.Errorf("expected summary %+v, got %+v", want, d.Summary)
	}

	if _, err := svc.Student(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Overdue sweep tests
// ---------------------------------------------------------------------------

func TestOverdueSweeper_Run(t *testing.T) {
	txs := newStubTxRepo(sampleTransactions()...)
	sweeper := NewOverdueSweeper(txs, discardLogger).WithClock(fixedClock)

	updated, err := sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != 1 {
		t.Errorf("expected 1 update, got %d", updated)
	}
	if got := txs.byID["t3"].Status; got != domain.StatusOverdue {
		t.Errorf("t3: expected overdue, got %s", got)
	}
	if got := txs.byID["t1"].Status; got != domain.StatusActive {
		t.Errorf("t1 is not late yet, got %s", got)
	}

	again, _ := sweeper.Run(context.Background())
	if again != 0 {
		t.Errorf("second sweep must be a no-op, got %d", again)
	}
}

func TestOverdueSweeper_SaveFailureIsSkipped(t *testing.T) {
	txs := newStubTxRepo(sampleTransactions()...)
	txs.saveErr = errStoreDown

	updated, err := NewOverdueSweeper(txs, discardLogger).WithClock(fixedClock).Run(context.Background())
	if err != nil {
		t.Fatalf("save failures must not abort the sweep: %v", err)
	}
	if updated != 0 {
		t.Errorf("expected 0 updates, got %d", updated)
	}
}

func TestOverdueSweeper_ReturnDuringSweepIsNotUndone(t *testing.T) {
	f := newFixture()
	sweeper := NewOverdueSweeper(f.txs, discardLogger).WithClock(fixedClock)
	ctx := context.Background()

	// t3 is late; it comes back after the sweeper listed it but before it saves.
	var returnErr error
	f.txs.onList = func() {
		_, returnErr = f.svc.Return(ctx, ports.ReturnInput{TransactionID: "t3"})
	}

	updated, err := sweeper.Run(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if returnErr != nil {
		t.Fatalf("return during sweep: %v", returnErr)
	}
	if updated != 0 {
		t.Errorf("the stale loan must be skipped, got %d updates", updated)
	}

	stored := f.txs.byID["t3"]
	if stored.Status != domain.StatusReturned || stored.ReturnDate == nil {
		t.Fatalf("sweep undid the return: status=%s return_date=%v", stored.Status, stored.ReturnDate)
	}

	if _, err := f.svc.Return(ctx, ports.ReturnInput{TransactionID: "t3"}); !errors.Is(err, domain.ErrAlreadyReturned) {
		t.Errorf("second return: expected ErrAlreadyReturned, got %v", err)
	}
	if got := f.books.byID["3"].AvailableCopies; got != 1 {
		t.Errorf("expected one copy credited, got %d available", got)
	}
}

func TestOverdueSweeper_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOverdueSweeper(newStubTxRepo(sampleTransactions()...), discardLogger).WithClock(fixedClock).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

var _ ports.SweepService = (*OverdueSweeper)(nil)
