package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/ports"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	seed, err := LoadSeed("")
	if err != nil {
		t.Fatalf("embedded seed: %v", err)
	}
	s := NewStore()
	s.Load(seed)
	return s
}

func TestLoadSeed_Embedded(t *testing.T) {
	seed, err := LoadSeed("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seed.Books) != 3 || len(seed.Users) != 4 || len(seed.Transactions) != 4 {
		t.Fatalf("unexpected fixture sizes: %d books, %d users, %d transactions",
			len(seed.Books), len(seed.Users), len(seed.Transactions))
	}

	overdue := seed.Transactions[1]
	if overdue.FineAmount != 550 || overdue.Status != domain.StatusOverdue {
		t.Errorf("unexpected overdue fixture: %+v", overdue)
	}
	if want := time.Date(2024, 1, 19, 23, 59, 59, 0, time.UTC); !overdue.DueDate.Equal(want) {
		t.Errorf("expected due date %v, got %v", want, overdue.DueDate)
	}
	if seed.Transactions[3].ReturnDate == nil {
		t.Error("returned fixture must carry a return date")
	}
	if seed.Transactions[0].ReturnDate != nil {
		t.Error("open loan must not carry a return date")
	}
}

func TestParseSeed_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad copies": `
books:
  - {id: "1", title: X, total_copies: 1, available_copies: 2}
`,
		"unknown role": `
users:
  - {id: "1", name: X, role: wizard}
`,
		"dangling book": `
users:
  - {id: "1", name: X, role: student}
transactions:
  - {id: "1", book_id: "9", user_id: "1", status: active, issue_date: 2024-01-10T10:00:00Z, due_date: 2024-01-24T23:59:59Z}
`,
		"returned without return date": seedWithLoan(`status: returned, issue_date: 2024-01-10T10:00:00Z, due_date: 2024-01-24T23:59:59Z`),
		"return date on open loan":     seedWithLoan(`status: active, issue_date: 2024-01-10T10:00:00Z, due_date: 2024-01-24T23:59:59Z, return_date: 2024-01-20T10:00:00Z`),
		"due before issue":             seedWithLoan(`status: active, issue_date: 2024-01-24T10:00:00Z, due_date: 2024-01-10T23:59:59Z`),
		"negative fine":                seedWithLoan(`status: overdue, issue_date: 2024-01-10T10:00:00Z, due_date: 2024-01-24T23:59:59Z, fine_amount: -50`),
		"unknown status":               seedWithLoan(`status: lost, issue_date: 2024-01-10T10:00:00Z, due_date: 2024-01-24T23:59:59Z`),
		"duplicate transaction": seedWithLoan(`status: active, issue_date: 2024-01-10T10:00:00Z, due_date: 2024-01-24T23:59:59Z`) +
			`  - {id: "t1", book_id: "1", user_id: "1", status: active, issue_date: 2024-01-10T10:00:00Z, due_date: 2024-01-24T23:59:59Z}
`,
		"duplicate book": `
books:
  - {id: "1", title: X}
  - {id: "1", title: Y}
`,
		"not yaml": "books: [",
	}

	for name, doc := range cases {
		if _, err := ParseSeed([]byte(doc)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

// seedWithLoan returns a fixture with one book, one user and a single loan
// whose remaining fields are given inline.
func seedWithLoan(fields string) string {
	return `
books:
  - {id: "1", title: X, total_copies: 2, available_copies: 1}
users:
  - {id: "1", name: X, role: student}
transactions:
  - {id: "t1", book_id: "1", user_id: "1", ` + fields + `}
`
}

func TestParseSeed_AcceptsConsistentLoan(t *testing.T) {
	doc := seedWithLoan(`status: returned, issue_date: 2024-01-10T10:00:00Z, due_date: 2024-01-24T23:59:59Z, return_date: 2024-01-20T10:00:00Z, fine_paid: true`)
	if _, err := ParseSeed([]byte(doc)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadSeed_MissingFile(t *testing.T) {
	if _, err := LoadSeed("/nonexistent/seed.yaml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestStore_SaveBook_VersionGuard(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	a, _ := s.FindBook(ctx, "1")
	b, _ := s.FindBook(ctx, "1")

	a.AvailableCopies--
	if err := s.SaveBook(ctx, a); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if a.Version != 1 {
		t.Errorf("expected version 1, got %d", a.Version)
	}

	b.AvailableCopies--
	if err := s.SaveBook(ctx, b); !errors.Is(err, domain.ErrConcurrentUpdate) {
		t.Fatalf("expected ErrConcurrentUpdate for stale copy, got %v", err)
	}

	stored, _ := s.FindBook(ctx, "1")
	if stored.AvailableCopies != 1 {
		t.Errorf("expected one decrement, got %d copies", stored.AvailableCopies)
	}
}

func TestStore_SaveBook_RejectsInvalidCounts(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	b, _ := s.FindBook(ctx, "3")
	b.AvailableCopies = -1
	if err := s.SaveBook(ctx, b); err == nil {
		t.Fatal("expected copy-count validation error")
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	b, _ := s.FindBook(ctx, "1")
	b.Tags[0] = "mutated"
	again, _ := s.FindBook(ctx, "1")
	if again.Tags[0] != "programming" {
		t.Error("callers must not be able to mutate stored tags")
	}

	tx, _ := s.FindTransaction(ctx, "4")
	*tx.ReturnDate = time.Time{}
	again2, _ := s.FindTransaction(ctx, "4")
	if again2.ReturnDate.IsZero() {
		t.Error("callers must not be able to mutate stored return dates")
	}
}

func TestStore_Transactions(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	open, _ := s.ListTransactions(ctx, ports.TransactionFilter{Unreturned: true})
	if len(open) != 3 {
		t.Errorf("expected 3 open loans, got %d", len(open))
	}
	mine, _ := s.ListTransactions(ctx, ports.TransactionFilter{UserID: "1"})
	if len(mine) != 2 {
		t.Errorf("expected 2 loans for user 1, got %d", len(mine))
	}

	tx := domain.Transaction{ID: "new", BookID: "1", UserID: "2", Status: domain.StatusActive}
	if err := s.SaveTransaction(ctx, &tx); err != nil {
		t.Fatalf("save: %v", err)
	}
	all, _ := s.ListTransactions(ctx, ports.TransactionFilter{})
	if len(all) != 5 || all[4].ID != "new" {
		t.Errorf("new transaction must be appended in insertion order, got %d", len(all))
	}

	if _, err := s.FindTransaction(ctx, "missing"); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestStore_SaveTransaction_VersionGuard(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	returner, _ := s.FindTransaction(ctx, "1")
	sweeper, _ := s.FindTransaction(ctx, "1")

	now := time.Date(2024, 1, 25, 10, 0, 0, 0, time.UTC)
	returner.ReturnDate = &now
	returner.Status = domain.StatusReturned
	if err := s.SaveTransaction(ctx, returner); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if returner.Version != 1 {
		t.Errorf("expected version 1 after save, got %d", returner.Version)
	}

	sweeper.Status = domain.StatusOverdue
	if err := s.SaveTransaction(ctx, sweeper); !errors.Is(err, domain.ErrConcurrentUpdate) {
		t.Fatalf("stale save: expected ErrConcurrentUpdate, got %v", err)
	}

	stored, _ := s.FindTransaction(ctx, "1")
	if stored.Status != domain.StatusReturned || stored.ReturnDate == nil {
		t.Errorf("stale write must not undo the return: %+v", stored)
	}
}

func TestStore_Users(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	users, _ := s.ListUsers(ctx)
	if len(users) != 4 {
		t.Errorf("expected 4 users, got %d", len(users))
	}
	u, err := s.FindUser(ctx, "2")
	if err != nil || u.LibraryCardID != "ENG2021002" {
		t.Errorf("unexpected user %+v (%v)", u, err)
	}
	if _, err := s.FindUser(ctx, "99"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStore_ListBooks_Filter(t *testing.T) {
	s := seededStore(t)

	books, _ := s.ListBooks(context.Background(), ports.BookFilter{Availability: ports.AvailabilityUnavailable})
	if len(books) != 1 || books[0].ID != "3" {
		t.Errorf("expected only book 3, got %+v", books)
	}
}

func TestIdempotencyStore_ReserveAndExpiry(t *testing.T) {
	now := time.Date(2024, 1, 25, 10, 0, 0, 0, time.UTC)
	s := NewIdempotencyStore(time.Hour)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if _, reserved, _ := s.Reserve(ctx, "k"); !reserved {
		t.Fatal("unknown key must be reservable")
	}
	if id, reserved, _ := s.Reserve(ctx, "k"); reserved || id != "" {
		t.Fatalf("pending key must not be reserved twice, got %q %v", id, reserved)
	}

	_ = s.Complete(ctx, "k", "tx-1")
	if id, reserved, _ := s.Reserve(ctx, "k"); reserved || id != "tx-1" {
		t.Fatalf("expected replay of tx-1, got %q %v", id, reserved)
	}

	now = now.Add(time.Hour)
	if _, reserved, _ := s.Reserve(ctx, "k"); !reserved {
		t.Error("expired key must be reservable again")
	}
}

func TestIdempotencyStore_ReleaseAndStaleReservation(t *testing.T) {
	now := time.Date(2024, 1, 25, 10, 0, 0, 0, time.UTC)
	s := NewIdempotencyStore(0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, _, _ = s.Reserve(ctx, "k")
	_ = s.Release(ctx, "k")
	if _, reserved, _ := s.Reserve(ctx, "k"); !reserved {
		t.Fatal("released key must be reservable")
	}

	// a reservation that is never completed lapses after a minute
	now = now.Add(reservationTTL)
	if _, reserved, _ := s.Reserve(ctx, "k"); !reserved {
		t.Error("stale reservation must lapse")
	}
}
