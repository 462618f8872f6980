package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubBookRepo struct {
	byID    map[string]*domain.Book
	saveErr error
	saves   int
	// onFind runs once, after the next FindBook has copied its result.
	onFind func()
}

func newStubBookRepo(books ...domain.Book) *stubBookRepo {
	r := &stubBookRepo{byID: make(map[string]*domain.Book)}
	for _, b := range books {
		clone := b
		r.byID[b.ID] = &clone
	}
	return r
}

func (r *stubBookRepo) ListBooks(_ context.Context, f ports.BookFilter) ([]domain.Book, error) {
	out := []domain.Book{}
	for _, b := range r.byID {
		if f.Matches(b) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *stubBookRepo) FindBook(_ context.Context, id string) (*domain.Book, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	clone := *b
	if hook := r.onFind; hook != nil {
		r.onFind = nil
		hook()
	}
	return &clone, nil
}

// SaveBook mirrors the version guard of the real stores.
func (r *stubBookRepo) SaveBook(_ context.Context, b *domain.Book) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	if stored, ok := r.byID[b.ID]; ok && stored.Version != b.Version {
		return domain.ErrConcurrentUpdate
	}
	b.Version++
	clone := *b
	r.byID[b.ID] = &clone
	return nil
}

type stubTxRepo struct {
	byID    map[string]*domain.Transaction
	order   []string
	saveErr error
	// onList runs once, after the next ListTransactions has copied its result.
	onList func()
}

func newStubTxRepo(txs ...domain.Transaction) *stubTxRepo {
	r := &stubTxRepo{byID: make(map[string]*domain.Transaction)}
	for _, t := range txs {
		clone := t
		r.byID[t.ID] = &clone
		r.order = append(r.order, t.ID)
	}
	return r
}

func (r *stubTxRepo) ListTransactions(_ context.Context, f ports.TransactionFilter) ([]domain.Transaction, error) {
	out := []domain.Transaction{}
	for _, id := range r.order {
		if t := r.byID[id]; f.Matches(t) {
			out = append(out, *t)
		}
	}
	if hook := r.onList; hook != nil {
		r.onList = nil
		hook()
	}
	return out, nil
}

func (r *stubTxRepo) FindTransaction(_ context.Context, id string) (*domain.Transaction, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	clone := *t
	return &clone, nil
}

// SaveTransaction mirrors the version guard of the real stores.
func (r *stubTxRepo) SaveTransaction(_ context.Context, t *domain.Transaction) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.byID[t.ID]
	if ok && stored.Version != t.Version {
		return domain.ErrConcurrentUpdate
	}
	if !ok {
		r.order = append(r.order, t.ID)
	}
	t.Version++
	clone := *t
	r.byID[t.ID] = &clone
	return nil
}

type stubUserRepo struct {
	byID map[string]*domain.User
}

func newStubUserRepo(users ...domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		clone := u
		r.byID[u.ID] = &clone
	}
	return r
}

func (r *stubUserRepo) ListUsers(_ context.Context) ([]domain.User, error) {
	out := []domain.User{}
	for _, u := range r.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) FindUser(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

// stubIdempotency stores "" for a pending reservation.
type stubIdempotency struct {
	keys       map[string]string
	reserveErr error
	released   []string
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Reserve(_ context.Context, key string) (string, bool, error) {
	if s.reserveErr != nil {
		return "", false, s.reserveErr
	}
	if id, ok := s.keys[key]; ok {
		return id, false, nil
	}
	s.keys[key] = ""
	return "", true, nil
}

func (s *stubIdempotency) Complete(_ context.Context, key, id string) error {
	s.keys[key] = id
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, key string) error {
	delete(s.keys, key)
	s.released = append(s.released, key)
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var errStoreDown = errors.New("store unavailable")

// fixedNow is 2024-01-25 10:00 UTC, matching the sample data below.
var fixedNow = time.Date(2024, 1, 25, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func sampleBooks() []domain.Book {
	return []domain.Book{
		{ID: "1", Title: "Clean Code", Author: "Robert C. Martin", ISBN: "978-0132350884", Genre: "Technology", Tags: []string{"programming"}, TotalCopies: 5, AvailableCopies: 2},
		{ID: "2", Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", ISBN: "978-0743273565", Genre: "Fiction", Tags: []string{"classic"}, TotalCopies: 8, AvailableCopies: 3},
		{ID: "3", Title: "Design Patterns", Author: "Gang of Four", ISBN: "978-0201633610", Genre: "Technology", Tags: []string{"oop"}, TotalCopies: 3, AvailableCopies: 0},
	}
}

func sampleUsers() []domain.User {
	return []domain.User{
		{ID: "u1", Name: "John Doe", Role: domain.RoleStudent, LibraryCardID: "CS2021001", Active: true},
		{ID: "u2", Name: "Jane Smith", Role: domain.RoleStudent, LibraryCardID: "ENG2021002", Active: true},
		{ID: "u3", Name: "Mike Johnson", Role: domain.RoleStudent, LibraryCardID: "CS2021003", Active: false},
	}
}

func sampleTransactions() []domain.Transaction {
	returnedAt := time.Date(2023, 12, 28, 16, 0, 0, 0, time.UTC)
	return []domain.Transaction{
		{ID: "t1", BookID: "1", UserID: "u1", Type: domain.TypeBorrow, Status: domain.StatusActive,
			IssueDate: time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC), DueDate: time.Date(2024, 1, 27, 23, 59, 59, 0, time.UTC)},
		{ID: "t2", BookID: "2", UserID: "u2", Type: domain.TypeBorrow, Status: domain.StatusOverdue,
			IssueDate: time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC), DueDate: time.Date(2024, 1, 19, 23, 59, 59, 0, time.UTC), FineAmount: 550},
		{ID: "t3", BookID: "3", UserID: "u1", Type: domain.TypeBorrow, Status: domain.StatusActive,
			IssueDate: time.Date(2024, 1, 8, 9, 15, 0, 0, time.UTC), DueDate: time.Date(2024, 1, 22, 23, 59, 59, 0, time.UTC)},
		{ID: "t4", BookID: "2", UserID: "u1", Type: domain.TypeBorrow, Status: domain.StatusReturned,
			IssueDate: time.Date(2023, 12, 15, 11, 0, 0, 0, time.UTC), DueDate: time.Date(2023, 12, 29, 23, 59, 59, 0, time.UTC),
			ReturnDate: &returnedAt, FinePaid: true},
	}
}

type fixture struct {
	books *stubBookRepo
	txs   *stubTxRepo
	users *stubUserRepo
	idem  *stubIdempotency
	svc   *CirculationService
}

func newFixture() *fixture {
	f := &fixture{
		books: newStubBookRepo(sampleBooks()...),
		txs:   newStubTxRepo(sampleTransactions()...),
		users: newStubUserRepo(sampleUsers()...),
		idem:  newStubIdempotency(),
	}
	policy := CirculationPolicy{FinePerDay: 50, DefaultLoanDays: 14}
	f.svc = NewCirculationService(f.books, f.txs, f.users, f.idem, policy, discardLogger).WithClock(fixedClock)
	return f
}
