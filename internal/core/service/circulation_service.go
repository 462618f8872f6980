package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/lifecycle"
	"github.com/libraryhub/circulation/internal/core/ports"
)

// CirculationPolicy holds the library's lending rules.
type CirculationPolicy struct {
	FinePerDay      domain.Cents
	DefaultLoanDays int
}

type CirculationService struct {
	books  ports.BookRepository
	txs    ports.TransactionRepository
	users  ports.UserRepository
	idem   ports.IdempotencyStore
	policy CirculationPolicy
	now    Clock
	logger zerolog.Logger
}

func NewCirculationService(
	books ports.BookRepository,
	txs ports.TransactionRepository,
	users ports.UserRepository,
	idem ports.IdempotencyStore,
	policy CirculationPolicy,
	logger zerolog.Logger,
) *CirculationService {
	return &CirculationService{
		books:  books,
		txs:    txs,
		users:  users,
		idem:   idem,
		policy: policy,
		now:    systemClock,
		logger: logger,
	}
}

// WithClock replaces the time source, mainly for tests.
func (s *CirculationService) WithClock(now Clock) *CirculationService {
	s.now = now
	return s
}

// maxRestockAttempts bounds how often a copy credit is retried when other
// writers keep moving the book's version.
const maxRestockAttempts = 3

// Checkout issues a copy to a user. A request carrying an idempotency key
// reserves it first: a key that already produced a loan replays it, and a key
// still held by a running request fails with ErrRequestInProgress.
func (s *CirculationService) Checkout(ctx context.Context, in ports.CheckoutInput) (*ports.TransactionView, error) {
	claimed, view, err := s.claimKey(ctx, in.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if view != nil {
		return view, nil
	}

	view, err = s.issue(ctx, in)
	if !claimed {
		return view, err
	}
	if err != nil {
		if relErr := s.idem.Release(ctx, in.IdempotencyKey); relErr != nil {
			s.logger.Warn().Err(relErr).Str("idempotency_key", in.IdempotencyKey).Msg("failed to release idempotency key")
		}
		return nil, err
	}
	if err := s.idem.Complete(ctx, in.IdempotencyKey, view.ID); err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to record idempotency key")
	}
	return view, nil
}

func (s *CirculationService) issue(ctx context.Context, in ports.CheckoutInput) (*ports.TransactionView, error) {
	now := s.now()
	book, err := s.books.FindBook(ctx, in.BookID)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	user, err := s.users.FindUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	tx, err := lifecycle.Checkout(uuid.NewString(), book, user, s.dueDate(in.DueDate, now), now)
	if err != nil {
		s.logger.Info().Err(err).Str("book_id", in.BookID).Str("user_id", in.UserID).Msg("checkout rejected")
		return nil, fmt.Errorf("checkout: %w", err)
	}

	if err := s.books.SaveBook(ctx, book); err != nil {
		return nil, fmt.Errorf("checkout: save book: %w", err)
	}
	if err := s.txs.SaveTransaction(ctx, &tx); err != nil {
		if _, restockErr := s.restock(ctx, book.ID, now); restockErr != nil {
			s.logger.Error().Err(restockErr).Str("book_id", book.ID).Msg("failed to revert book after transaction write failure")
		} else {
			s.logger.Warn().Str("book_id", book.ID).Msg("book change reverted")
		}
		return nil, fmt.Errorf("checkout: save transaction: %w", err)
	}

	s.logger.Info().
		Str("transaction_id", tx.ID).
		Str("book_id", book.ID).
		Str("user_id", user.ID).
		Time("due_date", tx.DueDate).
		Int("available_copies", book.AvailableCopies).
		Msg("book checked out")

	view := newView(tx, book, user, now)
	return &view, nil
}

// claimKey reserves key for this request. It reports claimed=true when the
// caller must later complete or release the key, and returns a view when the
// key already produced a loan.
func (s *CirculationService) claimKey(ctx context.Context, key string) (bool, *ports.TransactionView, error) {
	if key == "" || s.idem == nil {
		return false, nil, nil
	}
	id, reserved, err := s.idem.Reserve(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency reserve failed, processing anyway")
		return false, nil, nil
	}
	if reserved {
		return true, nil, nil
	}
	if id == "" {
		return false, nil, domain.ErrRequestInProgress
	}

	tx, err := s.txs.FindTransaction(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("recorded transaction missing, processing anyway")
		return false, nil, nil
	}

	s.logger.Info().Str("idempotency_key", key).Str("transaction_id", id).Msg("idempotent replay")
	view := s.lookupView(ctx, *tx, s.now())
	view.Replayed = true
	return false, &view, nil
}

// dueDate turns the requested calendar date into the end of that day, or
// applies the default loan period when none was given.
func (s *CirculationService) dueDate(requested, now time.Time) time.Time {
	if requested.IsZero() {
		return lifecycle.EndOfDay(now.AddDate(0, 0, s.policy.DefaultLoanDays))
	}
	return lifecycle.EndOfDay(requested)
}

// restock credits one copy to the stored book, re-reading it when another
// writer saved in between.
func (s *CirculationService) restock(ctx context.Context, bookID string, now time.Time) (*domain.Book, error) {
	var err error
	for range maxRestockAttempts {
		var book *domain.Book
		book, err = s.books.FindBook(ctx, bookID)
		if err != nil {
			return nil, err
		}
		if err = lifecycle.Restock(book, now); err != nil {
			return nil, err
		}
		if err = s.books.SaveBook(ctx, book); err == nil {
			return book, nil
		}
		if !errors.Is(err, domain.ErrConcurrentUpdate) {
			return nil, err
		}
	}
	return nil, err
}

// Return closes a loan, locking any late fine. The loan is written first
// under its version guard, so of two concurrent returns only one credits
// the copy.
func (s *CirculationService) Return(ctx context.Context, in ports.ReturnInput) (*ports.TransactionView, error) {
	tx, err := s.txs.FindTransaction(ctx, in.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("return: %w", err)
	}
	book, err := s.books.FindBook(ctx, tx.BookID)
	if err != nil {
		return nil, fmt.Errorf("return: %w", err)
	}

	now := s.now()
	open := *tx
	lateDays := -lifecycle.DaysUntilDue(tx.DueDate, now)
	if err := lifecycle.ReturnBook(tx, book, now, s.policy.FinePerDay); err != nil {
		return nil, fmt.Errorf("return: %w", err)
	}

	if err := s.txs.SaveTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("return: save transaction: %w", err)
	}
	if err := s.books.SaveBook(ctx, book); err != nil {
		if !errors.Is(err, domain.ErrConcurrentUpdate) {
			s.reopen(ctx, open, tx)
			return nil, fmt.Errorf("return: save book: %w", err)
		}
		if book, err = s.restock(ctx, tx.BookID, now); err != nil {
			s.reopen(ctx, open, tx)
			return nil, fmt.Errorf("return: save book: %w", err)
		}
	}

	s.logger.Info().
		Str("transaction_id", tx.ID).
		Str("book_id", book.ID).
		Int("late_days", max(lateDays, 0)).
		Int64("fine_cents", int64(tx.FineAmount)).
		Msg("book returned")

	view := s.lookupView(ctx, *tx, now)
	return &view, nil
}

// reopen undoes a saved return whose copy could not be credited.
func (s *CirculationService) reopen(ctx context.Context, open domain.Transaction, saved *domain.Transaction) {
	open.Version = saved.Version
	if err := s.txs.SaveTransaction(ctx, &open); err != nil {
		s.logger.Error().Err(err).Str("transaction_id", open.ID).Msg("failed to reopen loan after book write failure")
		return
	}
	s.logger.Warn().Str("transaction_id", open.ID).Msg("return reverted")
}

// PayFine marks the locked fine of a returned loan as paid.
func (s *CirculationService) PayFine(ctx context.Context, transactionID string) (*ports.TransactionView, error) {
	tx, err := s.txs.FindTransaction(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("pay fine: %w", err)
	}
	if err := lifecycle.PayFine(tx); err != nil {
		return nil, fmt.Errorf("pay fine: %w", err)
	}
	if err := s.txs.SaveTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("pay fine: %w", err)
	}

	s.logger.Info().Str("transaction_id", tx.ID).Int64("fine_cents", int64(tx.FineAmount)).Msg("fine paid")

	view := s.lookupView(ctx, *tx, s.now())
	return &view, nil
}

// ListIssued returns every unreturned loan, soonest due first.
func (s *CirculationService) ListIssued(ctx context.Context, filter ports.IssuedFilter) ([]ports.TransactionView, error) {
	txs, err := s.txs.ListTransactions(ctx, ports.TransactionFilter{Unreturned: true})
	if err != nil {
		return nil, fmt.Errorf("list issued: %w", err)
	}
	views, err := s.join(ctx, txs, s.now())
	if err != nil {
		return nil, fmt.Errorf("list issued: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]ports.TransactionView, 0, len(views))
	for _, v := range views {
		if filter.Label != "" && v.Classification.Label != filter.Label {
			continue
		}
		if q != "" && !containsAny(q, v.BookTitle, v.UserName, v.LibraryCardID) {
			continue
		}
		out = append(out, v)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

// Borrowings returns a user's current loans and filtered history.
func (s *CirculationService) Borrowings(ctx context.Context, userID, search string) (*ports.Borrowings, error) {
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("borrowings: %w", err)
	}
	txs, err := s.txs.ListTransactions(ctx, ports.TransactionFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("borrowings: %w", err)
	}

	now := s.now()
	views, err := s.join(ctx, txs, now)
	if err != nil {
		return nil, fmt.Errorf("borrowings: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(search))
	result := &ports.Borrowings{
		User:    *user,
		Current: []ports.TransactionView{},
		History: []ports.TransactionView{},
		Summary: lifecycle.Summarize(txs, now),
	}
	for _, v := range views {
		if v.ReturnDate == nil {
			result.Current = append(result.Current, v)
			continue
		}
		if q != "" && !containsAny(q, v.BookTitle, v.BookAuthor) {
			continue
		}
		result.History = append(result.History, v)
	}

	sort.SliceStable(result.Current, func(i, j int) bool {
		return result.Current[i].DueDate.Before(result.Current[j].DueDate)
	})
	sort.SliceStable(result.History, func(i, j int) bool {
		return result.History[i].ReturnDate.After(*result.History[j].ReturnDate)
	})
	return result, nil
}

// join attaches book and borrower details to each transaction.
func (s *CirculationService) join(ctx context.Context, txs []domain.Transaction, now time.Time) ([]ports.TransactionView, error) {
	books, err := s.books.ListBooks(ctx, ports.BookFilter{})
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	bookByID := make(map[string]*domain.Book, len(books))
	for i := range books {
		bookByID[books[i].ID] = &books[i]
	}
	userByID := make(map[string]*domain.User, len(users))
	for i := range users {
		userByID[users[i].ID] = &users[i]
	}

	views := make([]ports.TransactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, newView(tx, bookByID[tx.BookID], userByID[tx.UserID], now))
	}
	return views, nil
}

// lookupView builds a view for a single transaction; missing book or user
// details are left blank.
func (s *CirculationService) lookupView(ctx context.Context, tx domain.Transaction, now time.Time) ports.TransactionView {
	var (
		book *domain.Book
		user *domain.User
	)
	if b, err := s.books.FindBook(ctx, tx.BookID); err == nil {
		book = b
	}
	if u, err := s.users.FindUser(ctx, tx.UserID); err == nil {
		user = u
	}
	return newView(tx, book, user, now)
}

func newView(tx domain.Transaction, book *domain.Book, user *domain.User, now time.Time) ports.TransactionView {
	v := ports.TransactionView{
		Transaction:    tx,
		Classification: lifecycle.Classify(tx, now),
	}
	if book != nil {
		v.BookTitle, v.BookAuthor = book.Title, book.Author
	}
	if user != nil {
		v.UserName, v.LibraryCardID = user.Name, user.LibraryCardID
	}
	return v
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
