// Package memory keeps books, users and transactions in process memory.
// It backs local runs and demos; state is lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/ports"
)

// Store implements the book, transaction and user repositories.
type Store struct {
	mu      sync.RWMutex
	books   map[string]domain.Book
	bookIDs []string
	txs     map[string]domain.Transaction
	txIDs   []string
	users   map[string]domain.User
	userIDs []string
}

var (
	_ ports.BookRepository        = (*Store)(nil)
	_ ports.TransactionRepository = (*Store)(nil)
	_ ports.UserRepository        = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		books: make(map[string]domain.Book),
		txs:   make(map[string]domain.Transaction),
		users: make(map[string]domain.User),
	}
}

// Load replaces the store contents with seed.
func (s *Store) Load(seed *Seed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = make(map[string]domain.Book, len(seed.Books))
	s.bookIDs = s.bookIDs[:0]
	for _, b := range seed.Books {
		s.books[b.ID] = cloneBook(b)
		s.bookIDs = append(s.bookIDs, b.ID)
	}
	s.users = make(map[string]domain.User, len(seed.Users))
	s.userIDs = s.userIDs[:0]
	for _, u := range seed.Users {
		s.users[u.ID] = u
		s.userIDs = append(s.userIDs, u.ID)
	}
	s.txs = make(map[string]domain.Transaction, len(seed.Transactions))
	s.txIDs = s.txIDs[:0]
	for _, t := range seed.Transactions {
		s.txs[t.ID] = cloneTx(t)
		s.txIDs = append(s.txIDs, t.ID)
	}
}

// Ping always succeeds; it lets the store satisfy readiness checks.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) ListBooks(_ context.Context, filter ports.BookFilter) ([]domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Book{}
	for _, id := range s.bookIDs {
		b := s.books[id]
		if filter.Matches(&b) {
			out = append(out, cloneBook(b))
		}
	}
	return out, nil
}

func (s *Store) FindBook(_ context.Context, id string) (*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	clone := cloneBook(b)
	return &clone, nil
}

// SaveBook stores b when its version matches the stored one.
func (s *Store) SaveBook(_ context.Context, b *domain.Book) error {
	if err := b.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.books[b.ID]
	if ok && stored.Version != b.Version {
		return domain.ErrConcurrentUpdate
	}
	if !ok {
		s.bookIDs = append(s.bookIDs, b.ID)
	}
	b.Version++
	s.books[b.ID] = cloneBook(*b)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, filter ports.TransactionFilter) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Transaction{}
	for _, id := range s.txIDs {
		t := s.txs[id]
		if filter.Matches(&t) {
			out = append(out, cloneTx(t))
		}
	}
	return out, nil
}

func (s *Store) FindTransaction(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.txs[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	clone := cloneTx(t)
	return &clone, nil
}

// SaveTransaction stores t when its version matches the stored one.
func (s *Store) SaveTransaction(_ context.Context, t *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.txs[t.ID]
	if ok && stored.Version != t.Version {
		return domain.ErrConcurrentUpdate
	}
	if !ok {
		s.txIDs = append(s.txIDs, t.ID)
	}
	t.Version++
	s.txs[t.ID] = cloneTx(*t)
	return nil
}

func (s *Store) ListUsers(context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.userIDs))
	for _, id := range s.userIDs {
		out = append(out, s.users[id])
	}
	return out, nil
}

func (s *Store) FindUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func cloneBook(b domain.Book) domain.Book {
	if b.Tags != nil {
		b.Tags = append([]string(nil), b.Tags...)
	}
	return b
}

func cloneTx(t domain.Transaction) domain.Transaction {
	if t.ReturnDate != nil {
		rd := *t.ReturnDate
		t.ReturnDate = &rd
	}
	return t
}
