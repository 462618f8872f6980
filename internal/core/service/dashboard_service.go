package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/lifecycle"
	"github.com/libraryhub/circulation/internal/core/ports"
)

type DashboardService struct {
	books  ports.BookRepository
	txs    ports.TransactionRepository
	users  ports.UserRepository
	now    Clock
	logger zerolog.Logger
}

func NewDashboardService(
	books ports.BookRepository,
	txs ports.TransactionRepository,
	users ports.UserRepository,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{books: books, txs: txs, users: users, now: systemClock, logger: logger}
}

// WithClock replaces the time source, mainly for tests.
func (s *DashboardService) WithClock(now Clock) *DashboardService {
	s.now = now
	return s
}

func (s *DashboardService) Librarian(ctx context.Context) (*ports.LibrarianDashboard, error) {
	books, err := s.books.ListBooks(ctx, ports.BookFilter{})
	if err != nil {
		return nil, fmt.Errorf("librarian dashboard: %w", err)
	}
	txs, err := s.txs.ListTransactions(ctx, ports.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("librarian dashboard: %w", err)
	}

	// fines span the whole history; label counts cover loans still out
	issued := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if !t.Returned() {
			issued = append(issued, t)
		}
	}

	return &ports.LibrarianDashboard{
		Inventory:       lifecycle.InventorySummary(books),
		IssuedByLabel:   lifecycle.CountByLabel(issued, s.now()),
		OutstandingFine: lifecycle.OutstandingFine(txs),
	}, nil
}

func (s *DashboardService) Student(ctx context.Context, userID string) (*ports.StudentDashboard, error) {
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("student dashboard: %w", err)
	}
	txs, err := s.txs.ListTransactions(ctx, ports.TransactionFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("student dashboard: %w", err)
	}

	return &ports.StudentDashboard{
		User:    *user,
		Summary: lifecycle.Summarize(txs, s.now()),
	}, nil
}
