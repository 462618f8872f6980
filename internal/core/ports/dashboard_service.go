package ports

import (
	"context"

	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/lifecycle"
)

// LibrarianDashboard summarises inventory and loans for staff.
type LibrarianDashboard struct {
	Inventory       lifecycle.Inventory
	// IssuedByLabel counts unreturned loans only.
	IssuedByLabel   map[lifecycle.Label]int
	OutstandingFine domain.Cents
}

// StudentDashboard summarises one borrower's account.
type StudentDashboard struct {
	User    domain.User
	Summary lifecycle.BorrowingSummary
}

// DashboardService builds the role-specific overview pages.
type DashboardService interface {
	Librarian(ctx context.Context) (*LibrarianDashboard, error)
	Student(ctx context.Context, userID string) (*StudentDashboard, error)
}

// SweepService refreshes the stored overdue hint on late loans.
type SweepService interface {
	Run(ctx context.Context) (int, error)
}
