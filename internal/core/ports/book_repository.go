package ports

import (
	"context"

	"github.com/libraryhub/circulation/internal/core/domain"
)

// Availability narrows a catalogue search by copy count.
type Availability string

const (
	AvailabilityAll         Availability = "all"
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

// BookFilter carries catalogue search parameters. Empty fields do not filter.
type BookFilter struct {
	Query        string // case-insensitive match on title, author or tags; substring of ISBN
	Genre        string
	Author       string
	Availability Availability
}

// BookRepository defines persistence operations for books.
type BookRepository interface {
	ListBooks(ctx context.Context, filter BookFilter) ([]domain.Book, error)
	FindBook(ctx context.Context, id string) (*domain.Book, error)
	// SaveBook writes b if the stored version still equals b.Version and
	// increments b.Version on success. A stale version yields
	// domain.ErrConcurrentUpdate.
	SaveBook(ctx context.Context, b *domain.Book) error
}
