package ports

import (
	"strings"

	"github.com/libraryhub/circulation/internal/core/domain"
)

// Matches reports whether b satisfies every non-empty field of f. Stores
// without a query language use it directly; others translate f.
func (f BookFilter) Matches(b *domain.Book) bool {
	if f.Genre != "" && b.Genre != f.Genre {
		return false
	}
	if f.Author != "" && b.Author != f.Author {
		return false
	}
	switch f.Availability {
	case AvailabilityAvailable:
		if b.AvailableCopies <= 0 {
			return false
		}
	case AvailabilityUnavailable:
		if b.AvailableCopies != 0 {
			return false
		}
	}
	if f.Query == "" {
		return true
	}

	q := strings.ToLower(f.Query)
	if strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Author), q) ||
		strings.Contains(b.ISBN, f.Query) {
		return true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Matches reports whether t satisfies every non-empty field of f.
func (f TransactionFilter) Matches(t *domain.Transaction) bool {
	if f.UserID != "" && t.UserID != f.UserID {
		return false
	}
	if f.BookID != "" && t.BookID != f.BookID {
		return false
	}
	if f.Unreturned && t.ReturnDate != nil {
		return false
	}
	return true
}
