package ports

import (
	"context"

	"github.com/libraryhub/circulation/internal/core/domain"
)

// SearchResult is a page of the catalogue plus facets for the filter menus.
type SearchResult struct {
	Books   []domain.Book
	Genres  []string
	Authors []string
}

// CatalogService defines book discovery operations.
type CatalogService interface {
	Search(ctx context.Context, filter BookFilter) (*SearchResult, error)
	Get(ctx context.Context, id string) (*domain.Book, error)
}
