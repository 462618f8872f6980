package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/ports"
)

type CatalogService struct {
	books  ports.BookRepository
	logger zerolog.Logger
}

func NewCatalogService(books ports.BookRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{books: books, logger: logger}
}

// Search filters the catalogue. Facets are computed over the whole catalogue
// so the filter menus do not shrink as filters are applied.
func (s *CatalogService) Search(ctx context.Context, filter ports.BookFilter) (*ports.SearchResult, error) {
	if filter.Availability == "" {
		filter.Availability = ports.AvailabilityAll
	}

	books, err := s.books.ListBooks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	all, err := s.books.ListBooks(ctx, ports.BookFilter{})
	if err != nil {
		return nil, fmt.Errorf("search books: facets: %w", err)
	}

	sort.SliceStable(books, func(i, j int) bool { return books[i].Title < books[j].Title })

	s.logger.Debug().Str("query", filter.Query).Int("results", len(books)).Msg("catalog search")

	return &ports.SearchResult{
		Books:   books,
		Genres:  distinct(all, func(b *domain.Book) string { return b.Genre }),
		Authors: distinct(all, func(b *domain.Book) string { return b.Author }),
	}, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.books.FindBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

func distinct(books []domain.Book, field func(*domain.Book) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range books {
		v := field(&books[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
