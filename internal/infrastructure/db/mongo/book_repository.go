package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/ports"
)

// BookRepository implements ports.BookRepository using MongoDB.
type BookRepository struct {
	col *mongo.Collection
}

var _ ports.BookRepository = (*BookRepository)(nil)

func NewBookRepository(db *mongo.Database) *BookRepository {
	return &BookRepository{col: db.Collection(collectionBooks)}
}

// ListBooks returns the books matching filter, ordered by title.
func (r *BookRepository) ListBooks(ctx context.Context, filter ports.BookFilter) ([]domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bookQuery(filter), options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	books := []domain.Book{}
	if err := cur.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// FindBook retrieves a book by id.
func (r *BookRepository) FindBook(ctx context.Context, id string) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var b domain.Book
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	return &b, nil
}

// SaveBook writes b only while the stored version equals b.Version, so two
// concurrent checkouts of the last copy cannot both succeed.
// A book with version 0 is inserted when missing.
func (r *BookRepository) SaveBook(ctx context.Context, b *domain.Book) error {
	if err := b.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := versionFilter(b.ID, b.Version)
	update := bson.M{
		"$set": bson.M{
			"title":            b.Title,
			"author":           b.Author,
			"isbn":             b.ISBN,
			"publisher":        b.Publisher,
			"publication_year": b.PublicationYear,
			"genre":            b.Genre,
			"description":      b.Description,
			"total_copies":     b.TotalCopies,
			"available_copies": b.AvailableCopies,
			"shelf_location":   b.ShelfLocation,
			"condition":        b.Condition,
			"tags":             b.Tags,
			"average_rating":   b.AverageRating,
			"created_at":       b.CreatedAt,
			"updated_at":       b.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}
	opts := options.Update().SetUpsert(b.Version == 0)

	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConcurrentUpdate
		}
		return fmt.Errorf("save book: %w", err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domain.ErrConcurrentUpdate
	}
	b.Version++
	return nil
}

// bookQuery translates a BookFilter into a MongoDB query document.
func bookQuery(f ports.BookFilter) bson.M {
	q := bson.M{}
	if f.Genre != "" {
		q["genre"] = f.Genre
	}
	if f.Author != "" {
		q["author"] = f.Author
	}
	switch f.Availability {
	case ports.AvailabilityAvailable:
		q["available_copies"] = bson.M{"$gt": 0}
	case ports.AvailabilityUnavailable:
		q["available_copies"] = 0
	}
	if text := strings.TrimSpace(f.Query); text != "" {
		pattern := regexp.QuoteMeta(f.Query)
		fold := primitive.Regex{Pattern: pattern, Options: "i"}
		q["$or"] = bson.A{
			bson.M{"title": fold},
			bson.M{"author": fold},
			bson.M{"tags": fold},
			bson.M{"isbn": primitive.Regex{Pattern: pattern}},
		}
	}
	return q
}
