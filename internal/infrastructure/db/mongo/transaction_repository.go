package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/ports"
)

// TransactionRepository implements ports.TransactionRepository using MongoDB.
type TransactionRepository struct {
	col *mongo.Collection
}

var _ ports.TransactionRepository = (*TransactionRepository)(nil)

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{col: db.Collection(collectionTransactions)}
}

// ListTransactions returns matching records in issue order.
func (r *TransactionRepository) ListTransactions(ctx context.Context, filter ports.TransactionFilter) ([]domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, transactionQuery(filter), options.Find().SetSort(bson.D{{Key: "issue_date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txs := []domain.Transaction{}
	if err := cur.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (r *TransactionRepository) FindTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Transaction
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return &t, nil
}

// SaveTransaction replaces the stored document only while its version equals
// t.Version, so a loan can be closed once. Version 0 inserts a new loan.
func (r *TransactionRepository) SaveTransaction(ctx context.Context, t *domain.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	next := *t
	next.Version++
	filter := versionFilter(t.ID, t.Version)

	res, err := r.col.ReplaceOne(ctx, filter, next, options.Replace().SetUpsert(t.Version == 0))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConcurrentUpdate
		}
		return fmt.Errorf("save transaction: %w", err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domain.ErrConcurrentUpdate
	}
	t.Version = next.Version
	return nil
}

func transactionQuery(f ports.TransactionFilter) bson.M {
	q := bson.M{}
	if f.UserID != "" {
		q["user_id"] = f.UserID
	}
	if f.BookID != "" {
		q["book_id"] = f.BookID
	}
	if f.Unreturned {
		// matches both a missing field and an explicit null
		q["return_date"] = nil
	}
	return q
}
