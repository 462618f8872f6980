package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/lifecycle"
	"github.com/libraryhub/circulation/internal/core/ports"
)

// OverdueSweeper persists the overdue hint on loans whose due date has passed.
type OverdueSweeper struct {
	txs    ports.TransactionRepository
	now    Clock
	logger zerolog.Logger
}

func NewOverdueSweeper(txs ports.TransactionRepository, logger zerolog.Logger) *OverdueSweeper {
	return &OverdueSweeper{txs: txs, now: systemClock, logger: logger}
}

// WithClock replaces the time source, mainly for tests.
func (s *OverdueSweeper) WithClock(now Clock) *OverdueSweeper {
	s.now = now
	return s
}

// Run updates every late unreturned loan and returns how many changed.
// A loan that changed since it was listed is skipped, and other failed saves
// are logged; the next run picks either up again.
func (s *OverdueSweeper) Run(ctx context.Context) (int, error) {
	txs, err := s.txs.ListTransactions(ctx, ports.TransactionFilter{Unreturned: true})
	if err != nil {
		return 0, fmt.Errorf("overdue sweep: %w", err)
	}

	now := s.now()
	updated := 0
	for i := range txs {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		tx := &txs[i]
		if !lifecycle.SyncStatus(tx, now) {
			continue
		}
		if err := s.txs.SaveTransaction(ctx, tx); err != nil {
			if errors.Is(err, domain.ErrConcurrentUpdate) {
				// changed since listed, usually returned; the next run re-reads it
				s.logger.Debug().Str("transaction_id", tx.ID).Msg("loan changed during sweep, skipped")
				continue
			}
			s.logger.Warn().Err(err).Str("transaction_id", tx.ID).Msg("failed to mark transaction overdue")
			continue
		}
		updated++
	}

	s.logger.Info().Int("scanned", len(txs)).Int("updated", updated).Msg("overdue sweep finished")
	return updated, nil
}
