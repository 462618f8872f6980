package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/libraryhub/circulation/internal/api/metrics"
	"github.com/libraryhub/circulation/internal/app"
	"github.com/libraryhub/circulation/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, return workers and the overdue sweeper",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close backends")
		}
	}()

	workers, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	a.Returns.Start(workers)

	if cfg.Circulation.SweepInterval > 0 {
		go sweepLoop(ctx, a.Sweeper, cfg.Circulation.SweepInterval, logger.Component("sweep-loop"))
	}

	e := a.Router()
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := e.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("graceful shutdown failed")
	}
	// returns answered with 202 may still be buffered; apply them before the
	// workers' context is cancelled
	drainErr := a.Returns.Close(shutdownCtx)
	if drainErr != nil {
		log.Error().Err(drainErr).Msg("return queue not drained")
	} else {
		log.Info().Msg("return queue drained")
	}
	return errors.Join(shutdownErr, drainErr)
}

type sweeper interface {
	Run(ctx context.Context) (int, error)
}

// sweepLoop runs the sweeper once immediately and then every interval
// until ctx is done.
func sweepLoop(ctx context.Context, s sweeper, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		updated, err := s.Run(ctx)
		if err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("overdue sweep failed")
		}
		metrics.OverdueSweepUpdated.Add(float64(updated))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
