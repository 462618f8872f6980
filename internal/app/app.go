// Package app assembles the circulation service from configuration: it
// opens the selected store, the idempotency backend and the return
// dispatcher, and exposes them to the command line entry points.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/libraryhub/circulation/internal/api"
	"github.com/libraryhub/circulation/internal/api/handler"
	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/ports"
	"github.com/libraryhub/circulation/internal/core/service"
	"github.com/libraryhub/circulation/internal/infrastructure/db/memory"
	mongostore "github.com/libraryhub/circulation/internal/infrastructure/db/mongo"
	redisstore "github.com/libraryhub/circulation/internal/infrastructure/db/redis"
	"github.com/libraryhub/circulation/internal/infrastructure/queue"
	"github.com/libraryhub/circulation/internal/pkg/config"
)

// App holds the wired use cases plus whatever must be released on shutdown.
type App struct {
	Circulation *service.CirculationService
	Catalog     *service.CatalogService
	Dashboards  *service.DashboardService
	Sweeper     *service.OverdueSweeper
	Returns     *queue.Dispatcher

	checks  map[string]handler.Pinger
	closers []func(context.Context) error
	logger  zerolog.Logger
}

type repositories struct {
	books ports.BookRepository
	txs   ports.TransactionRepository
	users ports.UserRepository
}

// New connects every backend named by cfg. On error, anything opened so far
// is closed before returning.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{checks: make(map[string]handler.Pinger), logger: log}

	repos, err := a.openStore(ctx, cfg)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	idem, err := a.openIdempotency(ctx, cfg)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	policy := service.CirculationPolicy{
		FinePerDay:      domain.Cents(cfg.Circulation.FinePerDayCents),
		DefaultLoanDays: cfg.Circulation.DefaultLoanDays,
	}

	a.Circulation = service.NewCirculationService(repos.books, repos.txs, repos.users, idem, policy, log)
	a.Catalog = service.NewCatalogService(repos.books, log)
	a.Dashboards = service.NewDashboardService(repos.books, repos.txs, repos.users, log)
	a.Sweeper = service.NewOverdueSweeper(repos.txs, log.With().Str("component", "sweeper").Logger())
	a.Returns = queue.NewDispatcher(cfg.Circulation.ReturnWorkers, a.Circulation, repos.txs,
		log.With().Str("component", "returns").Logger())

	log.Info().
		Str("store", cfg.Store).
		Bool("redis", cfg.Redis.Enabled).
		Stringer("fine_per_day", policy.FinePerDay).
		Int("loan_days", policy.DefaultLoanDays).
		Msg("circulation service wired")
	return a, nil
}

// Router builds the HTTP surface over the wired use cases.
func (a *App) Router() *echo.Echo {
	return api.NewRouter(api.Dependencies{
		Circulation: a.Circulation,
		Catalog:     a.Catalog,
		Dashboards:  a.Dashboards,
		Returns:     a.Returns,
		Checks:      a.checks,
		Logger:      a.logger,
	})
}

// Close releases backend connections in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.Store {
	case config.StoreMongo:
		return a.openMongo(ctx, cfg)
	default:
		seed, err := memory.LoadSeed(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		store := memory.NewStore()
		store.Load(seed)
		a.checks["store"] = store
		return &repositories{books: store, txs: store, users: store}, nil
	}
}

func (a *App) openMongo(ctx context.Context, cfg *config.Config) (*repositories, error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Disconnect)
	a.checks["mongo"] = mongostore.NewPinger(db)

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}

	books := mongostore.NewBookRepository(db)
	txs := mongostore.NewTransactionRepository(db)
	users := mongostore.NewUserRepository(db)

	if cfg.SeedFile != "" {
		if err := seedMongo(ctx, cfg.SeedFile, books, txs, users, a.logger); err != nil {
			return nil, err
		}
	}
	return &repositories{books: books, txs: txs, users: users}, nil
}

// seedMongo loads the fixture into an empty database. A database that
// already holds books is left alone.
func seedMongo(
	ctx context.Context,
	path string,
	books *mongostore.BookRepository,
	txs *mongostore.TransactionRepository,
	users *mongostore.UserRepository,
	log zerolog.Logger,
) error {
	existing, err := books.ListBooks(ctx, ports.BookFilter{})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		log.Info().Int("books", len(existing)).Msg("database already populated, skipping seed")
		return nil
	}

	seed, err := memory.LoadSeed(path)
	if err != nil {
		return err
	}
	for i := range seed.Users {
		if err := users.SaveUser(ctx, &seed.Users[i]); err != nil {
			return fmt.Errorf("seed user %s: %w", seed.Users[i].ID, err)
		}
	}
	for i := range seed.Books {
		seed.Books[i].Version = 0
		if err := books.SaveBook(ctx, &seed.Books[i]); err != nil {
			return fmt.Errorf("seed book %s: %w", seed.Books[i].ID, err)
		}
	}
	for i := range seed.Transactions {
		if err := txs.SaveTransaction(ctx, &seed.Transactions[i]); err != nil {
			return fmt.Errorf("seed transaction %s: %w", seed.Transactions[i].ID, err)
		}
	}

	log.Info().
		Int("books", len(seed.Books)).
		Int("users", len(seed.Users)).
		Int("transactions", len(seed.Transactions)).
		Msg("database seeded")
	return nil
}

func (a *App) openIdempotency(ctx context.Context, cfg *config.Config) (ports.IdempotencyStore, error) {
	if !cfg.Redis.Enabled {
		return memory.NewIdempotencyStore(0), nil
	}
	client, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	a.checks["redis"] = redisstore.NewPinger(client)
	return redisstore.NewIdempotencyStore(client), nil
}
