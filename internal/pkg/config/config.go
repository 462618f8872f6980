package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// Store selects the persistence backend: memory or mongo.
	Store string `env:"STORE, default=memory"`
	// SeedFile overrides the embedded demo fixture for the memory store and
	// seeds an empty mongo database.
	SeedFile string `env:"SEED_FILE"`

	Mongo       MongoConfig
	Redis       RedisConfig
	Circulation CirculationConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=library"`
}

type RedisConfig struct {
	Enabled bool   `env:"REDIS_ENABLED, default=false"`
	Addr    string `env:"REDIS_ADDR,    default=localhost:6379"`
	DB      int    `env:"REDIS_DB,      default=0"`
}

type CirculationConfig struct {
	FinePerDayCents int64         `env:"FINE_PER_DAY_CENTS, default=50"`
	DefaultLoanDays int           `env:"DEFAULT_LOAN_DAYS,  default=14"`
	ReturnWorkers   int           `env:"RETURN_WORKERS,     default=4"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL,     default=1h"`
}

// Development reports whether human-readable logs should be used.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMemory, StoreMongo:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StoreMemory, StoreMongo, c.Store)
	}
	if c.Circulation.FinePerDayCents < 0 {
		return fmt.Errorf("FINE_PER_DAY_CENTS must not be negative")
	}
	if c.Circulation.DefaultLoanDays < 1 {
		return fmt.Errorf("DEFAULT_LOAN_DAYS must be at least 1")
	}
	if c.Circulation.SweepInterval < 0 {
		return fmt.Errorf("SWEEP_INTERVAL must not be negative")
	}
	return nil
}
