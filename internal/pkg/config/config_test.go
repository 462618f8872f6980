package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Store != StoreMemory || !cfg.Development() {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Redis.Enabled {
		t.Error("redis must be opt-in")
	}
	c := cfg.Circulation
	if c.FinePerDayCents != 50 || c.DefaultLoanDays != 14 || c.ReturnWorkers != 4 || c.SweepInterval != time.Hour {
		t.Errorf("unexpected circulation defaults: %+v", c)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORE":              "mongo",
		"MONGO_DB":           "branch_7",
		"REDIS_ENABLED":      "true",
		"FINE_PER_DAY_CENTS": "25",
		"SWEEP_INTERVAL":     "0s",
		"ENV":                "production",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Store != StoreMongo || cfg.Mongo.Database != "branch_7" || !cfg.Redis.Enabled {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Circulation.FinePerDayCents != 25 || cfg.Circulation.SweepInterval != 0 {
		t.Errorf("circulation overrides not applied: %+v", cfg.Circulation)
	}
	if cfg.Development() {
		t.Error("production must not be development")
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown store":  {"STORE": "postgres"},
		"negative fine":  {"FINE_PER_DAY_CENTS": "-1"},
		"zero loan days": {"DEFAULT_LOAN_DAYS": "0"},
		"not a duration": {"SWEEP_INTERVAL": "hourly"},
	}

	for name, env := range cases {
		if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
