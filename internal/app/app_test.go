package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/libraryhub/circulation/internal/pkg/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Store: config.StoreMemory,
		Circulation: config.CirculationConfig{
			FinePerDayCents: 50,
			DefaultLoanDays: 14,
			ReturnWorkers:   2,
			SweepInterval:   time.Hour,
		},
	}
}

func TestNew_MemoryStoreServesSeededCatalog(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(ctx) })

	e := a.Router()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/books", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data  []json.RawMessage `json:"data"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 3 || body.Total != 3 {
		t.Errorf("expected the 3 seeded books, got %d", len(body.Data))
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("readiness: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNew_SweeperMarksSeededLateLoans(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(ctx) })

	// Seeded loans 1 and 3 are past due but still flagged active.
	updated, err := a.Sweeper.Run(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != 2 {
		t.Errorf("expected 2 updated, got %d", updated)
	}

	again, _ := a.Sweeper.Run(ctx)
	if again != 0 {
		t.Errorf("second sweep should be a no-op, got %d", again)
	}
}

func TestNew_MissingSeedFile(t *testing.T) {
	cfg := memoryConfig()
	cfg.SeedFile = filepath.Join(t.TempDir(), "absent.yaml")

	if _, err := New(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected an error for a missing seed file")
	}
}

func TestClose_ReverseOrderAndJoinedErrors(t *testing.T) {
	var order []string
	a := &App{}
	a.closers = append(a.closers,
		func(context.Context) error { order = append(order, "first"); return nil },
		func(context.Context) error { order = append(order, "second"); return context.Canceled },
	)

	if err := a.Close(context.Background()); err == nil {
		t.Error("expected the closer error to surface")
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("unexpected close order: %v", order)
	}
	if err := a.Close(context.Background()); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}
