package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rewired-gh/optionpricer/internal/models"
	"github.com/rewired-gh/optionpricer/internal/pricing"
)

func newTestStorage(t *testing.T, maxRuns int) *Storage {
	t.Helper()
	s, err := New(":memory:", maxRuns)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRun(id string, startedAt time.Time) *models.Run {
	return &models.Run{
		ID:        id,
		StartedAt: startedAt,
		Steps:     1000,
		Exercise:  "american",
		Scenarios: 1,
		Duration:  1234567891 * time.Nanosecond,
	}
}

func testQuotes(runID string) []models.Quote {
	sc := models.Scenario{
		ID: "atm-put", Name: "ATM Put", Kind: pricing.Put,
		Spot: 100, Strike: 100, Rate: 0.05, Volatility: 0.2, Maturity: 1,
	}
	pricedAt := time.Unix(0, 1_700_000_000_123_456_789)
	return []models.Quote{
		{ID: runID + "-bs", RunID: runID, Scenario: sc, Model: models.ModelBlackScholes,
			Price: 5.573526022256971, Runtime: 1500 * time.Nanosecond, PricedAt: pricedAt},
		{ID: runID + "-bt", RunID: runID, Scenario: sc, Model: models.ModelBinomialTree,
			Price: 6.090, Runtime: 3 * time.Millisecond, PricedAt: pricedAt},
	}
}

func TestStorage_SaveAndGetRun(t *testing.T) {
	s := newTestStorage(t, 10)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute)
	run := testRun("run-1", started)
	if err := s.SaveRun(ctx, run, testQuotes("run-1")); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.ID != run.ID || got.Steps != run.Steps || got.Exercise != run.Exercise || got.Scenarios != run.Scenarios {
		t.Errorf("Run mismatch: got %+v, want %+v", got, run)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("Expected started_at %v, got %v", started, got.StartedAt)
	}
	if got.Duration != run.Duration {
		t.Errorf("Expected duration %v, got %v", run.Duration, got.Duration)
	}
}

func TestStorage_GetQuotesRoundTrip(t *testing.T) {
	s := newTestStorage(t, 10)
	ctx := context.Background()

	want := testQuotes("run-1")
	if err := s.SaveRun(ctx, testRun("run-1", time.Now()), want); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := s.GetQuotes(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetQuotes failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d quotes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Model != want[i].Model {
			t.Errorf("Quote %d: got %s/%s, want %s/%s", i, got[i].ID, got[i].Model, want[i].ID, want[i].Model)
		}
		if got[i].Price != want[i].Price {
			t.Errorf("Quote %d: expected price %v, got %v", i, want[i].Price, got[i].Price)
		}
		if got[i].Runtime != want[i].Runtime {
			t.Errorf("Quote %d: expected runtime %v, got %v", i, want[i].Runtime, got[i].Runtime)
		}
		if !got[i].PricedAt.Equal(want[i].PricedAt) {
			t.Errorf("Quote %d: expected priced_at %v, got %v", i, want[i].PricedAt, got[i].PricedAt)
		}
		if got[i].Scenario != want[i].Scenario {
			t.Errorf("Quote %d: scenario mismatch: got %+v, want %+v", i, got[i].Scenario, want[i].Scenario)
		}
	}

	empty, err := s.GetQuotes(ctx, "missing")
	if err != nil {
		t.Fatalf("GetQuotes failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", empty)
	}
}

func TestStorage_GetRunNotFound(t *testing.T) {
	s := newTestStorage(t, 10)

	_, err := s.GetRun(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStorage_SaveRunValidation(t *testing.T) {
	s := newTestStorage(t, 10)
	ctx := context.Background()

	bad := testRun("", time.Now())
	if err := s.SaveRun(ctx, bad, nil); err == nil {
		t.Error("Expected error for run without ID")
	}

	// Quotes from another run
	if err := s.SaveRun(ctx, testRun("run-1", time.Now()), testQuotes("run-2")); err == nil {
		t.Error("Expected error for mismatched run ID")
	}

	// A rejected save leaves nothing behind
	if _, err := s.GetRun(ctx, "run-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected run-1 to be absent, got %v", err)
	}

	if err := s.SaveRun(ctx, testRun("run-1", time.Now()), testQuotes("run-1")); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if err := s.SaveRun(ctx, testRun("run-1", time.Now()), nil); err == nil {
		t.Error("Expected error for duplicate run ID")
	}
}

func TestStorage_ListRunsNewestFirst(t *testing.T) {
	s := newTestStorage(t, 10)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("run-%d", i)
		if err := s.SaveRun(ctx, testRun(id, base.Add(time.Duration(i)*time.Minute)), nil); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-2" || runs[2].ID != "run-0" {
		t.Errorf("Expected newest first, got %s..%s", runs[0].ID, runs[2].ID)
	}

	limited, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 runs, got %d", len(limited))
	}
}

func TestStorage_RotateRuns(t *testing.T) {
	s := newTestStorage(t, 2)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("run-%d", i)
		if err := s.SaveRun(ctx, testRun(id, base.Add(time.Duration(i)*time.Minute)), testQuotes(id)); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	removed, err := s.RotateRuns(ctx)
	if err != nil {
		t.Fatalf("RotateRuns failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("Expected 3 runs removed, got %d", removed)
	}

	runs, _ := s.ListRuns(ctx, 0)
	if len(runs) != 2 || runs[0].ID != "run-4" || runs[1].ID != "run-3" {
		t.Errorf("Expected the two newest runs to remain, got %+v", runs)
	}

	// Quotes of rotated runs are removed with them
	quotes, err := s.GetQuotes(ctx, "run-0")
	if err != nil {
		t.Fatalf("GetQuotes failed: %v", err)
	}
	if len(quotes) != 0 {
		t.Errorf("Expected quotes of rotated run to be deleted, got %d", len(quotes))
	}

	// Nothing to do below the limit
	removed, err = s.RotateRuns(ctx)
	if err != nil || removed != 0 {
		t.Errorf("Expected no-op rotation, got %d, %v", removed, err)
	}
}

func TestStorage_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	ctx := context.Background()

	s, err := New(path, 10)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.SaveRun(ctx, testRun("run-1", time.Now()), testQuotes("run-1")); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := New(path, 10)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer reopened.Close()

	quotes, err := reopened.GetQuotes(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetQuotes failed: %v", err)
	}
	if len(quotes) != 2 {
		t.Errorf("Expected 2 quotes after reopen, got %d", len(quotes))
	}
	if reopened.Path() != path {
		t.Errorf("Expected path %s, got %s", path, reopened.Path())
	}
}
