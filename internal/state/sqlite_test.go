package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "state.db")
	store, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return store
}

func TestSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveSettings(ctx, map[string]string{
		"font_size":    "14",
		"dark_mode":    "true",
		"show_welcome": "false",
	}); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	// Overwrite one key, leave the rest alone.
	if err := store.SaveSettings(ctx, map[string]string{"font_size": "16"}); err != nil {
		t.Fatalf("save settings update: %v", err)
	}

	got, err := store.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if got["font_size"] != "16" {
		t.Fatalf("expected font_size=16, got %q", got["font_size"])
	}
	if got["dark_mode"] != "true" || got["show_welcome"] != "false" {
		t.Fatalf("unexpected settings %v", got)
	}
}

func TestFavoritesRoundTripPreservesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	keys := []string{
		"Python|Основы Python|0",
		"C++|STL (Standard Template Library)|1",
		"Java|Коллекции|0",
	}
	if err := store.SaveFavorites(ctx, keys); err != nil {
		t.Fatalf("save favorites: %v", err)
	}

	got, err := store.LoadFavorites(ctx)
	if err != nil {
		t.Fatalf("load favorites: %v", err)
	}
	if len(got) != len(keys) {
		t.Fatalf("expected %d favorites, got %d", len(keys), len(got))
	}
	for i := range keys {
		if got[i] != keys[i] {
			t.Fatalf("favorite %d: expected %q, got %q", i, keys[i], got[i])
		}
	}

	// Replace-all semantics: a smaller save removes the rest.
	if err := store.SaveFavorites(ctx, keys[:1]); err != nil {
		t.Fatalf("save smaller set: %v", err)
	}
	got, err = store.LoadFavorites(ctx)
	if err != nil {
		t.Fatalf("load favorites after shrink: %v", err)
	}
	if len(got) != 1 || got[0] != keys[0] {
		t.Fatalf("expected single favorite %q, got %v", keys[0], got)
	}
}

func TestRecordWarmupKeepsBestScore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := WarmupRecord{
		Language: "Python",
		Topic:    "Алгоритмы",
		Score:    2,
		Total:    2,
		When:     time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := store.RecordWarmup(ctx, first); err != nil {
		t.Fatalf("record first warmup: %v", err)
	}

	// A worse later run must not overwrite the best score.
	if err := store.RecordWarmup(ctx, WarmupRecord{
		Language: "Python",
		Topic:    "Алгоритмы",
		Score:    1,
		Total:    2,
		When:     time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("record second warmup: %v", err)
	}

	got, err := store.GetWarmupStats(ctx, "Python", "Алгоритмы")
	if err != nil {
		t.Fatalf("get warmup stats: %v", err)
	}
	if got == nil {
		t.Fatalf("expected stats row")
	}
	if got.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", got.Attempts)
	}
	if got.BestScore != 2 || got.BestTotal != 2 {
		t.Fatalf("expected best 2/2, got %d/%d", got.BestScore, got.BestTotal)
	}
	if !got.LastTS.Equal(time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected last_ts from second run, got %v", got.LastTS)
	}
}

func TestGetWarmupStatsMissingRow(t *testing.T) {
	store := newTestStore(t)
	got, err := store.GetWarmupStats(context.Background(), "Python", "Несуществующая тема")
	if err != nil {
		t.Fatalf("get warmup stats: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing row, got %#v", got)
	}
}

func TestGetSummaryAggregates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []WarmupRecord{
		{Language: "Python", Topic: "Основы Python", Score: 3, Total: 3},
		{Language: "Python", Topic: "Основы Python", Score: 1, Total: 3},
		{Language: "Java", Topic: "Коллекции", Score: 2, Total: 3},
	}
	for _, rec := range records {
		if err := store.RecordWarmup(ctx, rec); err != nil {
			t.Fatalf("record warmup: %v", err)
		}
	}

	sum, err := store.GetSummary(ctx)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if sum.TopicsAttempted != 2 {
		t.Fatalf("expected 2 topics, got %d", sum.TopicsAttempted)
	}
	if sum.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", sum.Attempts)
	}
	if sum.BestScoreSum != 5 || sum.BestTotalSum != 6 {
		t.Fatalf("expected best sums 5/6, got %d/%d", sum.BestScoreSum, sum.BestTotalSum)
	}
}
