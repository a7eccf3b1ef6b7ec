package state

import (
	"context"
	"time"
)

type Store interface {
	EnsureSchema(ctx context.Context) error
	SaveSettings(ctx context.Context, values map[string]string) error
	LoadSettings(ctx context.Context) (map[string]string, error)
	SaveFavorites(ctx context.Context, keys []string) error
	LoadFavorites(ctx context.Context) ([]string, error)
	RecordWarmup(ctx context.Context, rec WarmupRecord) error
	GetWarmupStats(ctx context.Context, language, topic string) (*WarmupStats, error)
	GetSummary(ctx context.Context) (Summary, error)
	Close() error
}

// WarmupRecord is one finished warmup session result.
type WarmupRecord struct {
	Language string
	Topic    string
	Score    int
	Total    int
	When     time.Time
}

// WarmupStats is the accumulated record for a (language, topic) pair.
type WarmupStats struct {
	Language  string
	Topic     string
	Attempts  int
	BestScore int
	BestTotal int
	LastTS    time.Time
}

type Summary struct {
	TopicsAttempted int
	Attempts        int
	BestScoreSum    int
	BestTotalSum    int
}
