package app

import (
	"context"

	"codeaid/internal/runner"
	"codeaid/internal/state"
)

type Store interface {
	EnsureSchema(ctx context.Context) error
	SaveSettings(ctx context.Context, values map[string]string) error
	LoadSettings(ctx context.Context) (map[string]string, error)
	SaveFavorites(ctx context.Context, keys []string) error
	LoadFavorites(ctx context.Context) ([]string, error)
	RecordWarmup(ctx context.Context, rec state.WarmupRecord) error
	GetWarmupStats(ctx context.Context, language, topic string) (*state.WarmupStats, error)
	GetSummary(ctx context.Context) (state.Summary, error)
	Close() error
}

type SnippetRunner interface {
	Run(ctx context.Context, language, code string) (runner.RunResult, error)
}
