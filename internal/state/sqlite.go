package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS favorites (
			key TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			added_ts TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS warmup_stats (
			language TEXT NOT NULL,
			topic TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			best_score INTEGER NOT NULL DEFAULT 0,
			best_total INTEGER NOT NULL DEFAULT 0,
			last_ts TEXT NOT NULL DEFAULT '',
			PRIMARY KEY(language, topic)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for key, value := range values {
		k := strings.TrimSpace(key)
		if k == "" {
			continue
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO app_settings(key, value) VALUES(?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, value); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) LoadSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM app_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveFavorites mirrors the in-memory registry: the stored set is replaced
// wholesale so toggles and shutdown writes share one code path.
func (s *SQLiteStore) SaveFavorites(ctx context.Context, keys []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM favorites`); err != nil {
		return err
	}
	now := time.Now().UTC().Format(timeLayout)
	for i, key := range keys {
		k := strings.TrimSpace(key)
		if k == "" {
			continue
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO favorites(key, position, added_ts) VALUES(?, ?, ?)`,
			k, i, now,
		); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) LoadFavorites(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM favorites ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordWarmup bumps the attempt counter and keeps the best score for the
// (language, topic) pair; a worse later run never overwrites a better one.
func (s *SQLiteStore) RecordWarmup(ctx context.Context, rec WarmupRecord) error {
	language := strings.TrimSpace(rec.Language)
	topic := strings.TrimSpace(rec.Topic)
	if language == "" || topic == "" {
		return nil
	}
	when := rec.When
	if when.IsZero() {
		when = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO warmup_stats(language, topic, attempts, best_score, best_total, last_ts)
		VALUES(?, ?, 1, ?, ?, ?)
		ON CONFLICT(language, topic) DO UPDATE SET
			attempts = warmup_stats.attempts + 1,
			best_score = CASE
				WHEN excluded.best_score > warmup_stats.best_score THEN excluded.best_score
				ELSE warmup_stats.best_score
			END,
			best_total = CASE
				WHEN excluded.best_score > warmup_stats.best_score THEN excluded.best_total
				ELSE warmup_stats.best_total
			END,
			last_ts = excluded.last_ts
	`, language, topic, max(0, rec.Score), max(0, rec.Total), when.UTC().Format(timeLayout))
	return err
}

func (s *SQLiteStore) GetWarmupStats(ctx context.Context, language, topic string) (*WarmupStats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT language, topic, attempts, best_score, best_total, last_ts
		FROM warmup_stats
		WHERE language = ? AND topic = ?
	`, language, topic)
	var (
		out       WarmupStats
		lastTSRaw string
	)
	if err := row.Scan(&out.Language, &out.Topic, &out.Attempts, &out.BestScore, &out.BestTotal, &lastTSRaw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if t, err := time.Parse(timeLayout, lastTSRaw); err == nil {
		out.LastTS = t
	}
	return &out, nil
}

func (s *SQLiteStore) GetSummary(ctx context.Context) (Summary, error) {
	var out Summary
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) as topics,
			COALESCE(SUM(attempts),0) as attempts,
			COALESCE(SUM(best_score),0) as best_scores,
			COALESCE(SUM(best_total),0) as best_totals
		FROM warmup_stats
	`)
	if err := row.Scan(&out.TopicsAttempted, &out.Attempts, &out.BestScoreSum, &out.BestTotalSum); err != nil {
		return Summary{}, err
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
