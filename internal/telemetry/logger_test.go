package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestJSONLoggerWritesOneObjectPerLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	logger, err := NewJSONLogger(path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("catalog.loaded", map[string]any{"languages": 4})
	logger.Warn("state.degraded", map[string]any{"error": "disk full"})
	logger.Error("run.failed", nil)
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var lines []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			t.Fatalf("parse line %q: %v", sc.Text(), err)
		}
		lines = append(lines, entry)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d", len(lines))
	}
	if lines[0]["msg"] != "catalog.loaded" || lines[0]["languages"] != float64(4) {
		t.Fatalf("unexpected first entry %v", lines[0])
	}
	if lines[1]["level"] != "warn" {
		t.Fatalf("expected warn level, got %v", lines[1]["level"])
	}
	if _, ok := lines[2]["ts"]; !ok {
		t.Fatalf("expected ts field on every entry")
	}
}

func TestJSONLoggerBaseFieldsOnEveryLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	logger, err := NewJSONLogger(path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.SetBase(map[string]any{"app": "codeaid", "session": "s-1"})

	logger.Info("app.start", nil)
	logger.Info("warmup.started", map[string]any{"session": "override"})
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var lines []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			t.Fatalf("parse line %q: %v", sc.Text(), err)
		}
		lines = append(lines, entry)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	for i, entry := range lines {
		if entry["app"] != "codeaid" {
			t.Fatalf("line %d missing app base field: %v", i, entry)
		}
	}
	if lines[0]["session"] != "s-1" {
		t.Fatalf("expected base session on first line, got %v", lines[0]["session"])
	}
	if lines[1]["session"] != "override" {
		t.Fatalf("expected per-call field to win, got %v", lines[1]["session"])
	}
}

func TestJSONLoggerAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	for run := 0; run < 2; run++ {
		logger, err := NewJSONLogger(path)
		if err != nil {
			t.Fatalf("new logger: %v", err)
		}
		logger.Info("app.start", nil)
		if err := logger.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	count := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 lines after 2 runs, got %d", count)
	}
}

func TestJSONLoggerEmptyPathDiscards(t *testing.T) {
	logger, err := NewJSONLogger("")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("ignored", nil)
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
