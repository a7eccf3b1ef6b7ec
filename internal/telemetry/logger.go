package telemetry

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// JSONLogger writes one JSON object per line. The log file is shared across
// runs (appended, not truncated); SetBase stamps every line with run-scoped
// fields such as the app name and session id so runs stay distinguishable.
type JSONLogger struct {
	mu   sync.Mutex
	w    io.WriteCloser
	base map[string]any
}

func NewJSONLogger(path string) (*JSONLogger, error) {
	if path == "" {
		return &JSONLogger{w: nopCloser{Writer: io.Discard}}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLogger{w: f}, nil
}

// SetBase replaces the fields attached to every subsequent line. Per-call
// fields win on key collision.
func (l *JSONLogger) SetBase(fields map[string]any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.base = make(map[string]any, len(fields))
	for k, v := range fields {
		l.base[k] = v
	}
}

func (l *JSONLogger) Info(msg string, fields map[string]any) {
	l.log("info", msg, fields)
}

func (l *JSONLogger) Warn(msg string, fields map[string]any) {
	l.log("warn", msg, fields)
}

func (l *JSONLogger) Error(msg string, fields map[string]any) {
	l.log("error", msg, fields)
}

func (l *JSONLogger) log(level, msg string, fields map[string]any) {
	if l == nil || l.w == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": level,
		"msg":   msg,
	}
	for k, v := range l.base {
		entry[k] = v
	}
	for k, v := range fields {
		entry[k] = v
	}
	b, _ := json.Marshal(entry)
	_, _ = l.w.Write(append(b, '\n'))
}

func (l *JSONLogger) Close() error {
	if l == nil || l.w == nil {
		return nil
	}
	return l.w.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
