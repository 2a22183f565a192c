// Package logging provides leveled logging and generation tracing for neuropulse.
//
// Operational messages go to a leveled slog.Logger on stderr. At debug or
// trace level a TraceLogger additionally records per-record sampling
// details as JSONL (<dir>/traces.jsonl) so a suspicious label can be
// traced back to the draws that produced it.
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace sits below Debug. At this level every generated record is
// traced, not just run-level events.
const LevelTrace = slog.LevelDebug - 4

// TraceFile is the name of the JSONL trace file inside the trace directory.
const TraceFile = "traces.jsonl"

// ParseLevel maps a level name to a slog.Level.
// Supported values: "warn", "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled text logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

// TraceLogger appends structured trace events to a JSONL file.
// It is safe for concurrent use. A nil *TraceLogger is valid and drops
// every event, so callers never need to check.
type TraceLogger struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	written int
}

// NewTraceLogger opens dir/traces.jsonl for append when level is debug or
// trace. At info level and above it returns nil and creates nothing. It
// also returns nil when the file cannot be opened.
func NewTraceLogger(dir string, level string) *TraceLogger {
	if ParseLevel(level) > slog.LevelDebug {
		return nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, TraceFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}
	return &TraceLogger{file: f, path: path}
}

// Trace writes one event line. The event name is stored under "event" and a
// "time" field is added; fields is not mutated.
func (tl *TraceLogger) Trace(event string, fields map[string]any) {
	if tl == nil {
		return
	}

	entry := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		entry[k] = v
	}
	entry["event"] = event
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.file == nil {
		return
	}
	if _, err := tl.file.Write(data); err == nil {
		tl.written++
	}
}

// Written reports how many events have been written.
func (tl *TraceLogger) Written() int {
	if tl == nil {
		return 0
	}
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.written
}

// Path returns the trace file location, or "" for a nil logger.
func (tl *TraceLogger) Path() string {
	if tl == nil {
		return ""
	}
	return tl.path
}

// Close closes the trace file. Safe on nil and safe to call twice.
func (tl *TraceLogger) Close() error {
	if tl == nil {
		return nil
	}
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.file == nil {
		return nil
	}
	err := tl.file.Close()
	tl.file = nil
	return err
}
