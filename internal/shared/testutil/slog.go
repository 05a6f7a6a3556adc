// Package testutil provides slog capture helpers for asserting on
// structured log output in tests.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogRecord is a captured log entry with its attributes flattened into a
// map. Attributes bound through Logger.With and group prefixes are folded
// in, so assertions see the record as a handler would emit it.
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// CaptureHandler is a slog.Handler that records every entry in memory.
// Derived handlers produced by WithAttrs and WithGroup share the parent's
// record store, so a single handler observes the whole logger tree.
type CaptureHandler struct {
	mu      *sync.Mutex
	records *[]LogRecord
	t       *testing.T
	attrs   []slog.Attr
	groups  []string
}

// NewCaptureHandler creates a capture handler. When t is non-nil, every
// record is echoed to the test log for debugging failed runs.
func NewCaptureHandler(t *testing.T) *CaptureHandler {
	records := make([]LogRecord, 0)
	return &CaptureHandler{
		mu:      &sync.Mutex{},
		records: &records,
		t:       t,
	}
}

// Enabled reports true for every level; tests want to see everything.
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

// Handle records the entry, folding in any attributes bound via WithAttrs
// and prefixing keys with the active group path.
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[h.key(a.Key)] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.key(a.Key)] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	*h.records = append(*h.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	h.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs returns a derived handler whose bound attributes land on every
// subsequent record. Records still accumulate in the shared store.
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	child := *h
	child.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &child
}

// WithGroup returns a derived handler that prefixes attribute keys with
// the group name, dot-separated.
func (h *CaptureHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	child := *h
	child.groups = append(append([]string{}, h.groups...), name)
	return &child
}

func (h *CaptureHandler) key(k string) string {
	if len(h.groups) == 0 {
		return k
	}
	return strings.Join(h.groups, ".") + "." + k
}

// Records returns a copy of all captured records.
func (h *CaptureHandler) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]LogRecord, len(*h.records))
	copy(out, *h.records)
	return out
}

// RecordsAt returns captured records at the given level.
func (h *CaptureHandler) RecordsAt(level slog.Level) []LogRecord {
	var filtered []LogRecord
	for _, r := range h.Records() {
		if r.Level == level {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ContainsMessage reports whether any record's message contains the given
// substring.
func (h *CaptureHandler) ContainsMessage(message string) bool {
	for _, r := range h.Records() {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any record carries the attribute, including
// attributes bound with Logger.With.
func (h *CaptureHandler) ContainsAttr(key string, value any) bool {
	for _, r := range h.Records() {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// Count returns the number of captured records.
func (h *CaptureHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(*h.records)
}

// Reset discards all captured records.
func (h *CaptureHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = (*h.records)[:0]
}

// NewTestLogger returns a logger wired to a fresh capture handler.
func NewTestLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	handler := NewCaptureHandler(t)
	return slog.New(handler), handler
}

// AssertNoErrors fails the test when any error-level records were captured.
func AssertNoErrors(t *testing.T, handler *CaptureHandler) {
	t.Helper()
	for _, r := range handler.RecordsAt(slog.LevelError) {
		t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
	}
}
