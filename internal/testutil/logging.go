package testutil

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// TestLogHandler captures records in memory. Attributes bound with
// Logger.With are kept on every record emitted through the derived logger.
type TestLogHandler struct {
	sink  *logSink
	attrs []slog.Attr
}

type logSink struct {
	mu      sync.Mutex
	records []TestLogRecord
}

type TestLogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

func NewTestLogHandler() *TestLogHandler {
	return &TestLogHandler{sink: &logSink{}}
}

func (h *TestLogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *TestLogHandler) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		attrs[attr.Key] = attr.Value.Any()
	}
	record.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value.Any()
		return true
	})

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	h.sink.records = append(h.sink.records, TestLogRecord{
		Level:   record.Level,
		Message: record.Message,
		Attrs:   attrs,
	})
	return nil
}

func (h *TestLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TestLogHandler{
		sink:  h.sink,
		attrs: append(slices.Clip(h.attrs), attrs...),
	}
}

// WithGroup is flattened; none of the loggers under test use groups.
func (h *TestLogHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *TestLogHandler) Records() []TestLogRecord {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	return slices.Clone(h.sink.records)
}

// Find returns the first record at level with the given message.
func (h *TestLogHandler) Find(level slog.Level, message string) (TestLogRecord, bool) {
	for _, record := range h.Records() {
		if record.Level == level && record.Message == message {
			return record, true
		}
	}
	return TestLogRecord{}, false
}

func (h *TestLogHandler) ContainsMessage(level slog.Level, message string) bool {
	_, ok := h.Find(level, message)
	return ok
}

func (h *TestLogHandler) CountByLevel(level slog.Level) int {
	n := 0
	for _, record := range h.Records() {
		if record.Level == level {
			n++
		}
	}
	return n
}

func (h *TestLogHandler) Reset() {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	h.sink.records = nil
}
