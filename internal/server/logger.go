package server

import (
	"context"
	"io"
	"log/slog"
	"os"

	"finance-dashboard/internal/config"
)

func setupLogger(cfg *config.Config) *slog.Logger {
	return newLogger(cfg.Log, os.Stderr)
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.SlogLevel(),
		AddSource: cfg.SlogLevel() == slog.LevelDebug,
	}

	var handlers []slog.Handler

	if cfg.Format == "json" {
		handlers = append(handlers, slog.NewJSONHandler(w, opts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(w, opts))
	}

	return slog.New(NewMultiHandler(handlers...)).With("service", "finance-dashboard")
}

// MultiHandler fans each record out to every wrapped handler.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return NewMultiHandler(handlers...)
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return NewMultiHandler(handlers...)
}
