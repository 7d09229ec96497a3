package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/winefetch/crawl"
)

// NewProgressLogger returns an executor progress callback that logs each
// event. Failures log at warn level, everything else at info.
func NewProgressLogger[T any](logger *slog.Logger) crawl.ProgressFunc[T] {
	return func(ev crawl.Event[T]) {
		level := slog.LevelInfo
		switch ev.Type {
		case crawl.EventFailed, crawl.EventRetrying:
			level = slog.LevelWarn
		case crawl.EventStarted:
			level = slog.LevelDebug
		}

		attrs := []any{"event", ev.Type.String()}
		if ev.Index >= 0 {
			attrs = append(attrs, "item", ev.Item, "attempt", ev.Attempt)
		}
		if ev.Err != nil {
			attrs = append(attrs, "err", ev.Err)
		}
		attrs = append(attrs, "completed", ev.Completed, "total", ev.Total)

		logger.Log(context.Background(), level, ev.String(), attrs...)
	}
}
