package slog_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/winefetch/crawl"
	wfslog "github.com/fwojciec/winefetch/slog"
	"github.com/stretchr/testify/assert"
)

func TestNewProgressLogger(t *testing.T) {
	t.Parallel()

	t.Run("logs failures at warn level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		progress := wfslog.NewProgressLogger[string](logger)

		progress(crawl.Event[string]{
			Type:        crawl.EventFailed,
			Index:       2,
			Item:        "https://example.com/w",
			Attempt:     3,
			MaxAttempts: 3,
			Err:         errors.New("timeout"),
			Completed:   3,
			Total:       5,
		})

		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, "Error scraping https://example.com/w (attempt 3/3): timeout")
		assert.Contains(t, output, "err=timeout")
		assert.Contains(t, output, "completed=3")
	})

	t.Run("omits item for run-level events", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		progress := wfslog.NewProgressLogger[string](logger)

		progress(crawl.Event[string]{Type: crawl.EventFinished, Index: -1, Completed: 5, Total: 5})

		output := buf.String()
		assert.Contains(t, output, "level=INFO")
		assert.Contains(t, output, "Finished 5/5")
		assert.NotContains(t, output, "item=")
	})

	t.Run("hides attempt starts below debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		progress := wfslog.NewProgressLogger[string](logger)

		progress(crawl.Event[string]{Type: crawl.EventStarted, Item: "https://example.com/w", Attempt: 1, MaxAttempts: 3})

		assert.Empty(t, buf.String())
	})
}
