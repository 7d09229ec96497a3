package slog

import (
	"log/slog"

	"github.com/fwojciec/winefetch"
)

var _ winefetch.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging.
type LoggingExtractor struct {
	next   winefetch.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next winefetch.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

func (e *LoggingExtractor) Extract(html, url string) (wine *winefetch.Wine, err error) {
	defer func() {
		var name string
		if wine != nil {
			name = wine.FullName
		}
		e.logger.Debug("extract",
			"url", url,
			"wine", name,
			"err", err,
		)
	}()
	return e.next.Extract(html, url)
}
