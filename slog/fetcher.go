// Package slog provides logging decorators for winefetch services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/winefetch"
)

// Ensure LoggingFetcher implements winefetch.Fetcher.
var _ winefetch.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   winefetch.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next winefetch.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// Ensure LoggingBrowser implements winefetch.Browser.
var _ winefetch.Browser = (*LoggingBrowser)(nil)

// LoggingBrowser adds login logging to a LoggingFetcher.
type LoggingBrowser struct {
	*LoggingFetcher
	auth winefetch.Authenticator
}

// NewLoggingBrowser creates a new LoggingBrowser.
func NewLoggingBrowser(next winefetch.Browser, logger *slog.Logger) *LoggingBrowser {
	return &LoggingBrowser{
		LoggingFetcher: NewLoggingFetcher(next, logger),
		auth:           next,
	}
}

// Login logs the account and outcome. The password is never logged.
func (b *LoggingBrowser) Login(ctx context.Context, creds winefetch.Credentials) (err error) {
	defer func(begin time.Time) {
		b.logger.Info("login",
			"email", creds.Email,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.auth.Login(ctx, creds)
}
