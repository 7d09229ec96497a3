package mock

import (
	"context"

	"github.com/fwojciec/winefetch"
)

var _ winefetch.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of winefetch.Extractor.
type Extractor struct {
	ExtractFn func(html, url string) (*winefetch.Wine, error)
}

func (e *Extractor) Extract(html, url string) (*winefetch.Wine, error) {
	return e.ExtractFn(html, url)
}

var _ winefetch.WineScraper = (*WineScraper)(nil)

// WineScraper is a mock implementation of winefetch.WineScraper.
type WineScraper struct {
	ScrapeWineFn func(ctx context.Context, url string) (*winefetch.Wine, error)
}

func (s *WineScraper) ScrapeWine(ctx context.Context, url string) (*winefetch.Wine, error) {
	return s.ScrapeWineFn(ctx, url)
}

// Limiter is a mock rate limiter.
type Limiter struct {
	WaitFn func(ctx context.Context) error
}

func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitFn(ctx)
}

// NoLimit returns a Limiter that grants immediately unless ctx is done.
func NoLimit() *Limiter {
	return &Limiter{WaitFn: func(ctx context.Context) error { return ctx.Err() }}
}
