package crawl

import (
	"context"
	"fmt"

	"github.com/fwojciec/winefetch"
)

var _ winefetch.WineScraper = (*WineScraper)(nil)

// WineScraper fetches a per-wine page and extracts a normalized Wine from it.
type WineScraper struct {
	Fetcher   winefetch.Fetcher
	Extractor winefetch.Extractor
}

// ScrapeWine implements winefetch.WineScraper.
func (s *WineScraper) ScrapeWine(ctx context.Context, url string) (*winefetch.Wine, error) {
	if err := winefetch.ValidateWineURL(url); err != nil {
		return nil, err
	}

	html, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	wine, err := s.Extractor.Extract(html, url)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", url, err)
	}

	wine.URL = url
	wine.Normalize()
	return wine, nil
}

// NewWineExecutor returns an Executor that scrapes wine URLs with s.
func NewWineExecutor(s winefetch.WineScraper, limiter Limiter) *Executor[string, *winefetch.Wine] {
	return &Executor[string, *winefetch.Wine]{
		Process:     s.ScrapeWine,
		Classifier:  winefetch.NewPatternClassifier(),
		Limiter:     limiter,
		Concurrency: 5,
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  DefaultRetryDelay,
	}
}

// WineRows flattens a report into export rows in input order. Failed and
// cancelled items become ERROR and STOPPED placeholder rows. Any row whose
// DedupeKey matches an earlier row is dropped, the same rule
// WineService.CreateWines applies when storing them.
func WineRows(urls []string, report *Report[string, *winefetch.Wine]) (rows, failed []*winefetch.Wine) {
	seen := make(map[string]struct{})
	for i, o := range report.Outcomes {
		row := o.Record
		if o.Status != StatusSuccess {
			row = winefetch.FailedWine(urls[i], o.Err)
		}

		key := row.DedupeKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		rows = append(rows, row)
		if o.Status != StatusSuccess {
			failed = append(failed, row)
		}
	}
	return rows, failed
}
