package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/winefetch"
	"github.com/fwojciec/winefetch/crawl"
	"github.com/fwojciec/winefetch/fs"
	wfprometheus "github.com/fwojciec/winefetch/prometheus"
	wfslog "github.com/fwojciec/winefetch/slog"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	urls, err := c.readURLs(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", winefetch.ErrorMessage(err))
		return err
	}
	if len(urls) == 0 {
		fmt.Fprintln(deps.Stderr, "error: no URLs to scrape")
		return winefetch.Errorf(winefetch.EINVALID, "no URLs to scrape")
	}

	limiter := deps.Limiter
	if limiter == nil {
		rl, err := crawl.NewRateLimiter(c.RPM)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", winefetch.ErrorMessage(err))
			return err
		}
		limiter = rl
	}

	if c.MaxRetries < 1 {
		err := winefetch.Errorf(winefetch.EINVALID, "max retries must be at least 1, got %d", c.MaxRetries)
		fmt.Fprintf(deps.Stderr, "error: %s\n", winefetch.ErrorMessage(err))
		return err
	}

	creds := winefetch.Credentials{Email: c.Email, Password: c.Password}
	if err := creds.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", winefetch.ErrorMessage(err))
		fmt.Fprintln(deps.Stderr, "Hint: Set WINEFETCH_EMAIL and WINEFETCH_PASSWORD")
		return err
	}

	scraper := &crawl.WineScraper{Fetcher: deps.Browser, Extractor: deps.Extractor}
	exec := crawl.NewWineExecutor(scraper, limiter)
	exec.Concurrency = c.Concurrency
	exec.MaxAttempts = c.MaxRetries
	exec.RetryDelay = c.RetryDelay
	if deps.Stop != nil {
		exec.ShouldStop = deps.Stop.Stopped
	}
	exec.Progress = c.progress(deps)

	fmt.Fprintf(deps.Stdout, "Max concurrent requests: %d\n", c.Concurrency)
	fmt.Fprintf(deps.Stdout, "Rate limit: %d requests per minute\n", c.RPM)
	fmt.Fprintf(deps.Stdout, "Total URLs to scrape: %d\n", len(urls))

	if err := deps.Browser.Login(deps.Ctx, creds); err != nil {
		fmt.Fprintf(deps.Stderr, "error: login failed: %s\n", winefetch.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, "Login successful")

	run := &winefetch.Run{Total: len(urls)}
	if err := deps.Runs.CreateRun(deps.Ctx, run); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", winefetch.ErrorMessage(err))
		return err
	}

	start := deps.now()
	report, err := exec.Run(deps.Ctx, urls)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", winefetch.ErrorMessage(err))
		return err
	}
	elapsed := deps.now().Sub(start)

	rows, failed := crawl.WineRows(urls, report)
	succeeded, nfailed, cancelled := report.Counts()

	// Files are written first and regardless of storage errors.
	var errs []error

	output := c.Output
	if output == "" {
		output = fmt.Sprintf("robert_parker_wines_%s.xlsx", start.Format("20060102_150405"))
	}
	exported := true
	if err := deps.Exporter.Export(output, rows); err != nil {
		fmt.Fprintf(deps.Stderr, "error: export %s: %v\n", output, err)
		errs = append(errs, err)
		exported = false
	}

	errorsPath := ""
	if len(failed) > 0 {
		errorsPath = c.Errors
		if errorsPath == "" {
			errorsPath = strings.TrimSuffix(output, ".xlsx") + "_errors.csv"
		}
		if err := fs.WriteFailureLog(errorsPath, failed); err != nil {
			fmt.Fprintf(deps.Stderr, "error: write %s: %v\n", errorsPath, err)
			errs = append(errs, err)
			errorsPath = ""
		}
	}

	// Results are saved even after a hard interrupt.
	ctx := context.WithoutCancel(deps.Ctx)
	if err := c.save(ctx, deps, run.ID, rows, winefetch.RunUpdate{
		Succeeded: succeeded,
		Failed:    nfailed,
		Cancelled: cancelled,
	}); err != nil {
		fmt.Fprintf(deps.Stderr, "error saving results: %s\n", winefetch.ErrorMessage(err))
		errs = append(errs, err)
	}

	fmt.Fprintf(deps.Stdout, "\nScraping completed in %.2f seconds\n", elapsed.Seconds())
	fmt.Fprintf(deps.Stdout, "Average time per URL: %s\n", crawl.FormatAverage(len(urls), elapsed))
	fmt.Fprintf(deps.Stdout, "Throughput: %s\n", crawl.FormatRate(succeeded+nfailed, elapsed))
	fmt.Fprintln(deps.Stdout, "\nSummary:")
	fmt.Fprintf(deps.Stdout, "Run: %s\n", run.ID)
	fmt.Fprintf(deps.Stdout, "Total URLs processed: %d\n", len(urls))
	fmt.Fprintf(deps.Stdout, "Successful scrapes: %d\n", succeeded)
	fmt.Fprintf(deps.Stdout, "Failed scrapes: %d\n", nfailed)
	if cancelled > 0 {
		fmt.Fprintf(deps.Stdout, "Stopped before scraping: %d\n", cancelled)
	}
	if exported {
		fmt.Fprintf(deps.Stdout, "Results saved to: %s\n", output)
	}
	if errorsPath != "" {
		fmt.Fprintf(deps.Stdout, "Failed pages saved to: %s\n", errorsPath)
	}

	return errors.Join(errs...)
}

// save stores the rows and the final counts of a run.
func (c *ScrapeCmd) save(ctx context.Context, deps *Dependencies, runID string, rows []*winefetch.Wine, upd winefetch.RunUpdate) error {
	if _, err := deps.Wines.CreateWines(ctx, runID, rows); err != nil {
		return err
	}
	_, err := deps.Runs.FinishRun(ctx, runID, upd)
	return err
}

func (c *ScrapeCmd) readURLs(deps *Dependencies) ([]string, error) {
	if c.File == "" {
		return fs.ParseURLs(deps.Stdin)
	}
	return fs.ReadURLs(c.File)
}

// progress prints per-page status lines and feeds the logger and metrics.
func (c *ScrapeCmd) progress(deps *Dependencies) crawl.ProgressFunc[string] {
	var log crawl.ProgressFunc[string]
	if deps.Logger != nil {
		log = wfslog.NewProgressLogger[string](deps.Logger)
	}
	var observe crawl.ProgressFunc[string]
	if deps.Metrics != nil {
		observe = wfprometheus.Progress[string](deps.Metrics)
	}

	return func(ev crawl.Event[string]) {
		if log != nil {
			log(ev)
		}
		if observe != nil {
			observe(ev)
		}

		switch ev.Type {
		case crawl.EventSucceeded, crawl.EventFailed:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", ev.Completed, ev.Total, truncateEvent(ev))
		case crawl.EventRetrying:
			fmt.Fprintf(deps.Stderr, "  %s\n", truncateEvent(ev))
		case crawl.EventStopRequested:
			fmt.Fprintf(deps.Stdout, "  %s\n", ev)
		}
	}
}

const maxURLDisplay = 80

func truncateEvent(ev crawl.Event[string]) string {
	ev.Item = crawl.TruncateURL(ev.Item, maxURLDisplay)
	return ev.String()
}
