package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/winefetch"
	"github.com/fwojciec/winefetch/crawl"
	wfprometheus "github.com/fwojciec/winefetch/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Runs      winefetch.RunService
	Wines     winefetch.WineService
	Browser   winefetch.Browser
	Extractor winefetch.Extractor
	Exporter  winefetch.Exporter

	// Stop is set by the first interrupt. Scrape stops starting new pages.
	Stop *crawl.StopFlag

	// Metrics is optional.
	Metrics *wfprometheus.Metrics

	// Limiter overrides the rate limiter built from ScrapeCmd.RPM.
	Limiter crawl.Limiter

	// Now defaults to time.Now.
	Now func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log every fetch, attempt and retry to stderr"`

	Scrape ScrapeCmd `cmd:"" help:"Scrape wine review pages into a spreadsheet"`
	Runs   RunsCmd   `cmd:"" help:"List stored scrape runs"`
	Export ExportCmd `cmd:"" help:"Export a stored run to a spreadsheet"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	File   string `arg:"" optional:"" type:"path" help:"File with one wine URL per line (default: stdin)"`
	Output string `short:"o" type:"path" help:"Spreadsheet path (default: robert_parker_wines_<timestamp>.xlsx)"`
	Errors string `type:"path" help:"CSV path for failed pages (default: <output>_errors.csv)"`

	Email    string `env:"WINEFETCH_EMAIL" help:"Account email"`
	Password string `env:"WINEFETCH_PASSWORD" help:"Account password"`

	Driver  string        `enum:"rod,playwright" default:"rod" env:"WINEFETCH_DRIVER" help:"Browser driver (rod or playwright)"`
	Headful bool          `help:"Show the browser window"`
	Timeout time.Duration `default:"30s" help:"Per-page fetch timeout"`

	Concurrency int           `short:"c" default:"5" env:"WINEFETCH_CONCURRENCY" help:"Pages fetched at once"`
	RPM         int           `name:"rpm" default:"30" env:"WINEFETCH_RPM" help:"Page requests per minute"`
	MaxRetries  int           `default:"3" env:"WINEFETCH_MAX_RETRIES" help:"Attempts per page, including the first"`
	RetryDelay  time.Duration `default:"3s" env:"WINEFETCH_RETRY_DELAY" help:"Pause between attempts of the same page"`

	MetricsAddr string `help:"Serve Prometheus metrics on this address during the run (e.g. :9090)"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Limit int `short:"n" default:"20" help:"Maximum number of runs to show"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	RunID      string `arg:"" help:"Run ID"`
	Output     string `short:"o" type:"path" help:"Spreadsheet path (default: robert_parker_wines_<run id>.xlsx)"`
	FailedOnly bool   `help:"Export only ERROR and STOPPED rows as CSV"`
}
