package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/winefetch"
	"github.com/fwojciec/winefetch/crawl"
	"github.com/fwojciec/winefetch/excelize"
	"github.com/fwojciec/winefetch/goquery"
	"github.com/fwojciec/winefetch/playwright"
	wfprometheus "github.com/fwojciec/winefetch/prometheus"
	"github.com/fwojciec/winefetch/rod"
	wfslog "github.com/fwojciec/winefetch/slog"
	"github.com/fwojciec/winefetch/sqlite"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMain()

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go WatchInterrupts(ctx, sigs, m.Stop, cancel, os.Stderr)

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// WatchInterrupts turns the first signal into a graceful stop and the
// second into cancellation of the running command.
func WatchInterrupts(ctx context.Context, sigs <-chan os.Signal, stop *crawl.StopFlag, cancel context.CancelFunc, w io.Writer) {
	select {
	case <-ctx.Done():
		return
	case <-sigs:
	}
	fmt.Fprintln(w, "\nStopping after in-flight pages finish. Interrupt again to abort.")
	stop.Stop()

	select {
	case <-ctx.Done():
	case <-sigs:
		fmt.Fprintln(w, "\nAborting.")
		cancel()
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Stdin supplies URLs when scrape is given no file.
	Stdin io.Reader

	// Stop is shared with the interrupt watcher.
	Stop *crawl.StopFlag

	// Services for end-to-end testing.
	RunService  winefetch.RunService
	WineService winefetch.WineService

	// Browser replaces the driver selected by --driver. Run does not close it.
	Browser winefetch.Browser
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
		Stdin:  os.Stdin,
		Stop:   &crawl.StopFlag{},
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
		Stop:   m.Stop,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("winefetch"),
		kong.Description("Scrape Robert Parker wine reviews into a spreadsheet."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'winefetch --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = newLogger(stderr, cli.Verbose)

	// Open database
	if m.RunService == nil || m.WineService == nil {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set WINEFETCH_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()

		m.RunService = sqlite.NewRunService(m.DB)
		m.WineService = sqlite.NewWineService(m.DB)
	}
	deps.Runs = m.RunService
	deps.Wines = wfslog.NewLoggingWineService(m.WineService, deps.Logger)
	deps.Exporter = excelize.NewExporter()

	if strings.HasPrefix(kongCtx.Command(), "scrape") {
		browser := m.Browser
		if browser == nil {
			b, err := openBrowser(&cli.Scrape)
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			defer b.Close()
			browser = b
		}
		deps.Browser = wfslog.NewLoggingBrowser(browser, deps.Logger)
		deps.Extractor = wfslog.NewLoggingExtractor(goquery.NewExtractor(), deps.Logger)

		reg := prometheus.NewRegistry()
		deps.Metrics = wfprometheus.NewMetrics(reg)
		if cli.Scrape.MetricsAddr != "" {
			shutdown := serveMetrics(cli.Scrape.MetricsAddr, deps.Metrics.Handler(), deps.Logger)
			defer shutdown()
		}
	}

	return kongCtx.Run(deps)
}

func openBrowser(c *ScrapeCmd) (winefetch.Browser, error) {
	switch c.Driver {
	case "playwright":
		opts := playwright.DefaultOptions()
		opts.Headless = !c.Headful
		opts.Timeout = c.Timeout
		opts.WaitSelector = winefetch.WineTitleSelector
		return playwright.New(opts)
	default:
		return rod.NewFetcher(
			rod.WithFetchTimeout(c.Timeout),
			rod.WithWaitSelector(winefetch.WineTitleSelector),
			rod.WithManagerOptions(rod.WithHeadless(!c.Headful)),
		)
	}
}

// serveMetrics serves h at /metrics until the returned func is called.
func serveMetrics(addr string, h http.Handler, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "addr", addr, "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func defaultDBPath() string {
	if path := os.Getenv("WINEFETCH_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "winefetch.db"
	}
	dir := filepath.Join(home, ".winefetch")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "winefetch.db")
}
