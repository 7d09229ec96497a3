// Package playwright implements the winefetch browser with playwright-go.
package playwright

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/winefetch"
	"github.com/fwojciec/winefetch/crawl"
	"github.com/playwright-community/playwright-go"
)

// Ensure Browser implements winefetch.Browser at compile time.
var _ winefetch.Browser = (*Browser)(nil)

// Options configures a Browser.
type Options struct {
	Headless     bool
	Timeout      time.Duration
	UserAgent    string
	HomeURL      string
	WaitSelector string
}

// DefaultOptions returns headless options with a 30 second page timeout.
func DefaultOptions() *Options {
	return &Options{
		Headless:  true,
		Timeout:   30 * time.Second,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		HomeURL:   winefetch.HomeURL,
	}
}

// Browser drives Chromium through Playwright. Pages share one browser
// context, so a login applies to every later Fetch.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	opts    Options

	mu     sync.Mutex
	closed bool
}

// New starts Playwright and launches Chromium.
func New(opts *Options) (*Browser, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:         &opts.UserAgent,
		JavaScriptEnabled: playwright.Bool(true),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	return &Browser{pw: pw, browser: browser, context: bctx, opts: *opts}, nil
}

// Fetch navigates to url and returns the rendered HTML.
func (b *Browser) Fetch(ctx context.Context, url string) (string, error) {
	page, done, err := b.newPage(ctx)
	if err != nil {
		return "", err
	}
	defer done()

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return "", pageError(ctx, "navigate to", url, err)
	}
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	}); err != nil {
		return "", pageError(ctx, "load", url, err)
	}
	if b.opts.WaitSelector != "" {
		if err := page.Locator(b.opts.WaitSelector).First().WaitFor(); err != nil {
			return "", pageError(ctx, "wait for content on", url, err)
		}
	}

	html, err := page.Content()
	if err != nil {
		return "", pageError(ctx, "read", url, err)
	}
	return html, nil
}

// Login signs in on the home page, retrying transient failures.
func (b *Browser) Login(ctx context.Context, creds winefetch.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	return crawl.Retry(ctx, winefetch.LoginAttempts, winefetch.LoginRetryDelay, winefetch.NewPatternClassifier(),
		func(ctx context.Context) error {
			return b.loginOnce(ctx, creds)
		}, nil)
}

func (b *Browser) loginOnce(ctx context.Context, creds winefetch.Credentials) error {
	page, done, err := b.newPage(ctx)
	if err != nil {
		return err
	}
	defer done()

	if _, err := page.Goto(b.opts.HomeURL); err != nil {
		return pageError(ctx, "navigate to", b.opts.HomeURL, err)
	}

	short := playwright.Float(5000)
	banner := page.Locator(winefetch.CookieAcceptSelector).First()
	if err := banner.WaitFor(playwright.LocatorWaitForOptions{Timeout: short}); err == nil {
		_ = banner.Click()
	}

	if n, err := page.Locator(winefetch.LoggedInSelector).Count(); err == nil && n > 0 {
		return nil
	}

	entry := page.Locator(winefetch.LoginEntrySelector).First()
	if err := entry.WaitFor(playwright.LocatorWaitForOptions{Timeout: short}); err != nil {
		entry = page.GetByRole("button", playwright.PageGetByRoleOptions{Name: "Login"}).First()
	}
	if err := entry.Click(); err != nil {
		return pageError(ctx, "click login button on", b.opts.HomeURL, err)
	}

	if err := page.Locator(winefetch.EmailSelector).Fill(creds.Email); err != nil {
		return pageError(ctx, "fill email on", b.opts.HomeURL, err)
	}
	if err := page.Locator(winefetch.PasswordSelector).Fill(creds.Password); err != nil {
		return pageError(ctx, "fill password on", b.opts.HomeURL, err)
	}
	if err := page.Locator(winefetch.SubmitSelector).Click(); err != nil {
		return pageError(ctx, "submit login on", b.opts.HomeURL, err)
	}

	if err := page.Locator(winefetch.LoggedInSelector).First().WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(15000),
	}); err != nil {
		return winefetch.Errorf(winefetch.ETRANSIENT, "login failed: no logged-in indicator after submit")
	}
	return nil
}

// Close releases the context, the browser and the Playwright driver.
// Close is safe to call multiple times.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.context.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close context: %w", err))
	}
	if err := b.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
	}
	if err := b.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
	}
	return errors.Join(errs...)
}

// newPage opens a page whose operations time out with the earlier of the
// page timeout and ctx's deadline. Canceling ctx closes the page, which
// aborts any pending operation. done closes the page.
func (b *Browser) newPage(ctx context.Context) (playwright.Page, func(), error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, nil, winefetch.Errorf(winefetch.EINVALID, "browser is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	page, err := b.context.NewPage()
	if err != nil {
		return nil, nil, winefetch.Errorf(winefetch.ETRANSIENT, "failed to create new page: %v", err)
	}

	timeout := b.opts.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	page.SetDefaultTimeout(float64(timeout.Milliseconds()))
	page.SetDefaultNavigationTimeout(float64(timeout.Milliseconds()))

	stop := context.AfterFunc(ctx, func() { _ = page.Close() })
	return page, func() {
		stop()
		_ = page.Close()
	}, nil
}

// pageError prefers the context error when ctx ended the operation and
// marks driver failures as transient.
func pageError(ctx context.Context, op, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s %s: %w", op, url, ctxErr)
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%s %s: %w: %v", op, url, context.DeadlineExceeded, err)
	}
	return winefetch.Errorf(winefetch.ETRANSIENT, "%s %s: %v", op, url, err)
}
