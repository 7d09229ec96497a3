// Package rod implements the winefetch browser with Chrome via go-rod.
package rod

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/winefetch"
	"github.com/fwojciec/winefetch/crawl"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements winefetch.Browser at compile time.
var _ winefetch.Browser = (*Fetcher)(nil)

// DefaultFetchTimeout bounds a single page fetch.
const DefaultFetchTimeout = 30 * time.Second

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// All pages share one browser, and therefore one logged-in session.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager      *BrowserManager
	managerOpts  []ManagerOption
	fetchTimeout time.Duration
	waitSelector string
	homeURL      string

	closed atomic.Bool

	// loginMu guards creds and loginGeneration. Fetches on a browser
	// generation that has not seen a login replay it first.
	loginMu         sync.Mutex
	creds           *winefetch.Credentials
	loginGeneration int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-fetch timeout. Defaults to DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.fetchTimeout = d
	}
}

// WithWaitSelector makes Fetch wait until selector is present after load.
func WithWaitSelector(selector string) Option {
	return func(f *Fetcher) {
		f.waitSelector = selector
	}
}

// WithHomeURL sets the page Login starts from. Defaults to winefetch.HomeURL.
func WithHomeURL(url string) Option {
	return func(f *Fetcher) {
		f.homeURL = url
	}
}

// WithManagerOptions passes options through to the BrowserManager.
func WithManagerOptions(opts ...ManagerOption) Option {
	return func(f *Fetcher) {
		f.managerOpts = append(f.managerOpts, opts...)
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		fetchTimeout: DefaultFetchTimeout,
		homeURL:      winefetch.HomeURL,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(f.managerOpts...)
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", winefetch.Errorf(winefetch.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser, generation, release, err := f.manager.Acquire()
	if err != nil {
		return "", err
	}
	defer release()

	if err := f.replayLogin(ctx, browser, generation); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", pageError("open page for", url, err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", pageError("navigate to", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", pageError("load", url, err)
	}
	if f.waitSelector != "" {
		if _, err := page.Element(f.waitSelector); err != nil {
			return "", pageError("wait for content on", url, err)
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", pageError("read", url, err)
	}

	return html, nil
}

// Login logs into the review site. The credentials are kept so the login
// can be replayed after the browser is recycled.
func (f *Fetcher) Login(ctx context.Context, creds winefetch.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	if f.closed.Load() {
		return winefetch.Errorf(winefetch.EINVALID, "fetcher is closed")
	}

	browser, generation, release, err := f.manager.Acquire()
	if err != nil {
		return err
	}
	defer release()

	f.loginMu.Lock()
	defer f.loginMu.Unlock()

	if err := f.login(ctx, browser, creds); err != nil {
		return err
	}
	f.creds = &creds
	f.loginGeneration = generation
	return nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

func (f *Fetcher) replayLogin(ctx context.Context, browser *rod.Browser, generation int) error {
	f.loginMu.Lock()
	defer f.loginMu.Unlock()

	if f.creds == nil || generation <= f.loginGeneration {
		return nil
	}
	if err := f.login(ctx, browser, *f.creds); err != nil {
		return fmt.Errorf("replay login: %w", err)
	}
	f.loginGeneration = generation
	return nil
}

// login runs the login flow with retries. Must be called with loginMu held.
func (f *Fetcher) login(ctx context.Context, browser *rod.Browser, creds winefetch.Credentials) error {
	return crawl.Retry(ctx, winefetch.LoginAttempts, winefetch.LoginRetryDelay, winefetch.NewPatternClassifier(),
		func(ctx context.Context) error {
			return f.loginOnce(ctx, browser, creds)
		}, nil)
}

func (f *Fetcher) loginOnce(ctx context.Context, browser *rod.Browser, creds winefetch.Credentials) error {
	ctx, cancel := context.WithTimeout(ctx, 3*f.fetchTimeout)
	defer cancel()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return pageError("open page for", f.homeURL, err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(f.homeURL); err != nil {
		return pageError("navigate to", f.homeURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		return pageError("load", f.homeURL, err)
	}

	if banner, err := page.Timeout(5 * time.Second).Element(winefetch.CookieAcceptSelector); err == nil {
		_ = banner.Click(proto.InputMouseButtonLeft, 1)
	}

	if ok, _, err := page.Has(winefetch.LoggedInSelector); err == nil && ok {
		return nil
	}

	entry, err := page.Timeout(10 * time.Second).Element(winefetch.LoginEntrySelector)
	if err != nil {
		entry, err = page.Timeout(5*time.Second).ElementR("button, a", `^\s*Log ?in\s*$`)
		if err != nil {
			return winefetch.Errorf(winefetch.ETRANSIENT, "login button not found: %v", err)
		}
	}
	if err := entry.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return winefetch.Errorf(winefetch.ETRANSIENT, "click login button: %v", err)
	}

	if err := fill(page, winefetch.EmailSelector, creds.Email); err != nil {
		return err
	}
	if err := fill(page, winefetch.PasswordSelector, creds.Password); err != nil {
		return err
	}

	submit, err := page.Timeout(10 * time.Second).Element(winefetch.SubmitSelector)
	if err != nil {
		return winefetch.Errorf(winefetch.ETRANSIENT, "login submit button not found: %v", err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return winefetch.Errorf(winefetch.ETRANSIENT, "submit login form: %v", err)
	}

	if _, err := page.Timeout(15 * time.Second).Element(winefetch.LoggedInSelector); err != nil {
		return winefetch.Errorf(winefetch.ETRANSIENT, "login failed: no logged-in indicator after submit")
	}
	return nil
}

// fill types value into the input matched by selector.
func fill(page *rod.Page, selector, value string) error {
	el, err := page.Timeout(10 * time.Second).Element(selector)
	if err != nil {
		return winefetch.Errorf(winefetch.ETRANSIENT, "login field %s not found: %v", selector, err)
	}
	if err := el.Input(value); err != nil {
		return winefetch.Errorf(winefetch.ETRANSIENT, "fill login field %s: %v", selector, err)
	}
	return nil
}

// pageError keeps context errors matchable and marks driver failures as
// transient.
func pageError(op, url string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %s: %w", op, url, err)
	}
	return winefetch.Errorf(winefetch.ETRANSIENT, "%s %s: %v", op, url, err)
}
