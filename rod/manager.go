package rod

import (
	"fmt"
	"sync"

	"github.com/fwojciec/winefetch"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// BrowserManager manages browser lifecycle with automatic recycling to prevent
// memory accumulation. Chrome's memory baseline keeps growing under load even
// with proper page cleanup, so the browser is replaced periodically.
//
// A retired browser stays open until every page acquired from it is released.
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	maxPages int
	headless bool

	mu        sync.Mutex
	current   *session
	pageCount int
	closed    bool
}

// session is one launched browser process.
type session struct {
	browser    *rod.Browser
	launcher   *launcher.Launcher
	generation int
	active     int
	retired    bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the maximum number of pages before the browser is recycled.
// Defaults to DefaultMaxPages if not specified.
func WithMaxPages(n int) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithHeadless controls whether Chrome shows a window. Defaults to true.
func WithHeadless(headless bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.headless = headless
	}
}

// NewBrowserManager creates a new BrowserManager and launches the first browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		headless: true,
	}
	for _, opt := range opts {
		opt(bm)
	}

	s, err := bm.launch(1)
	if err != nil {
		return nil, err
	}
	bm.current = s

	return bm, nil
}

// Acquire returns the current browser and its generation, recycling first
// if the page count has reached maxPages. The generation increases with
// every recycle. release must be called once the caller is done with the
// browser.
func (bm *BrowserManager) Acquire() (browser *rod.Browser, generation int, release func(), err error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, 0, nil, winefetch.Errorf(winefetch.EINVALID, "browser is closed")
	}

	if bm.pageCount >= bm.maxPages {
		bm.recycle()
	}

	s := bm.current
	s.active++
	bm.pageCount++

	var once sync.Once
	release = func() {
		once.Do(func() {
			bm.mu.Lock()
			defer bm.mu.Unlock()
			s.active--
			if s.retired && s.active == 0 {
				_ = s.close()
			}
		})
	}
	return s.browser, s.generation, release, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true
	return bm.current.close()
}

// LauncherPID returns the process ID of the current browser launcher.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.current == nil || bm.current.launcher == nil {
		return 0
	}
	return bm.current.launcher.PID()
}

// launch starts a new browser instance with stability flags.
func (bm *BrowserManager) launch(generation int) (*session, error) {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(bm.headless)

	u, err := lnchr.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &session{browser: browser, launcher: lnchr, generation: generation}, nil
}

// recycle replaces the current browser. If launching the new browser fails,
// the old one is kept. Must be called with mu held.
func (bm *BrowserManager) recycle() {
	next, err := bm.launch(bm.current.generation + 1)
	if err != nil {
		return
	}

	old := bm.current
	old.retired = true
	if old.active == 0 {
		_ = old.close()
	}
	bm.current = next
	bm.pageCount = 0
}

// close shuts down the browser and its launcher.
func (s *session) close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
	return err
}
