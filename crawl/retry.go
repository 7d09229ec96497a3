package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/winefetch"
)

// Default retry settings, matching what the review site tolerates.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 3 * time.Second
)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// Retry calls fn up to attempts times, sleeping delay between tries.
// A nil classifier retries every error; otherwise permanent errors stop
// the loop immediately. The logger, if provided, is called before each retry.
func Retry(ctx context.Context, attempts int, delay time.Duration, classifier winefetch.Classifier, fn func(ctx context.Context) error, logger LogFunc) error {
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		if classifier != nil && classifier.Classify(err) == winefetch.Permanent {
			break
		}

		if logger != nil {
			logger("  retry (attempt %d/%d): %v", attempt+1, attempts, err)
		}

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
