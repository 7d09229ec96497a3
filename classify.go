package winefetch

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ErrorClass tells a retrying caller whether a failed attempt is worth repeating.
type ErrorClass int

const (
	// Transient errors are expected to be intermittent: timeouts,
	// aborted navigations, detached frames.
	Transient ErrorClass = iota
	// Permanent errors will not resolve on retry: malformed input,
	// explicit cancellation.
	Permanent
)

// String returns the lowercase name of the class.
func (c ErrorClass) String() string {
	switch c {
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Classifier decides whether an error returned by a unit of work is transient.
type Classifier interface {
	Classify(err error) ErrorClass
}

// ClassifierFunc adapts an ordinary function to the Classifier interface.
type ClassifierFunc func(err error) ErrorClass

// Classify calls f(err).
func (f ClassifierFunc) Classify(err error) ErrorClass {
	return f(err)
}

// DefaultTransientPatterns are lowercase message fragments that browser
// drivers report for intermittent navigation problems.
var DefaultTransientPatterns = []string{
	"net::err_aborted",
	"frame was detached",
	"timeout",
	"navigation failed",
	"context deadline exceeded",
}

// Ensure PatternClassifier implements Classifier at compile time.
var _ Classifier = (*PatternClassifier)(nil)

// PatternClassifier classifies errors by application code, well-known
// sentinel errors and, as a last resort, by matching the error text.
type PatternClassifier struct {
	// Patterns are matched case-insensitively against the error message.
	Patterns []string

	// Default is returned when no rule matches.
	Default ErrorClass
}

// NewPatternClassifier returns a classifier using DefaultTransientPatterns
// that treats unrecognized errors as permanent.
func NewPatternClassifier() *PatternClassifier {
	return &PatternClassifier{
		Patterns: DefaultTransientPatterns,
		Default:  Permanent,
	}
}

// Classify implements Classifier.
func (c *PatternClassifier) Classify(err error) ErrorClass {
	if err == nil {
		return c.Default
	}

	switch {
	case errors.Is(err, context.Canceled):
		return Permanent
	case ErrorCode(err) == EINVALID, ErrorCode(err) == ECANCELED:
		return Permanent
	case ErrorCode(err) == ETRANSIENT:
		return Transient
	case errors.Is(err, context.DeadlineExceeded):
		return Transient
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Transient
	}

	msg := strings.ToLower(err.Error())
	for _, p := range c.Patterns {
		if p != "" && strings.Contains(msg, strings.ToLower(p)) {
			return Transient
		}
	}

	return c.Default
}
