// Package crawl provides bounded, rate-limited, retrying execution of
// independent work items, and the wine scraping pipeline built on it.
package crawl

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/winefetch"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ProcessFunc handles a single work item.
type ProcessFunc[T, R any] func(ctx context.Context, item T) (R, error)

// Executor runs work items concurrently under a concurrency cap, gates every
// attempt on a shared Limiter, retries transient failures and reports exactly
// one Outcome per item.
type Executor[T, R any] struct {
	Process    ProcessFunc[T, R]
	Classifier winefetch.Classifier
	Limiter    Limiter

	// Concurrency caps how many Process calls are in flight at once.
	Concurrency int

	// MaxAttempts counts the first try. Zero means DefaultMaxAttempts.
	MaxAttempts int

	// RetryDelay is the fixed pause between attempts of the same item.
	RetryDelay time.Duration

	// ShouldStop is polled before each attempt acquires a slot.
	ShouldStop func() bool

	// Progress receives events. Calls are serialized.
	Progress ProgressFunc[T]
}

// Status is the terminal state of a work item.
type Status int

const (
	StatusSuccess Status = iota + 1
	StatusFailure
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// Outcome is the result of one work item.
type Outcome[R any] struct {
	Status Status

	// Record is set only when Status is StatusSuccess.
	Record R

	// Err is the last error for failures and the cancellation reason
	// for cancelled items.
	Err error

	// Attempts is the number of times Process was called.
	Attempts int
}

// Failure identifies an item whose outcome was a failure or a cancellation.
type Failure[T any] struct {
	Index  int
	Item   T
	Status Status
	Err    error
}

// Report holds the outcomes of a Run, aligned index-for-index with the input.
type Report[T, R any] struct {
	Outcomes []Outcome[R]
	Failed   []Failure[T]
}

// Counts returns the number of outcomes in each terminal state.
func (r *Report[T, R]) Counts() (succeeded, failed, cancelled int) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusSuccess:
			succeeded++
		case StatusFailure:
			failed++
		case StatusCancelled:
			cancelled++
		}
	}
	return succeeded, failed, cancelled
}

// Records returns the successful records in input order with duplicates,
// as identified by key, collapsed to their first occurrence.
func (r *Report[T, R]) Records(key func(R) string) []R {
	var records []R
	for _, o := range r.Outcomes {
		if o.Status == StatusSuccess {
			records = append(records, o.Record)
		}
	}
	return Unique(records, key)
}

// Unique returns records with later duplicates removed, preserving order.
func Unique[R any](records []R, key func(R) string) []R {
	seen := make(map[string]struct{}, len(records))
	out := make([]R, 0, len(records))
	for _, rec := range records {
		k := key(rec)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// Run processes every item and returns a report once all of them settle.
// Per-item errors never escape; only invalid configuration is returned as
// an error. Canceling ctx converts every unfinished item to StatusCancelled.
func (e *Executor[T, R]) Run(ctx context.Context, items []T) (*Report[T, R], error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	x := &execution[T, R]{
		Executor:    e,
		sem:         semaphore.NewWeighted(int64(e.Concurrency)),
		maxAttempts: e.MaxAttempts,
		total:       len(items),
	}
	if x.maxAttempts == 0 {
		x.maxAttempts = DefaultMaxAttempts
	}

	outcomes := make([]Outcome[R], len(items))

	var g errgroup.Group
	for i, item := range items {
		g.Go(func() error {
			outcomes[i] = x.runItem(ctx, i, item)
			return nil
		})
	}
	_ = g.Wait()

	report := &Report[T, R]{Outcomes: outcomes}
	for i, o := range outcomes {
		if o.Status != StatusSuccess {
			report.Failed = append(report.Failed, Failure[T]{
				Index:  i,
				Item:   items[i],
				Status: o.Status,
				Err:    o.Err,
			})
		}
	}

	x.emit(Event[T]{
		Type:      EventFinished,
		Index:     -1,
		Completed: x.total,
		Total:     x.total,
	})

	return report, nil
}

func (e *Executor[T, R]) validate() error {
	switch {
	case e.Process == nil:
		return winefetch.Errorf(winefetch.EINVALID, "executor process function required")
	case e.Limiter == nil:
		return winefetch.Errorf(winefetch.EINVALID, "executor rate limiter required")
	case e.Concurrency <= 0:
		return winefetch.Errorf(winefetch.EINVALID, "concurrency must be positive, got %d", e.Concurrency)
	case e.MaxAttempts < 0:
		return winefetch.Errorf(winefetch.EINVALID, "max attempts must not be negative, got %d", e.MaxAttempts)
	case e.RetryDelay < 0:
		return winefetch.Errorf(winefetch.EINVALID, "retry delay must not be negative, got %s", e.RetryDelay)
	}
	return nil
}

// execution is the state shared by the items of a single Run.
type execution[T, R any] struct {
	*Executor[T, R]

	sem         *semaphore.Weighted
	maxAttempts int
	total       int
	completed   atomic.Int64

	mu       sync.Mutex // serializes Progress
	stopOnce sync.Once
}

// runItem drives one item from Pending to a terminal state.
func (x *execution[T, R]) runItem(ctx context.Context, index int, item T) Outcome[R] {
	for attempt := 1; ; attempt++ {
		record, started, err := x.attempt(ctx, index, item, attempt)
		if !started {
			return x.cancelled(ctx, index, item, attempt-1)
		}

		if err == nil {
			x.emit(Event[T]{
				Type:        EventSucceeded,
				Index:       index,
				Item:        item,
				Attempt:     attempt,
				MaxAttempts: x.maxAttempts,
				Completed:   int(x.completed.Add(1)),
				Total:       x.total,
			})
			return Outcome[R]{Status: StatusSuccess, Record: record, Attempts: attempt}
		}

		if ctx.Err() != nil {
			return x.cancelled(ctx, index, item, attempt)
		}

		if attempt >= x.maxAttempts || x.classify(err) == winefetch.Permanent {
			x.emit(Event[T]{
				Type:        EventFailed,
				Index:       index,
				Item:        item,
				Attempt:     attempt,
				MaxAttempts: x.maxAttempts,
				Err:         err,
				Completed:   int(x.completed.Add(1)),
				Total:       x.total,
			})
			return Outcome[R]{Status: StatusFailure, Err: err, Attempts: attempt}
		}

		x.emit(Event[T]{
			Type:        EventRetrying,
			Index:       index,
			Item:        item,
			Attempt:     attempt,
			MaxAttempts: x.maxAttempts,
			Err:         err,
			Completed:   int(x.completed.Load()),
			Total:       x.total,
		})

		if err := sleep(ctx, x.RetryDelay); err != nil {
			return x.cancelled(ctx, index, item, attempt)
		}
	}
}

// attempt holds one concurrency permit for the duration of a single try.
// started is false when the item was stopped before Process was called.
func (x *execution[T, R]) attempt(ctx context.Context, index int, item T, n int) (record R, started bool, err error) {
	if x.stopped(ctx) {
		return record, false, nil
	}
	if err := x.sem.Acquire(ctx, 1); err != nil {
		return record, false, nil
	}
	defer x.sem.Release(1)

	if x.stopped(ctx) {
		return record, false, nil
	}
	if err := x.Limiter.Wait(ctx); err != nil {
		return record, false, nil
	}
	if x.stopped(ctx) {
		return record, false, nil
	}

	x.emit(Event[T]{
		Type:        EventStarted,
		Index:       index,
		Item:        item,
		Attempt:     n,
		MaxAttempts: x.maxAttempts,
		Completed:   int(x.completed.Load()),
		Total:       x.total,
	})

	record, err = x.Process(ctx, item)
	return record, true, err
}

// stopped polls the context and the stop predicate. The first positive
// poll of the predicate emits EventStopRequested.
func (x *execution[T, R]) stopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	if x.ShouldStop == nil || !x.ShouldStop() {
		return false
	}
	x.stopOnce.Do(func() {
		x.emit(Event[T]{
			Type:      EventStopRequested,
			Index:     -1,
			Completed: int(x.completed.Load()),
			Total:     x.total,
		})
	})
	return true
}

func (x *execution[T, R]) cancelled(ctx context.Context, index int, item T, attempts int) Outcome[R] {
	reason := error(winefetch.ErrCancelled)
	if err := ctx.Err(); err != nil {
		reason = fmt.Errorf("%w: %w", winefetch.ErrCancelled, err)
	}
	x.emit(Event[T]{
		Type:        EventCancelled,
		Index:       index,
		Item:        item,
		Attempt:     attempts,
		MaxAttempts: x.maxAttempts,
		Err:         reason,
		Completed:   int(x.completed.Add(1)),
		Total:       x.total,
	})
	return Outcome[R]{Status: StatusCancelled, Err: reason, Attempts: attempts}
}

func (x *execution[T, R]) classify(err error) winefetch.ErrorClass {
	if x.Classifier == nil {
		return winefetch.Transient
	}
	return x.Classifier.Classify(err)
}

func (x *execution[T, R]) emit(ev Event[T]) {
	if x.Progress == nil {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.Progress(ev)
}
