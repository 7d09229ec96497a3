package winefetch

import (
	"context"
	"time"
)

// Run represents one scrape invocation and its summary counts.
type Run struct {
	ID         string    `json:"id"`
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Cancelled  int       `json:"cancelled"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.Total < 0 {
		return Errorf(EINVALID, "run total must not be negative")
	}
	if r.Succeeded+r.Failed+r.Cancelled > r.Total {
		return Errorf(EINVALID, "run outcome counts exceed total")
	}
	return nil
}

// Finished reports whether FinishRun has been recorded for the run.
func (r *Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// RunService represents a service for managing scrape runs.
type RunService interface {
	// CreateRun creates a new run and assigns its ID and StartedAt.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run by ID.
	// Returns ENOTFOUND if run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs, most recent first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// FinishRun records the outcome counts and completion time.
	// Returns ENOTFOUND if run does not exist.
	FinishRun(ctx context.Context, id string, upd RunUpdate) (*Run, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	ID *string `json:"id"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RunUpdate represents the outcome counts recorded by FinishRun.
type RunUpdate struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// WineService represents a service for persisting scraped wines.
type WineService interface {
	// CreateWines stores wines for a run in the given order.
	// Records identical to one already stored for the run are skipped.
	// Returns the number of rows stored.
	CreateWines(ctx context.Context, runID string, wines []*Wine) (int, error)

	// FindWines retrieves wines matching the filter in stored order.
	FindWines(ctx context.Context, filter WineFilter) ([]*Wine, error)
}

// WineFilter represents a filter for FindWines.
type WineFilter struct {
	RunID *string `json:"runId"`
	URL   *string `json:"url"`

	// FailedOnly restricts results to ERROR and STOPPED rows.
	FailedOnly bool `json:"failedOnly"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
