package mock

import (
	"context"

	"github.com/fwojciec/winefetch"
)

var _ winefetch.WineService = (*WineService)(nil)

// WineService is a mock implementation of winefetch.WineService.
type WineService struct {
	CreateWinesFn func(ctx context.Context, runID string, wines []*winefetch.Wine) (int, error)
	FindWinesFn   func(ctx context.Context, filter winefetch.WineFilter) ([]*winefetch.Wine, error)
}

func (s *WineService) CreateWines(ctx context.Context, runID string, wines []*winefetch.Wine) (int, error) {
	return s.CreateWinesFn(ctx, runID, wines)
}

func (s *WineService) FindWines(ctx context.Context, filter winefetch.WineFilter) ([]*winefetch.Wine, error) {
	return s.FindWinesFn(ctx, filter)
}

var _ winefetch.RunService = (*RunService)(nil)

// RunService is a mock implementation of winefetch.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *winefetch.Run) error
	FindRunByIDFn func(ctx context.Context, id string) (*winefetch.Run, error)
	FindRunsFn    func(ctx context.Context, filter winefetch.RunFilter) ([]*winefetch.Run, error)
	FinishRunFn   func(ctx context.Context, id string, upd winefetch.RunUpdate) (*winefetch.Run, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *winefetch.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*winefetch.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter winefetch.RunFilter) ([]*winefetch.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) FinishRun(ctx context.Context, id string, upd winefetch.RunUpdate) (*winefetch.Run, error) {
	return s.FinishRunFn(ctx, id, upd)
}

var _ winefetch.Exporter = (*Exporter)(nil)

// Exporter is a mock implementation of winefetch.Exporter.
type Exporter struct {
	ExportFn func(path string, wines []*winefetch.Wine) error
}

func (e *Exporter) Export(path string, wines []*winefetch.Wine) error {
	return e.ExportFn(path, wines)
}
