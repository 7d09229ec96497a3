package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/winefetch"
)

// Ensure LoggingWineService implements winefetch.WineService.
var _ winefetch.WineService = (*LoggingWineService)(nil)

// LoggingWineService wraps a WineService with logging.
type LoggingWineService struct {
	next   winefetch.WineService
	logger *slog.Logger
}

// NewLoggingWineService creates a new LoggingWineService.
func NewLoggingWineService(next winefetch.WineService, logger *slog.Logger) *LoggingWineService {
	return &LoggingWineService{next: next, logger: logger}
}

// CreateWines logs how many of the given wines were stored.
func (s *LoggingWineService) CreateWines(ctx context.Context, runID string, wines []*winefetch.Wine) (n int, err error) {
	defer func(begin time.Time) {
		s.logger.Info("store wines",
			"run", runID,
			"given", len(wines),
			"stored", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateWines(ctx, runID, wines)
}

// FindWines delegates to the wrapped service.
func (s *LoggingWineService) FindWines(ctx context.Context, filter winefetch.WineFilter) ([]*winefetch.Wine, error) {
	return s.next.FindWines(ctx, filter)
}
