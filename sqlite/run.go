package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/winefetch"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ winefetch.RunService = (*RunService)(nil)

// RunService implements winefetch.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

const runColumns = "id, total, succeeded, failed, cancelled, started_at, finished_at"

// CreateRun creates a new run.
func (s *RunService) CreateRun(ctx context.Context, run *winefetch.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	run.StartedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Total, run.Succeeded, run.Failed, run.Cancelled,
		formatTime(run.StartedAt), formatTime(run.FinishedAt))

	return err
}

// FindRunByID retrieves a run by ID.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*winefetch.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, winefetch.Errorf(winefetch.ENOTFOUND, "run not found")
	}
	return run, err
}

// FindRuns retrieves runs matching the filter, most recent first.
func (s *RunService) FindRuns(ctx context.Context, filter winefetch.RunFilter) ([]*winefetch.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + runColumns + " FROM runs WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*winefetch.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// FinishRun records the outcome counts and completion time of a run.
func (s *RunService) FinishRun(ctx context.Context, id string, upd winefetch.RunUpdate) (*winefetch.Run, error) {
	run, err := s.FindRunByID(ctx, id)
	if err != nil {
		return nil, err
	}

	run.Succeeded = upd.Succeeded
	run.Failed = upd.Failed
	run.Cancelled = upd.Cancelled

	if err := run.Validate(); err != nil {
		return nil, err
	}

	run.FinishedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE runs
		SET succeeded = ?, failed = ?, cancelled = ?, finished_at = ?
		WHERE id = ?
	`, run.Succeeded, run.Failed, run.Cancelled, formatTime(run.FinishedAt), id)
	if err != nil {
		return nil, err
	}

	return run, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*winefetch.Run, error) {
	var run winefetch.Run
	var startedAt, finishedAt string

	if err := row.Scan(&run.ID, &run.Total, &run.Succeeded, &run.Failed, &run.Cancelled,
		&startedAt, &finishedAt); err != nil {
		return nil, err
	}

	var err error
	if run.StartedAt, err = parseTime(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTime(finishedAt, "finished_at"); err != nil {
		return nil, err
	}
	return &run, nil
}
