package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fwojciec/winefetch"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ winefetch.WineService = (*WineService)(nil)

// WineService implements winefetch.WineService using SQLite.
type WineService struct {
	db *DB
}

// NewWineService creates a new WineService.
func NewWineService(db *DB) *WineService {
	return &WineService{db: db}
}

const wineColumns = `full_name, name, vintage, producer, region, variety, color, score,
	drink_window, reviewed_by, release_price, drink_date, tasting_note, producer_note,
	maturity, certified, published_date, url, error`

// CreateWines appends wines to a run in one transaction. Rows whose content
// hash already exists for the run are skipped.
func (s *WineService) CreateWines(ctx context.Context, runID string, wines []*winefetch.Wine) (int, error) {
	for _, w := range wines {
		if w == nil || w.URL == "" {
			return 0, winefetch.Errorf(winefetch.EINVALID, "wine URL required")
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var position int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE((SELECT MAX(position) + 1 FROM wines WHERE run_id = ?), 0)
		FROM runs WHERE id = ?
	`, runID, runID).Scan(&position)
	if err == sql.ErrNoRows {
		return 0, winefetch.Errorf(winefetch.ENOTFOUND, "run not found")
	}
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO wines (id, run_id, position, record_hash, `+wineColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var created int
	for _, w := range wines {
		args := []any{uuid.New().String(), runID, position, hashKey(w.DedupeKey())}
		for _, v := range w.Values() {
			args = append(args, v)
		}
		args = append(args, w.Error)

		result, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return 0, err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n > 0 {
			created++
			position++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return created, nil
}

// FindWines retrieves wines matching the filter in stored order.
func (s *WineService) FindWines(ctx context.Context, filter winefetch.WineFilter) ([]*winefetch.Wine, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + wineColumns + " FROM wines WHERE 1=1")

	if filter.RunID != nil {
		query.WriteString(" AND run_id = ?")
		args = append(args, *filter.RunID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.FailedOnly {
		query.WriteString(" AND (full_name IN (?, ?) OR error != '')")
		args = append(args, winefetch.FullNameError, winefetch.FullNameStopped)
	}

	query.WriteString(" ORDER BY run_id, position ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wines []*winefetch.Wine
	for rows.Next() {
		var w winefetch.Wine
		if err := rows.Scan(&w.FullName, &w.Name, &w.Vintage, &w.Producer, &w.Region,
			&w.Variety, &w.Color, &w.Score, &w.DrinkWindow, &w.ReviewedBy, &w.ReleasePrice,
			&w.DrinkDate, &w.TastingNote, &w.ProducerNote, &w.Maturity, &w.Certified,
			&w.PublishedDate, &w.URL, &w.Error); err != nil {
			return nil, err
		}
		wines = append(wines, &w)
	}

	return wines, rows.Err()
}
