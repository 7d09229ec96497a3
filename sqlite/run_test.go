package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/winefetch"
	"github.com/fwojciec/winefetch/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRun(t *testing.T, db *sqlite.DB, total int) *winefetch.Run {
	t.Helper()
	run := &winefetch.Run{Total: total}
	require.NoError(t, sqlite.NewRunService(db).CreateRun(context.Background(), run))
	return run
}

func TestRunService_CreateRun(t *testing.T) {
	t.Parallel()

	t.Run("creates run with generated ID and start time", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		run := &winefetch.Run{Total: 10}

		err := sqlite.NewRunService(db).CreateRun(context.Background(), run)

		require.NoError(t, err)
		assert.NotEmpty(t, run.ID, "ID should be generated")
		assert.False(t, run.StartedAt.IsZero(), "StartedAt should be set")
		assert.False(t, run.Finished())
	})

	t.Run("returns error for invalid run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		err := sqlite.NewRunService(db).CreateRun(context.Background(), &winefetch.Run{Total: -1})

		assert.Equal(t, winefetch.EINVALID, winefetch.ErrorCode(err))
	})
}

func TestRunService_FindRunByID(t *testing.T) {
	t.Parallel()

	t.Run("returns run when found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		run := createTestRun(t, db, 4)

		found, err := sqlite.NewRunService(db).FindRunByID(context.Background(), run.ID)

		require.NoError(t, err)
		assert.Equal(t, run.ID, found.ID)
		assert.Equal(t, 4, found.Total)
		assert.True(t, run.StartedAt.Equal(found.StartedAt))
		assert.True(t, found.FinishedAt.IsZero())
	})

	t.Run("returns ENOTFOUND for missing run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		_, err := sqlite.NewRunService(db).FindRunByID(context.Background(), "missing")

		assert.Equal(t, winefetch.ENOTFOUND, winefetch.ErrorCode(err))
	})
}

func TestRunService_FindRuns(t *testing.T) {
	t.Parallel()

	t.Run("returns runs most recent first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		first := createTestRun(t, db, 1)
		second := createTestRun(t, db, 2)
		third := createTestRun(t, db, 3)

		runs, err := sqlite.NewRunService(db).FindRuns(context.Background(), winefetch.RunFilter{})

		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, third.ID, runs[0].ID)
		assert.Equal(t, second.ID, runs[1].ID)
		assert.Equal(t, first.ID, runs[2].ID)
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		createTestRun(t, db, 1)
		second := createTestRun(t, db, 2)
		createTestRun(t, db, 3)

		runs, err := sqlite.NewRunService(db).FindRuns(context.Background(), winefetch.RunFilter{Limit: 1, Offset: 1})

		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, second.ID, runs[0].ID)
	})

	t.Run("filters by ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		createTestRun(t, db, 1)
		want := createTestRun(t, db, 2)

		runs, err := sqlite.NewRunService(db).FindRuns(context.Background(), winefetch.RunFilter{ID: &want.ID})

		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, want.ID, runs[0].ID)
	})
}

func TestRunService_FinishRun(t *testing.T) {
	t.Parallel()

	t.Run("records counts and completion time", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRunService(db)
		ctx := context.Background()
		run := createTestRun(t, db, 5)

		finished, err := svc.FinishRun(ctx, run.ID, winefetch.RunUpdate{Succeeded: 3, Failed: 1, Cancelled: 1})
		require.NoError(t, err)
		assert.True(t, finished.Finished())

		found, err := svc.FindRunByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, found.Succeeded)
		assert.Equal(t, 1, found.Failed)
		assert.Equal(t, 1, found.Cancelled)
		assert.True(t, found.Finished())
	})

	t.Run("rejects counts exceeding total", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		run := createTestRun(t, db, 1)

		_, err := sqlite.NewRunService(db).FinishRun(context.Background(), run.ID, winefetch.RunUpdate{Succeeded: 2})

		assert.Equal(t, winefetch.EINVALID, winefetch.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for missing run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		_, err := sqlite.NewRunService(db).FinishRun(context.Background(), "missing", winefetch.RunUpdate{})

		assert.Equal(t, winefetch.ENOTFOUND, winefetch.ErrorCode(err))
	})
}
