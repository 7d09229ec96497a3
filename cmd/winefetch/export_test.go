package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/winefetch"
	main "github.com/fwojciec/winefetch/cmd/winefetch"
	"github.com/fwojciec/winefetch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCmd_Run(t *testing.T) {
	t.Parallel()

	stored := []*winefetch.Wine{
		{FullName: "Producer Cuvée 2015", Name: "Cuvée", URL: "https://www.robertparker.com/wines/a"},
		{FullName: winefetch.FullNameError, URL: "https://www.robertparker.com/wines/b", Error: "timeout"},
	}

	newDeps := func(t *testing.T) (*main.Dependencies, *winefetch.WineFilter, *[]*winefetch.Wine, *string) {
		t.Helper()

		var gotFilter winefetch.WineFilter
		var exported []*winefetch.Wine
		var path string

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			Runs: &mock.RunService{
				FindRunByIDFn: func(_ context.Context, id string) (*winefetch.Run, error) {
					if id != "run-1" {
						return nil, winefetch.Errorf(winefetch.ENOTFOUND, "run %q not found", id)
					}
					return &winefetch.Run{ID: id, Total: 2}, nil
				},
			},
			Wines: &mock.WineService{
				FindWinesFn: func(_ context.Context, filter winefetch.WineFilter) ([]*winefetch.Wine, error) {
					gotFilter = filter
					if filter.FailedOnly {
						return stored[1:], nil
					}
					return stored, nil
				},
			},
			Exporter: &mock.Exporter{
				ExportFn: func(p string, w []*winefetch.Wine) error {
					path = p
					exported = w
					return nil
				},
			},
		}
		return deps, &gotFilter, &exported, &path
	}

	t.Run("exports stored rows of the run", func(t *testing.T) {
		t.Parallel()

		deps, filter, exported, path := newDeps(t)
		output := filepath.Join(t.TempDir(), "out.xlsx")

		err := (&main.ExportCmd{RunID: "run-1", Output: output}).Run(deps)

		require.NoError(t, err)
		require.NotNil(t, filter.RunID)
		assert.Equal(t, "run-1", *filter.RunID)
		assert.False(t, filter.FailedOnly)
		assert.Equal(t, stored, *exported)
		assert.Equal(t, output, *path)
		assert.Contains(t, deps.Stdout.(*bytes.Buffer).String(), "Exported 2 rows from run run-1")
	})

	t.Run("writes failed rows as CSV", func(t *testing.T) {
		t.Parallel()

		deps, filter, exported, _ := newDeps(t)
		output := filepath.Join(t.TempDir(), "failed.csv")

		err := (&main.ExportCmd{RunID: "run-1", Output: output, FailedOnly: true}).Run(deps)

		require.NoError(t, err)
		assert.True(t, filter.FailedOnly)
		assert.Nil(t, *exported)

		data, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Contains(t, string(data), "https://www.robertparker.com/wines/b")
		assert.Contains(t, string(data), "timeout")
	})

	t.Run("returns not found for unknown run", func(t *testing.T) {
		t.Parallel()

		deps, _, exported, _ := newDeps(t)

		err := (&main.ExportCmd{RunID: "missing"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, winefetch.ENOTFOUND, winefetch.ErrorCode(err))
		assert.Nil(t, *exported)
		assert.Contains(t, deps.Stderr.(*bytes.Buffer).String(), `run "missing" not found`)
	})
}
