package fs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/winefetch/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURLs(t *testing.T) {
	t.Parallel()

	input := `# Rhône wines
https://example.com/wines/1

  https://example.com/wines/2  
# https://example.com/wines/skipped
not-a-url
`

	urls, err := fs.ParseURLs(strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/wines/1",
		"https://example.com/wines/2",
		"not-a-url",
	}, urls)
}

func TestReadURLs(t *testing.T) {
	t.Parallel()

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "urls.txt")
		require.NoError(t, os.WriteFile(path, []byte("https://example.com/a\r\nhttps://example.com/b\r\n"), 0644))

		urls, err := fs.ReadURLs(path)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, urls)
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		t.Parallel()

		_, err := fs.ReadURLs(filepath.Join(t.TempDir(), "missing.txt"))

		assert.Error(t, err)
	})
}
