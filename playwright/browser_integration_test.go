//go:build integration

package playwright_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/winefetch"
	"github.com/fwojciec/winefetch/playwright"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowser_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div id="root"><header></header></div>
<script>
var h1 = document.createElement('h1');
h1.textContent = 'Château Margaux 2015';
document.querySelector('#root header').appendChild(h1);
</script></body></html>`))
	}))
	defer srv.Close()

	opts := playwright.DefaultOptions()
	opts.WaitSelector = winefetch.WineTitleSelector
	browser, err := playwright.New(opts)
	require.NoError(t, err)
	defer browser.Close()

	t.Run("returns rendered HTML", func(t *testing.T) {
		html, err := browser.Fetch(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Contains(t, html, "Château Margaux 2015")
	})

	t.Run("honors context deadline", func(t *testing.T) {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(2 * time.Second)
		}))
		defer slow.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		_, err := browser.Fetch(ctx, slow.URL)

		require.Error(t, err)
		assert.Equal(t, winefetch.Transient, winefetch.NewPatternClassifier().Classify(err))
	})
}
