package winefetch_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/winefetch"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := winefetch.Errorf(winefetch.ENOTFOUND, "run %q not found", "abc")

	assert.Equal(t, winefetch.ENOTFOUND, winefetch.ErrorCode(err))
	assert.Equal(t, "run \"abc\" not found", winefetch.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("fetch page: %w", winefetch.Errorf(winefetch.ETRANSIENT, "page timed out"))

	assert.Equal(t, winefetch.ETRANSIENT, winefetch.ErrorCode(err))
	assert.Equal(t, "page timed out", winefetch.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("boom")

	assert.Equal(t, winefetch.EINTERNAL, winefetch.ErrorCode(err))
	assert.Equal(t, "Internal error.", winefetch.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, winefetch.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, winefetch.ErrorMessage(nil))
}
