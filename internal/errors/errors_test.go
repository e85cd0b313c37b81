package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_FormatsCodeAndMessage(t *testing.T) {
	err := New(ErrCodeCorpusDirNotFound, CategoryIO, SeverityFatal, "corpus directory docs")
	assert.Equal(t, "[ERR_201_CORPUS_DIR_NOT_FOUND] corpus directory docs", err.Error())
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := Wrap(cause, ErrCodeFileUnreadable, CategoryIO, "cannot read file")

	require.NotNil(t, err)
	assert.ErrorIs(t, err, cause, "errors.Is must reach the cause through Unwrap")
	assert.Equal(t, SeverityError, err.Severity)
}

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, CategoryInternal, "never happens"))
}

func TestIs_MatchesByCode(t *testing.T) {
	a := New(ErrCodeCacheCorrupt, CategoryIO, SeverityWarning, "first")
	b := New(ErrCodeCacheCorrupt, CategoryIO, SeverityWarning, "second message entirely")
	other := New(ErrCodeCacheWriteFailed, CategoryIO, SeverityError, "different code")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, other))
}

func TestHasCode_WalksChain(t *testing.T) {
	inner := New(ErrCodeProviderTimeout, CategoryNetwork, SeverityError, "deadline exceeded")
	wrapped := fmt.Errorf("embedding build: %w", inner)

	assert.True(t, HasCode(wrapped, ErrCodeProviderTimeout))
	assert.False(t, HasCode(wrapped, ErrCodeProviderUnavailable))
	assert.False(t, HasCode(fmt.Errorf("plain"), ErrCodeProviderTimeout))
}

func TestWithDetailAndSuggestion_Chain(t *testing.T) {
	err := New(ErrCodeConfigInvalid, CategoryConfig, SeverityFatal, "bad value").
		WithDetail("field", "retrieval.top_k").
		WithDetail("value", "-1").
		WithSuggestion("set retrieval.top_k to a positive integer")

	assert.Equal(t, "retrieval.top_k", err.Details["field"])
	assert.Equal(t, "-1", err.Details["value"])
	assert.NotEmpty(t, err.Suggestion)
}
