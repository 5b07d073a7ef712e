package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_Defaults(t *testing.T) {
	wrapped := Wrap(httptest.NewRecorder())

	assert.Equal(t, http.StatusOK, wrapped.StatusCode())
	assert.Equal(t, 0, wrapped.BytesWritten())
}

func TestWrap_Idempotent(t *testing.T) {
	first := Wrap(httptest.NewRecorder())
	assert.Same(t, first, Wrap(first))
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	w.WriteHeader(http.StatusBadRequest)
	w.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusBadRequest, w.StatusCode())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResponseWriter_WriteCountsBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	n, err := w.Write([]byte(`[{"title":"A"}]`))
	require.NoError(t, err)
	_, err = w.Write([]byte("\n"))
	require.NoError(t, err)

	assert.Equal(t, 15, n)
	assert.Equal(t, 16, w.BytesWritten())
	assert.Equal(t, http.StatusOK, w.StatusCode())
}

func TestResponseWriter_FlushAndUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	w.Flush()

	assert.True(t, rec.Flushed)
	assert.Same(t, rec, w.Unwrap())
}
