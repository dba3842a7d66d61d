package errcode

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodedError_Basics(t *testing.T) {
	err := New(42, 1, "admission", "RATE_LIMITED", "rate limit exceeded", http.StatusTooManyRequests)

	assert.Equal(t, 420001, err.Code())
	assert.Equal(t, "admission", err.Module())
	assert.Equal(t, "RATE_LIMITED", err.Reason())
	assert.Equal(t, http.StatusTooManyRequests, err.HTTPStatus())
	assert.Equal(t, "rate limit exceeded", err.Error())
}

func TestCodedError_WithDataDoesNotMutate(t *testing.T) {
	base := New(42, 2, "admission", "QUERY_TOO_COMPLEX", "query too complex", http.StatusTooManyRequests)

	enriched := base.WithData("score", 120).WithData("budget", 100)

	assert.Empty(t, base.Data())
	assert.Equal(t, 120, enriched.Data()["score"])
	assert.Equal(t, 100, enriched.Data()["budget"])
}

func TestCodedError_IsMatchesByCode(t *testing.T) {
	def := New(42, 3, "admission", "STORE_DOWN", "store unavailable", http.StatusServiceUnavailable)
	wrapped := def.Wrap(fmt.Errorf("dial tcp: connection refused"))

	assert.True(t, errors.Is(wrapped, def))
	assert.ErrorContains(t, wrapped, "connection refused")
}

func TestRegistry_ConflictPanics(t *testing.T) {
	r := &Registry{codes: make(map[int]string)}

	first := New(42, 9, "admission", "A", "a")
	r.Register(first)
	// idempotent re-registration is fine
	r.Register(first)
	require.Equal(t, 1, r.Count())

	assert.Panics(t, func() {
		r.Register(New(42, 9, "admission", "B", "b"))
	})
}
