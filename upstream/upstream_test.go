package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatransit/routeengine/errs"
)

func TestStatusToError_ClassifiesByCode(t *testing.T) {
	assert.NoError(t, statusToError(200))
	assert.ErrorIs(t, statusToError(401), errs.ErrUpstreamAuth)
	assert.ErrorIs(t, statusToError(404), errs.ErrUpstreamNotFound)
	assert.ErrorIs(t, statusToError(503), errs.ErrUpstreamServer)
}

func TestFetchAll_SucceedsAgainstFakeServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Snapshot{
			Stops: []RawStop{{ID: "s1", Name: "Stop One"}},
		})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, RetryAttempts: 1, RetryDelay: time.Millisecond})
	snap, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Stops, 1)
	assert.Equal(t, "s1", snap.Stops[0].ID)
}

func TestFetchAll_RetriesOnServerErrorThenExhausts(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, RetryAttempts: 2, RetryDelay: time.Millisecond})
	_, err := c.FetchAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrRetryExhausted)
	assert.GreaterOrEqual(t, attempts, 2)
}

func TestFetchAll_DoesNotRetryOnAuthFailure(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, RetryAttempts: 3, RetryDelay: time.Millisecond})
	_, err := c.FetchAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUpstreamAuth)
	assert.Equal(t, 1, attempts)
}
