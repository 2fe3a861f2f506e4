package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homematch-ai/recommender/internal/api/handlers"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(_ context.Context) error { return p.err }

func TestHealth_AllDependenciesUp(t *testing.T) {
	handler := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"postgres": stubPinger{},
		"redis":    stubPinger{},
	})

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, "ok", payload.Checks["postgres"])
}

func TestHealth_DegradedWhenDependencyDown(t *testing.T) {
	handler := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"postgres": stubPinger{},
		"redis":    stubPinger{err: errors.New("connection refused")},
	})

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var payload struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.Equal(t, "degraded", payload.Status)
	assert.Equal(t, "unreachable", payload.Checks["redis"])
	assert.Equal(t, "ok", payload.Checks["postgres"])
}
