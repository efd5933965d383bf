package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsentiment/pkg/errors"
	"finsentiment/pkg/logger"
)

func ok() Checker {
	return CheckFunc(func(ctx context.Context) error { return nil })
}

func down() Checker {
	return CheckFunc(func(ctx context.Context) error { return errors.ErrUnavailable })
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) HealthStatus {
	t.Helper()
	var s HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	return s
}

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]Checker
		wantCode   int
		wantStatus string
	}{
		{name: "no backends", checks: nil, wantCode: http.StatusOK, wantStatus: "healthy"},
		{name: "all healthy", checks: map[string]Checker{"redis": ok(), "clickhouse": ok()}, wantCode: http.StatusOK, wantStatus: "healthy"},
		{name: "degraded", checks: map[string]Checker{"redis": ok(), "clickhouse": down()}, wantCode: http.StatusOK, wantStatus: "degraded"},
		{name: "all down", checks: map[string]Checker{"redis": down()}, wantCode: http.StatusServiceUnavailable, wantStatus: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(logger.Nop(), "finsentiment", "test", tt.checks)
			rec := httptest.NewRecorder()
			h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			s := decode(t, rec)
			assert.Equal(t, tt.wantStatus, s.Status)
			assert.Equal(t, "finsentiment", s.Service)
			assert.Len(t, s.Checks, len(tt.checks))
		})
	}
}

func TestHandleReadiness(t *testing.T) {
	h := New(logger.Nop(), "finsentiment", "test", map[string]Checker{"redis": ok(), "clickhouse": down(), "unset": nil})
	rec := httptest.NewRecorder()
	h.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	s := decode(t, rec)
	assert.Equal(t, "unhealthy", s.Status)
	require.Contains(t, s.Checks, "clickhouse")
	assert.Contains(t, s.Checks["clickhouse"].Error, "service unavailable")
	assert.NotContains(t, s.Checks, "unset")
}

func TestHandleLiveness(t *testing.T) {
	h := New(logger.Nop(), "finsentiment", "test", map[string]Checker{"redis": down()})
	rec := httptest.NewRecorder()
	h.HandleLiveness(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
