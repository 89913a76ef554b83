package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reportd/internal/services"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		handler    func(*HealthHandler) http.HandlerFunc
		wantStatus int
		wantState  string
	}{
		{
			name:       "health",
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.HealthCheck },
			wantStatus: http.StatusOK,
			wantState:  "ok",
		},
		{
			name:       "ready",
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			wantStatus: http.StatusOK,
			wantState:  "ready",
		},
		{
			name:       "store down",
			pingErr:    errors.New("database is locked"),
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "not_ready",
		},
		{
			name:       "live",
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.LivenessCheck },
			wantStatus: http.StatusOK,
			wantState:  "alive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinger := new(services.MockPinger)
			pinger.On("Ping", mock.Anything).Return(tt.pingErr).Maybe()

			svc := services.NewHealthService("v1.0.0-test", "", pinger, "memory", discardLogger())
			h := NewHealthHandler(svc, discardLogger())

			rec := httptest.NewRecorder()
			tt.handler(h)(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body.Status)
			assert.Equal(t, "v1.0.0-test", body.Version)
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	svc := services.NewHealthService("v2.3.4", "2024-02-01T00:00:00Z", nil, "sqlite", discardLogger())
	h := NewHealthHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil).WithContext(context.Background()))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "v2.3.4", body["version"])
	assert.Equal(t, "sqlite", body["store"])
	assert.Equal(t, "2024-02-01T00:00:00Z", body["build_time"])
}
