package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bolao-api/internal/middleware"
	"bolao-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Check(t *testing.T) {
	healthy := PingerFunc(func(ctx context.Context) error { return nil })
	broken := PingerFunc(func(ctx context.Context) error { return errors.New("down") })

	tests := []struct {
		name       string
		checks     map[string]Pinger
		wantStatus int
		wantBody   string
	}{
		{name: "no dependencies", checks: nil, wantStatus: http.StatusOK, wantBody: "healthy"},
		{name: "all healthy", checks: map[string]Pinger{"database": healthy, "redis": healthy}, wantStatus: http.StatusOK, wantBody: "healthy"},
		{name: "redis down", checks: map[string]Pinger{"database": healthy, "redis": broken}, wantStatus: http.StatusServiceUnavailable, wantBody: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthHandler(tt.checks, logger.NewNop()).Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body.Status)
			assert.Equal(t, "bolao-api", body.Service)
			assert.Len(t, body.Checks, len(tt.checks))
		})
	}
}

func TestAuthHandler_GetProfile(t *testing.T) {
	h := NewAuthHandler(logger.NewNop())

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, caller))
		rec := httptest.NewRecorder()
		h.GetProfile(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body UserProfileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, caller, body.User)
	})

	t.Run("no user in context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.GetProfile(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
