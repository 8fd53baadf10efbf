package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bolao-api/internal/domain"
	apperrors "bolao-api/pkg/errors"
	"bolao-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthService for testing
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*domain.UserProfile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *MockAuthService) ResolveIdentity(ctx context.Context, authHeader string) domain.Identity {
	args := m.Called(ctx, authHeader)
	return args.Get(0).(domain.Identity)
}

func (m *MockAuthService) IssueToken(user *domain.UserProfile, ttl time.Duration) (string, error) {
	args := m.Called(user, ttl)
	return args.String(0), args.Error(1)
}

var testUser = &domain.UserProfile{Sub: "user-1", Name: "Ana"}

// captureHandler records the request context it was called with
type captureHandler struct {
	called bool
	ctx    context.Context
}

func (h *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		identity   domain.Identity
		wantStatus int
		wantType   apperrors.ErrorType
	}{
		{name: "authenticated", identity: domain.Authenticated(testUser), wantStatus: http.StatusOK},
		{name: "unauthenticated", identity: domain.Unauthenticated(), wantStatus: http.StatusUnauthorized, wantType: apperrors.ErrorTypeAuthentication},
		{name: "failed", identity: domain.IdentityError(errors.New("boom")), wantStatus: http.StatusInternalServerError, wantType: apperrors.ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authService := new(MockAuthService)
			authService.On("ResolveIdentity", mock.Anything, "Bearer token").Return(tt.identity)

			next := &captureHandler{}
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer token")
			rec := httptest.NewRecorder()

			Auth(authService, logger.NewNop())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			authService.AssertExpectations(t)

			if tt.wantStatus == http.StatusOK {
				require.True(t, next.called)
				user, ok := GetUser(next.ctx)
				require.True(t, ok)
				assert.Equal(t, testUser, user)
				return
			}

			assert.False(t, next.called)
			var body apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantType, body.Error.Type)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	tests := []struct {
		name     string
		identity domain.Identity
		wantUser bool
	}{
		{name: "authenticated", identity: domain.Authenticated(testUser), wantUser: true},
		{name: "unauthenticated", identity: domain.Unauthenticated()},
		{name: "failed", identity: domain.IdentityError(errors.New("boom"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authService := new(MockAuthService)
			authService.On("ResolveIdentity", mock.Anything, "").Return(tt.identity)

			next := &captureHandler{}
			rec := httptest.NewRecorder()
			OptionalAuth(authService, logger.NewNop())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pools", nil))

			require.True(t, next.called, "optional auth never rejects")
			assert.Equal(t, tt.identity.Status, GetIdentity(next.ctx).Status)
			_, ok := GetUser(next.ctx)
			assert.Equal(t, tt.wantUser, ok)
		})
	}
}

func TestGetIdentity_DefaultsToUnauthenticated(t *testing.T) {
	assert.Equal(t, domain.IdentityUnauthenticated, GetIdentity(context.Background()).Status)
}

func TestRequestID(t *testing.T) {
	t.Run("generates an id", func(t *testing.T) {
		next := &captureHandler{}
		rec := httptest.NewRecorder()
		RequestID(logger.NewNop())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rec.Header().Get("X-Request-ID")
		assert.NotEmpty(t, id)
		assert.Equal(t, id, GetRequestID(next.ctx))
	})

	t.Run("propagates an incoming id", func(t *testing.T) {
		next := &captureHandler{}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		RequestID(logger.NewNop())(next).ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "abc-123", GetRequestID(next.ctx))
	})
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	handler := RequestLogger(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com", "https://*.preview.example.com"}
	next := &captureHandler{}
	handler := CORS(cfg, logger.NewNop())(next)

	serve := func(method, origin, requestMethod string) *httptest.ResponseRecorder {
		next.called = false
		req := httptest.NewRequest(method, "/pools", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if requestMethod != "" {
			req.Header.Set("Access-Control-Request-Method", requestMethod)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("allowed origin", func(t *testing.T) {
		rec := serve(http.MethodGet, "https://app.example.com", "")

		assert.True(t, next.called)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "X-Request-ID", rec.Header().Get("Access-Control-Expose-Headers"))
		assert.Empty(t, rec.Header().Get("Access-Control-Max-Age"), "max age is only sent on preflight")
		assert.Contains(t, rec.Header().Values("Vary"), "Origin")
	})

	t.Run("origin match ignores case and trailing slash in config", func(t *testing.T) {
		h := CORS(&CORSConfig{AllowedOrigins: []string{"https://App.Example.com/"}}, logger.NewNop())(next)
		req := httptest.NewRequest(http.MethodGet, "/pools", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("subdomain pattern", func(t *testing.T) {
		rec := serve(http.MethodGet, "https://pr-12.preview.example.com", "")
		assert.Equal(t, "https://pr-12.preview.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

		rec = serve(http.MethodGet, "https://preview.example.com", "")
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

		rec = serve(http.MethodGet, "http://pr-12.preview.example.com", "")
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), "scheme must match")
	})

	t.Run("unknown origin", func(t *testing.T) {
		rec := serve(http.MethodGet, "https://evil.example.com", "")

		assert.True(t, next.called, "same handler runs, the browser enforces the missing headers")
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("no origin", func(t *testing.T) {
		rec := serve(http.MethodGet, "", "")

		assert.True(t, next.called)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		rec := serve(http.MethodOptions, "https://app.example.com", http.MethodPost)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, next.called)
		assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Authorization, Content-Type, X-Request-ID", rec.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("preflight from unknown origin", func(t *testing.T) {
		rec := serve(http.MethodOptions, "https://evil.example.com", http.MethodPost)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, next.called)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("plain OPTIONS reaches the router", func(t *testing.T) {
		serve(http.MethodOptions, "https://app.example.com", "")
		assert.True(t, next.called)
	})
}

func TestCORS_Wildcard(t *testing.T) {
	next := &captureHandler{}
	req := httptest.NewRequest(http.MethodGet, "/pools/count", nil)
	req.Header.Set("Origin", "https://anyone.example.org")

	t.Run("without credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		CORS(&CORSConfig{AllowedOrigins: []string{"*"}}, logger.NewNop())(next).ServeHTTP(rec, req)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("with credentials echoes the origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		CORS(&CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}, logger.NewNop())(next).ServeHTTP(rec, req)
		assert.Equal(t, "https://anyone.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
