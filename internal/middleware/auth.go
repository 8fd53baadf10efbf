package middleware

import (
	"context"
	"net/http"
	"time"

	"bolao-api/internal/domain"
	"bolao-api/internal/service"
	"bolao-api/pkg/errors"
	"bolao-api/pkg/logger"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// UserContextKey is the key for user information in context
	UserContextKey ContextKey = "user"
	// IdentityContextKey is the key for the resolved caller identity in context
	IdentityContextKey ContextKey = "identity"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// Auth creates an authentication middleware. Requests without a verified
// identity are rejected with 401, or 500 when identity resolution failed.
func Auth(authService service.AuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity := authService.ResolveIdentity(ctx, r.Header.Get("Authorization"))

			switch identity.Status {
			case domain.IdentityFailed:
				writeErrorResponse(w, r, errors.NewInternalError("Failed to verify credentials", identity.Err), logger)
				return
			case domain.IdentityUnauthenticated:
				writeErrorResponse(w, r, errors.NewAuthenticationError("Invalid or expired token"), logger)
				return
			}

			ctx = context.WithValue(ctx, IdentityContextKey, identity)
			ctx = context.WithValue(ctx, UserContextKey, identity.User)

			logger.WithField("user_id", identity.User.Sub).Debug("User authenticated successfully")

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the caller identity without rejecting the request.
// Handlers read the tagged result with GetIdentity.
func OptionalAuth(authService service.AuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity := authService.ResolveIdentity(ctx, r.Header.Get("Authorization"))

			ctx = context.WithValue(ctx, IdentityContextKey, identity)
			if identity.Status == domain.IdentityAuthenticated {
				ctx = context.WithValue(ctx, UserContextKey, identity.User)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the authenticated user stored by Auth or OptionalAuth
func GetUser(ctx context.Context) (*domain.UserProfile, bool) {
	user, ok := ctx.Value(UserContextKey).(*domain.UserProfile)
	return user, ok && user != nil
}

// GetIdentity returns the identity stored by OptionalAuth. A request that never
// passed through an auth middleware is unauthenticated.
func GetIdentity(ctx context.Context) domain.Identity {
	if identity, ok := ctx.Value(IdentityContextKey).(domain.Identity); ok {
		return identity
	}
	return domain.Unauthenticated()
}

// GetRequestID returns the request ID stored by RequestID
func GetRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(RequestIDContextKey).(string)
	return requestID
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs one line per request with its status and latency
func RequestLogger(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			entry := logger.WithFields(map[string]interface{}{
				"request_id":  GetRequestID(r.Context()),
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			})

			switch {
			case ww.Status() >= http.StatusInternalServerError:
				entry.Error("Request completed")
			case ww.Status() >= http.StatusBadRequest:
				entry.Warn("Request completed")
			default:
				entry.Info("Request completed")
			}
		})
	}
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, r *http.Request, appErr *errors.AppError, logger *logger.Logger) {
	requestID := GetRequestID(r.Context())
	logger.WithError(appErr).WithField("request_id", requestID).Warn("Request rejected")

	if err := appErr.Write(w, requestID); err != nil {
		logger.WithError(err).Error("Failed to encode error response")
	}
}
