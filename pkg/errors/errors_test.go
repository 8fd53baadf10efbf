package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantType   ErrorType
		wantStatus int
	}{
		{"validation", NewValidationError("bad", nil), ErrorTypeValidation, http.StatusBadRequest},
		{"authentication", NewAuthenticationError("no"), ErrorTypeAuthentication, http.StatusUnauthorized},
		{"not found", NewNotFoundError("gone"), ErrorTypeNotFound, http.StatusNotFound},
		{"internal", NewInternalError("oops", stderrors.New("cause")), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
		})
	}
}

func TestAsAndIsType(t *testing.T) {
	cause := stderrors.New("cause")
	wrapped := fmt.Errorf("context: %w", NewInternalError("oops", cause))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorTypeInternal, appErr.Type)
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, IsType(wrapped, ErrorTypeInternal))
	assert.False(t, IsType(wrapped, ErrorTypeValidation))

	_, ok = As(cause)
	assert.False(t, ok)
}

func TestAppError_Write(t *testing.T) {
	rec := httptest.NewRecorder()
	err := NewValidationError("title is required", map[string]interface{}{"field": "title"})

	require.NoError(t, err.Write(rec, "req-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, ErrorTypeValidation, body.Error.Type)
	assert.Equal(t, "title is required", body.Error.Message)
	assert.Equal(t, "title", body.Error.Details["field"])
	assert.Equal(t, "req-1", body.Error.RequestID)
	assert.NotEmpty(t, body.Error.Timestamp)
}

func TestAppError_Error(t *testing.T) {
	err := NewInternalError("Failed to count", stderrors.New("connection refused"))
	assert.Equal(t, "internal: Failed to count (connection refused)", err.Error())
}
