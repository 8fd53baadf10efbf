package handler

import (
	"encoding/json"
	"net/http"

	"bolao-api/internal/middleware"
	"bolao-api/pkg/errors"
	"bolao-api/pkg/logger"
)

// writeJSON encodes payload with the given status
func writeJSON(w http.ResponseWriter, status int, payload interface{}, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeErrorResponse writes the error envelope for appErr
func writeErrorResponse(w http.ResponseWriter, r *http.Request, appErr *errors.AppError, log *logger.Logger) {
	requestID := middleware.GetRequestID(r.Context())
	entry := log.WithError(appErr).WithField("request_id", requestID)
	if appErr.Type == errors.ErrorTypeInternal {
		entry.Error("Request error")
	} else {
		entry.Warn("Request error")
	}

	if err := appErr.Write(w, requestID); err != nil {
		log.WithError(err).Error("Failed to encode error response")
	}
}

// writeError maps err to an AppError, treating anything unrecognised as internal
func writeError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	if appErr, ok := errors.As(err); ok {
		writeErrorResponse(w, r, appErr, log)
		return
	}
	writeErrorResponse(w, r, errors.NewInternalError("Internal server error", err), log)
}
