package handler

import (
	"net/http"

	"bolao-api/internal/domain"
	"bolao-api/internal/middleware"
	"bolao-api/pkg/errors"
	"bolao-api/pkg/logger"
)

// AuthHandler handles authentication related requests
type AuthHandler struct {
	logger *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		logger: logger,
	}
}

// UserProfileResponse represents the user profile response
type UserProfileResponse struct {
	User    *domain.UserProfile `json:"user"`
	Success bool                `json:"success"`
	Message string              `json:"message"`
}

// GetProfile handles GET /me
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	// Get user from context (set by auth middleware)
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		h.logger.Error("User not found in context")
		writeErrorResponse(w, r, errors.NewAuthenticationError("User not authenticated"), h.logger)
		return
	}

	h.logger.WithField("user_id", user.Sub).Debug("Getting user profile")

	writeJSON(w, http.StatusOK, UserProfileResponse{
		User:    user,
		Success: true,
		Message: "User profile retrieved successfully",
	}, h.logger)
}
