package handler

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"bolao-api/internal/domain"
	"bolao-api/internal/middleware"
	"bolao-api/internal/service"
	"bolao-api/pkg/errors"
	"bolao-api/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// Business error messages shown to the caller
const (
	MessagePoolNotFound  = "Bolão não encontrado!"
	MessageAlreadyMember = "Você já participa desse bolão!"
)

// maxBodyBytes bounds request bodies read by the pool endpoints
const maxBodyBytes = 1 << 16

// PoolHandler handles pool HTTP requests
type PoolHandler struct {
	pools  service.PoolService
	logger *logger.Logger
}

// NewPoolHandler creates a new pool handler
func NewPoolHandler(pools service.PoolService, logger *logger.Logger) *PoolHandler {
	return &PoolHandler{
		pools:  pools,
		logger: logger,
	}
}

// RegisterRoutes mounts the pool endpoints on r
func (h *PoolHandler) RegisterRoutes(r chi.Router, authService service.AuthService) {
	r.Get("/pools/count", h.Count)

	r.With(middleware.OptionalAuth(authService, h.logger)).Post("/pools", h.Create)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authService, h.logger))

		r.Post("/pools/join", h.Join)
		r.Get("/pools", h.List)
		r.Get("/pools/{poolId}", h.Get)
	})
}

// Count handles GET /pools/count
func (h *PoolHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.pools.Count(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, domain.PoolCountResponse{Count: count}, h.logger)
}

// Create handles POST /pools
func (h *PoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePoolRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeErrorResponse(w, r, err, h.logger)
		return
	}
	if req.Title == nil {
		writeErrorResponse(w, r, errors.NewValidationError("title is required", map[string]interface{}{"field": "title"}), h.logger)
		return
	}

	code, err := h.pools.Create(r.Context(), *req.Title, middleware.GetIdentity(r.Context()))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, domain.CreatePoolResponse{Code: code}, h.logger)
}

// Join handles POST /pools/join
func (h *PoolHandler) Join(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, r, errors.NewAuthenticationError("User not authenticated"), h.logger)
		return
	}

	var req domain.JoinPoolRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeErrorResponse(w, r, err, h.logger)
		return
	}
	if req.Code == nil {
		writeErrorResponse(w, r, errors.NewValidationError("code is required", map[string]interface{}{"field": "code"}), h.logger)
		return
	}

	if err := h.pools.Join(r.Context(), *req.Code, user); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// List handles GET /pools
func (h *PoolHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, r, errors.NewAuthenticationError("User not authenticated"), h.logger)
		return
	}

	pools, err := h.pools.ListForCaller(r.Context(), user.Sub)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if pools == nil {
		pools = []domain.PoolSummary{}
	}

	writeJSON(w, http.StatusOK, domain.PoolListResponse{Pools: pools}, h.logger)
}

// Get handles GET /pools/{poolId}
func (h *PoolHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeErrorResponse(w, r, errors.NewAuthenticationError("User not authenticated"), h.logger)
		return
	}

	pool, err := h.pools.GetOne(r.Context(), chi.URLParam(r, "poolId"), user.Sub)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.PoolDetailResponse{Pool: pool}, h.logger)
}

// writeServiceError turns business rule failures into a 400 message body
func (h *PoolHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if !service.IsBusinessError(err) {
		writeError(w, r, err, h.logger)
		return
	}

	message := MessagePoolNotFound
	if stderrors.Is(err, service.ErrAlreadyMember) {
		message = MessageAlreadyMember
	}
	writeJSON(w, http.StatusBadRequest, domain.MessageResponse{Message: message}, h.logger)
}

// decodeBody decodes a JSON request body into dst
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) *errors.AppError {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.NewValidationError("Request body is required", nil)
		}
		return errors.NewValidationError("Invalid request body", map[string]interface{}{"reason": err.Error()})
	}
	return nil
}
