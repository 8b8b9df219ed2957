// Package handler internal/infrastructure/handler/auth_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eurofx/rate-service/internal/application/service"
	"github.com/eurofx/rate-service/internal/domain/entity"
	"github.com/eurofx/rate-service/internal/infrastructure/logger"
	"github.com/eurofx/rate-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// AuthHandler handles HTTP requests for token issuance
type AuthHandler struct {
	service *service.AuthService
	logger  logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *service.AuthService, log logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &AuthHandler{
		service: service,
		logger:  log,
	}
}

// IssueToken handles the credential exchange for a bearer token
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Malformed token request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"Request body must be JSON with username and password",
			http.StatusBadRequest, requestID)
		return
	}

	token, expiresAt, err := h.service.IssueToken(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidCredentials) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			if encErr := json.NewEncoder(w).Encode(map[string]string{
				"error": "Invalid credentials",
			}); encErr != nil {
				h.logger.Error("Failed to encode rejection", map[string]interface{}{
					"request_id": requestID,
					"error":      encErr.Error(),
				})
			}
			return
		}

		h.logger.Error("Token issuance failed", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred. Please try again later.",
			http.StatusInternalServerError, requestID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}); err != nil {
		h.logger.Error("Failed to encode token response", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

// RegisterRoutes registers the auth handler routes
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/token", h.IssueToken).Methods("POST")

	h.logger.Info("Auth routes registered", map[string]interface{}{
		"routes": []string{
			"POST /auth/token",
		},
	})
}
