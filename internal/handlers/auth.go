package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/oceanguard/hazard-server/internal/auth"
	"github.com/oceanguard/hazard-server/internal/authz"
	"github.com/oceanguard/hazard-server/internal/middleware"
	"go.uber.org/zap"
)

// AuthHandler handles authentication HTTP endpoints
type AuthHandler struct {
	authSvc *auth.Service
	logger  *zap.SugaredLogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *auth.Service, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.authSvc.LoginWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authSvc.RegisterWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"user":    user,
		"message": "Account created, verification pending",
	})
}

// StartPhone handles POST /api/v1/auth/phone/start
func (h *AuthHandler) StartPhone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authSvc.StartPhoneLogin(r.Context(), req.Phone); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "If the number is reachable, a code has been sent",
	})
}

// VerifyPhone handles POST /api/v1/auth/phone/verify
func (h *AuthHandler) VerifyPhone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.authSvc.VerifyOtp(r.Context(), req.Phone, req.Code)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	sessionID := middleware.SessionID(r.Context())

	if err := h.authSvc.Logout(r.Context(), sessionID, user); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"views": authz.AllowedViews(user.Role),
	})
}
