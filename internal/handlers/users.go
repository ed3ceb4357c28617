package handlers

import (
	"net/http"
	"strconv"

	"github.com/oceanguard/hazard-server/internal/auth"
	"github.com/oceanguard/hazard-server/internal/authz"
	"github.com/oceanguard/hazard-server/internal/middleware"
	"go.uber.org/zap"
)

// UserHandler serves the user-management view.
type UserHandler struct {
	authSvc *auth.Service
	logger  *zap.SugaredLogger
}

// NewUserHandler creates a new user handler
func NewUserHandler(authSvc *auth.Service, logger *zap.SugaredLogger) *UserHandler {
	return &UserHandler{authSvc: authSvc, logger: logger}
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return
	}
	if !authz.IsViewAllowed(user.Role, authz.ViewUsers) {
		respondError(w, http.StatusForbidden, "User management not available for this role")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	users, err := h.authSvc.ListUsers(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}
