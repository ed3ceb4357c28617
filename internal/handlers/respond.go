// Package handlers contains HTTP request handlers for the OceanGuard API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oceanguard/hazard-server/internal/auth"
	"github.com/oceanguard/hazard-server/internal/reports"
)

var (
	errBadBody       = errors.New("invalid request body")
	errMediaTooLarge = errors.New("media attachment too large")
)

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps domain errors onto HTTP statuses. Unknown
// errors surface as 503: the caller's request was valid, the backing
// store was not reachable.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reports.ErrValidation), errors.Is(err, auth.ErrValidation),
		errors.Is(err, auth.ErrInvalidPhone):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, reports.ErrUnauthenticated), errors.Is(err, auth.ErrNoSession),
		errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrOtpInvalid),
		errors.Is(err, auth.ErrOtpExpired):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, reports.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, reports.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, reports.ErrInvalidTransition), errors.Is(err, auth.ErrEmailTaken):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	}
}
