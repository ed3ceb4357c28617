package handlers

import (
	"net/http"
	"strconv"

	"github.com/oceanguard/hazard-server/internal/analytics"
	"github.com/oceanguard/hazard-server/internal/authz"
	"github.com/oceanguard/hazard-server/internal/middleware"
	"github.com/oceanguard/hazard-server/internal/models"
	"go.uber.org/zap"
)

// AnalyticsHandler handles social-signal analytics HTTP endpoints
type AnalyticsHandler struct {
	analyticsSvc *analytics.Service
	logger       *zap.SugaredLogger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(as *analytics.Service, logger *zap.SugaredLogger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: as, logger: logger}
}

func (h *AnalyticsHandler) requireAnalyticsView(w http.ResponseWriter, r *http.Request) bool {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return false
	}
	if !authz.IsViewAllowed(user.Role, authz.ViewAnalytics) {
		respondError(w, http.StatusForbidden, "Analytics view not available for this role")
		return false
	}
	return true
}

type socialRecord struct {
	models.SocialAnalytics
	Band analytics.Band `json:"sentiment_band,omitempty"`
}

// Recent handles GET /api/v1/analytics
func (h *AnalyticsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	if !h.requireAnalyticsView(w, r) {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.analyticsSvc.Recent(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]socialRecord, 0, len(records))
	for _, rec := range records {
		sr := socialRecord{SocialAnalytics: rec}
		if rec.SentimentScore != nil {
			sr.Band = analytics.SentimentBand(*rec.SentimentScore)
		}
		out = append(out, sr)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"records": out,
		"count":   len(out),
	})
}

// Summary handles GET /api/v1/analytics/summary. A stale rollup is
// served with "cached": true when the store is unreachable.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if !h.requireAnalyticsView(w, r) {
		return
	}

	summary, cached, err := h.analyticsSvc.Summary(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"summary": summary,
		"cached":  cached,
	})
}
