package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oceanguard/hazard-server/internal/middleware"
	"github.com/oceanguard/hazard-server/internal/models"
	"github.com/oceanguard/hazard-server/internal/reports"
	"go.uber.org/zap"
)

// maxMediaBytes caps an uploaded attachment at 10 MiB.
const maxMediaBytes = 10 << 20

// ReportHandler handles hazard report HTTP endpoints
type ReportHandler struct {
	reportSvc *reports.Service
	logger    *zap.SugaredLogger
}

// NewReportHandler creates a new report handler
func NewReportHandler(rs *reports.Service, logger *zap.SugaredLogger) *ReportHandler {
	return &ReportHandler{reportSvc: rs, logger: logger}
}

// Submit handles POST /api/v1/reports. Accepts either a JSON draft or a
// multipart form with an optional "media" file part.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	draft, mediaData, mediaName, err := parseSubmission(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user := middleware.CurrentUser(r.Context())
	result, err := h.reportSvc.Submit(r.Context(), user, draft, mediaData, mediaName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.logger.Infow("Report submitted",
		"id", result.Report.ID,
		"hazard_type", result.Report.HazardType,
		"severity", result.Report.Severity,
		"media_pending", result.MediaPending,
	)
	respondJSON(w, http.StatusCreated, result)
}

func parseSubmission(r *http.Request) (models.ReportDraft, []byte, string, error) {
	var draft models.ReportDraft

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			return draft, nil, "", errBadBody
		}
		return draft, nil, "", nil
	}

	if err := r.ParseMultipartForm(maxMediaBytes); err != nil {
		return draft, nil, "", errBadBody
	}
	lat, _ := strconv.ParseFloat(r.FormValue("latitude"), 64)
	lon, _ := strconv.ParseFloat(r.FormValue("longitude"), 64)
	draft = models.ReportDraft{
		HazardType:  models.HazardType(r.FormValue("hazard_type")),
		Severity:    models.Severity(r.FormValue("severity")),
		Latitude:    lat,
		Longitude:   lon,
		Description: r.FormValue("description"),
	}

	file, header, err := r.FormFile("media")
	if err != nil {
		// No attachment is fine.
		return draft, nil, "", nil
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxMediaBytes+1))
	if err != nil {
		return draft, nil, "", errBadBody
	}
	if len(data) > maxMediaBytes {
		return draft, nil, "", errMediaTooLarge
	}
	return draft, data, header.Filename, nil
}

// List handles GET /api/v1/reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	filter := reports.ListFilter{
		Status:     models.ReportStatus(q.Get("status")),
		Severity:   models.Severity(q.Get("severity")),
		HazardType: models.HazardType(q.Get("hazard_type")),
		Limit:      limit,
	}

	list, err := h.reportSvc.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": list,
		"count":   len(list),
	})
}

// UpdateStatus handles PUT /api/v1/reports/{id}/status
func (h *ReportHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	var req struct {
		Status models.ReportStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user := middleware.CurrentUser(r.Context())
	report, err := h.reportSvc.TransitionStatus(r.Context(), user, id, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Stats handles GET /api/v1/reports/stats
func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reportSvc.Stats(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Audit handles GET /api/v1/reports/{id}/audit
func (h *ReportHandler) Audit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	user := middleware.CurrentUser(r.Context())
	entries, err := h.reportSvc.Audit(r.Context(), user, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
