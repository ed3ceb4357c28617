// Package reports is the hazard report repository: validation, the
// forward-only status lifecycle, listing, stats, and the append-only
// audit trail. Every accepted mutation is announced on the fan-out.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/oceanguard/hazard-server/internal/authz"
	"github.com/oceanguard/hazard-server/internal/geocode"
	"github.com/oceanguard/hazard-server/internal/media"
	"github.com/oceanguard/hazard-server/internal/models"
	"github.com/oceanguard/hazard-server/internal/observability"
	"github.com/oceanguard/hazard-server/internal/realtime"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100

	geocodeTimeout = 3 * time.Second
	uploadTimeout  = 30 * time.Second

	mediaFolder = "hazard-media"
)

// SubmitResult is the outcome of a submission. MediaPending is set when
// an attachment upload is still running in the background; Warning
// surfaces partial success (the report exists, the media may not).
type SubmitResult struct {
	Report       *models.HazardReport `json:"report"`
	MediaPending bool                 `json:"media_pending,omitempty"`
	Warning      string               `json:"warning,omitempty"`
}

// Service handles hazard report business logic.
type Service struct {
	store    Store
	fanout   realtime.Publisher
	geocoder geocode.Geocoder
	uploader media.Uploader
	metrics  *observability.Metrics
	logger   *zap.SugaredLogger
	clock    clockwork.Clock
}

// NewService creates a report service. geocoder and uploader may be nil,
// disabling location enrichment and media attachments respectively.
func NewService(store Store, fanout realtime.Publisher, geocoder geocode.Geocoder,
	uploader media.Uploader, metrics *observability.Metrics, logger *zap.SugaredLogger) *Service {
	return &Service{
		store:    store,
		fanout:   fanout,
		geocoder: geocoder,
		uploader: uploader,
		metrics:  metrics,
		logger:   logger,
		clock:    clockwork.NewRealClock(),
	}
}

// SetClock swaps the time source. Pass nil to reset to real time.
func (s *Service) SetClock(c clockwork.Clock) {
	if c == nil {
		s.clock = clockwork.NewRealClock()
		return
	}
	s.clock = c
}

// Submit validates a draft and creates a pending report owned by user.
// The row is visible to a subsequent List by the same caller before any
// fan-out notification lands (read-your-writes). Media, when present,
// is uploaded asynchronously and never blocks or fails the submission.
func (s *Service) Submit(ctx context.Context, user *models.User, draft models.ReportDraft, mediaData []byte, mediaFilename string) (*SubmitResult, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if !authz.IsOperationAllowed(user.Role, authz.OpSubmitReport) {
		return nil, ErrForbidden
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	report := &models.HazardReport{
		ID:           uuid.New(),
		ReporterID:   user.ID,
		HazardType:   draft.HazardType,
		Severity:     draft.Severity,
		Latitude:     draft.Latitude,
		Longitude:    draft.Longitude,
		Description:  draft.Description,
		LocationName: s.resolveLocationName(ctx, draft.Latitude, draft.Longitude),
		Status:       models.StatusPending,
		CreatedAt:    s.clock.Now().UTC(),
	}

	if err := s.store.Insert(ctx, report); err != nil {
		return nil, err
	}
	s.metrics.ReportsSubmitted.Inc()

	s.recordAudit(ctx, &models.AuditEntry{
		ReportID: report.ID,
		ActorID:  user.ID,
		Action:   "submitted",
		ToStatus: models.StatusPending,
	})

	s.publish("created", report.ID)

	result := &SubmitResult{Report: report}
	if len(mediaData) > 0 {
		if s.uploader == nil {
			result.Warning = "media storage unavailable, report created without attachment"
		} else {
			result.MediaPending = true
			go s.uploadMedia(report.ID, mediaFilename, mediaData)
		}
	}

	s.logger.Infow("Hazard report submitted",
		"id", report.ID,
		"hazard_type", report.HazardType,
		"severity", report.Severity,
		"reporter", user.ID,
		"media_pending", result.MediaPending,
	)
	return result, nil
}

// TransitionStatus advances a report through its lifecycle. Only
// officials and analysts may transition; the ordering rule itself is
// enforced atomically in the store.
func (s *Service) TransitionStatus(ctx context.Context, user *models.User, id uuid.UUID, to models.ReportStatus) (*models.HazardReport, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if !authz.IsOperationAllowed(user.Role, authz.OpTransitionStatus) {
		return nil, ErrForbidden
	}
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}

	before, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	report, err := s.store.UpdateStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}
	s.metrics.StatusTransitions.WithLabelValues(string(to)).Inc()

	s.recordAudit(ctx, &models.AuditEntry{
		ReportID:   report.ID,
		ActorID:    user.ID,
		Action:     "status_changed",
		FromStatus: before.Status,
		ToStatus:   to,
	})

	s.publish("status_changed", report.ID)

	s.logger.Infow("Report status transitioned",
		"id", report.ID,
		"from", before.Status,
		"to", to,
		"actor", user.ID,
	)
	return report, nil
}

// List returns reports newest first. Limit defaults to the dashboard
// page size and is capped at the map page size.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.HazardReport, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	return s.store.List(ctx, filter)
}

// Stats recomputes the dashboard rollup from the full report set.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	return s.store.Counts(ctx)
}

// Audit returns the append-only history of a report, oldest first.
func (s *Service) Audit(ctx context.Context, user *models.User, reportID uuid.UUID) ([]models.AuditEntry, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if _, err := s.store.Get(ctx, reportID); err != nil {
		return nil, err
	}
	return s.store.ListAudit(ctx, reportID)
}

// resolveLocationName reverse-geocodes best-effort; any failure falls
// back to the raw coordinates.
func (s *Service) resolveLocationName(ctx context.Context, lat, lon float64) string {
	fallback := fmt.Sprintf("%.6f, %.6f", lat, lon)
	if s.geocoder == nil {
		return fallback
	}

	geoCtx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	name, err := s.geocoder.ReverseGeocode(geoCtx, lat, lon)
	if err != nil {
		s.metrics.GeocodeLookups.WithLabelValues("error").Inc()
		s.logger.Warnw("Reverse geocoding failed, using raw coordinates", "error", err)
		return fallback
	}
	if name == "" {
		s.metrics.GeocodeLookups.WithLabelValues("empty").Inc()
		return fallback
	}
	s.metrics.GeocodeLookups.WithLabelValues("success").Inc()
	return name
}

// uploadMedia runs detached from the submitting request: an in-flight
// submission is never cancelled by the caller navigating away.
func (s *Service) uploadMedia(reportID uuid.UUID, filename string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	name := fmt.Sprintf("%s-%s", reportID, filename)
	url, err := s.uploader.UploadBytes(ctx, mediaFolder, name, data)
	if err != nil {
		s.metrics.MediaUploads.WithLabelValues("error").Inc()
		s.logger.Warnw("Media upload failed, report kept without attachment",
			"report", reportID, "error", err)
		return
	}

	if err := s.store.SetMediaURL(ctx, reportID, url); err != nil {
		s.metrics.MediaUploads.WithLabelValues("error").Inc()
		s.logger.Errorw("Failed to attach media URL", "report", reportID, "error", err)
		return
	}
	s.metrics.MediaUploads.WithLabelValues("success").Inc()

	s.publish("media_attached", reportID)
}

func (s *Service) recordAudit(ctx context.Context, e *models.AuditEntry) {
	e.ID = uuid.New()
	e.CreatedAt = s.clock.Now().UTC()
	if err := s.store.InsertAudit(ctx, e); err != nil {
		// The primary mutation already succeeded; losing one audit row is
		// logged loudly rather than failing the request.
		s.logger.Errorw("Failed to record audit entry", "report", e.ReportID, "error", err)
	}
}

func (s *Service) publish(event string, id uuid.UUID) {
	s.metrics.FanoutNotifications.WithLabelValues(realtime.TopicReports).Inc()
	s.fanout.Publish(context.Background(), realtime.Notification{
		Topic:    realtime.TopicReports,
		Event:    event,
		EntityID: id.String(),
	})
}

func validateDraft(d models.ReportDraft) error {
	if !d.HazardType.Valid() {
		return fmt.Errorf("%w: unknown hazard type %q", ErrValidation, d.HazardType)
	}
	if !d.Severity.Valid() {
		return fmt.Errorf("%w: unknown severity %q", ErrValidation, d.Severity)
	}
	if d.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if d.Latitude < -90 || d.Latitude > 90 {
		return fmt.Errorf("%w: latitude out of range", ErrValidation)
	}
	if d.Longitude < -180 || d.Longitude > 180 {
		return fmt.Errorf("%w: longitude out of range", ErrValidation)
	}
	return nil
}
