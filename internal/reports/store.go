package reports

import (
	"context"

	"github.com/google/uuid"
	"github.com/oceanguard/hazard-server/internal/models"
)

// ListFilter narrows a report listing. Zero values mean "no filter".
type ListFilter struct {
	Status     models.ReportStatus
	Severity   models.Severity
	HazardType models.HazardType
	Limit      int
}

// Store is the persistence boundary for hazard reports and their audit
// trail. Reports are append-mostly: Insert, a guarded status update, and
// a one-shot media URL fill-in are the only writes. Nothing is deleted.
type Store interface {
	Insert(ctx context.Context, report *models.HazardReport) error
	Get(ctx context.Context, id uuid.UUID) (*models.HazardReport, error)
	// UpdateStatus applies the forward-only ordering atomically and
	// returns the updated report, ErrNotFound, or ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id uuid.UUID, to models.ReportStatus) (*models.HazardReport, error)
	// SetMediaURL fills in the media reference once the asynchronous
	// upload completes. A no-op if the URL was already set.
	SetMediaURL(ctx context.Context, id uuid.UUID, url string) error
	List(ctx context.Context, filter ListFilter) ([]models.HazardReport, error)
	// Counts recomputes dashboard stats from scratch on every call.
	Counts(ctx context.Context) (models.Stats, error)

	InsertAudit(ctx context.Context, entry *models.AuditEntry) error
	ListAudit(ctx context.Context, reportID uuid.UUID) ([]models.AuditEntry, error)
}
