package reports

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oceanguard/hazard-server/internal/models"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed report store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const reportColumns = `id, reporter_id, hazard_type, severity, latitude, longitude,
	description, location_name, COALESCE(media_url, ''), status, created_at`

func (s *PostgresStore) Insert(ctx context.Context, r *models.HazardReport) error {
	query := `
		INSERT INTO hazard_reports (id, reporter_id, hazard_type, severity, latitude, longitude, description, location_name, media_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11)
	`

	_, err := s.db.Exec(ctx, query,
		r.ID, r.ReporterID, r.HazardType, r.Severity,
		r.Latitude, r.Longitude, r.Description, r.LocationName,
		r.MediaURL, r.Status, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert hazard report: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.HazardReport, error) {
	query := `SELECT ` + reportColumns + ` FROM hazard_reports WHERE id = $1`

	r, err := scanReport(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get hazard report: %w", err)
	}
	return r, nil
}

// UpdateStatus locks the row, validates the lifecycle ordering, and
// applies the change in one transaction so concurrent transitions
// cannot interleave into a backward move.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, to models.ReportStatus) (*models.HazardReport, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback(ctx)

	var current models.ReportStatus
	err = tx.QueryRow(ctx, `SELECT status FROM hazard_reports WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock hazard report: %w", err)
	}

	if err := ValidateTransition(current, to); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx,
		`UPDATE hazard_reports SET status = $2 WHERE id = $1 RETURNING `+reportColumns, id, to)
	r, err := scanReport(row)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) SetMediaURL(ctx context.Context, id uuid.UUID, url string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE hazard_reports SET media_url = $2 WHERE id = $1 AND media_url IS NULL`, id, url)
	if err != nil {
		return fmt.Errorf("set media url: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]models.HazardReport, error) {
	query := `SELECT ` + reportColumns + ` FROM hazard_reports WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Severity != "" {
		args = append(args, filter.Severity)
		query += fmt.Sprintf(" AND severity = $%d", len(args))
	}
	if filter.HazardType != "" {
		args = append(args, filter.HazardType)
		query += fmt.Sprintf(" AND hazard_type = $%d", len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list hazard reports: %w", err)
	}
	defer rows.Close()

	var out []models.HazardReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hazard report: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Counts(ctx context.Context) (models.Stats, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'verified'),
			COUNT(*) FILTER (WHERE severity = 'critical')
		FROM hazard_reports
	`

	var stats models.Stats
	err := s.db.QueryRow(ctx, query).Scan(&stats.Total, &stats.Pending, &stats.Verified, &stats.Critical)
	if err != nil {
		return models.Stats{}, fmt.Errorf("count hazard reports: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) InsertAudit(ctx context.Context, e *models.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, report_id, actor_id, action, from_status, to_status, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)
	`

	_, err := s.db.Exec(ctx, query,
		e.ID, e.ReportID, e.ActorID, e.Action, string(e.FromStatus), string(e.ToStatus), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAudit(ctx context.Context, reportID uuid.UUID) ([]models.AuditEntry, error) {
	query := `
		SELECT id, report_id, actor_id, action, COALESCE(from_status, ''), COALESCE(to_status, ''), created_at
		FROM audit_log
		WHERE report_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.Query(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.ReportID, &e.ActorID, &e.Action,
			&e.FromStatus, &e.ToStatus, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanReport(row pgx.Row) (*models.HazardReport, error) {
	var r models.HazardReport
	err := row.Scan(&r.ID, &r.ReporterID, &r.HazardType, &r.Severity,
		&r.Latitude, &r.Longitude, &r.Description, &r.LocationName,
		&r.MediaURL, &r.Status, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
