package reports

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/oceanguard/hazard-server/internal/analytics"
	"github.com/oceanguard/hazard-server/internal/models"
)

// MemoryStore is an in-memory Store used in demo mode (no DATABASE_URL
// configured) and in tests. Semantics match PostgresStore, including the
// transactional forward-only status guard.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]*models.HazardReport
	audit   []models.AuditEntry
}

// NewMemoryStore creates an empty in-memory report store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[uuid.UUID]*models.HazardReport)}
}

func (s *MemoryStore) Insert(_ context.Context, r *models.HazardReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.reports[r.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*models.HazardReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, to models.ReportStatus) (*models.HazardReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := ValidateTransition(r.Status, to); err != nil {
		return nil, err
	}
	r.Status = to
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) SetMediaURL(_ context.Context, id uuid.UUID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reports[id]
	if !ok {
		return ErrNotFound
	}
	if r.MediaURL == "" {
		r.MediaURL = url
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]models.HazardReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.HazardReport, 0, len(s.reports))
	for _, r := range s.reports {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && r.Severity != filter.Severity {
			continue
		}
		if filter.HazardType != "" && r.HazardType != filter.HazardType {
			continue
		}
		out = append(out, *r)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Counts recomputes the rollup from the full set, mirroring the SQL
// aggregate the Postgres store runs.
func (s *MemoryStore) Counts(_ context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.HazardReport, 0, len(s.reports))
	for _, r := range s.reports {
		all = append(all, *r)
	}
	return analytics.ComputeStats(all), nil
}

func (s *MemoryStore) InsertAudit(_ context.Context, e *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, *e)
	return nil
}

func (s *MemoryStore) ListAudit(_ context.Context, reportID uuid.UUID) ([]models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AuditEntry
	for _, e := range s.audit {
		if e.ReportID == reportID {
			out = append(out, e)
		}
	}
	return out, nil
}
