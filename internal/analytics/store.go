package analytics

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oceanguard/hazard-server/internal/models"
)

// Store persists ingested social-signal records. Records are immutable
// time-series rows once written.
type Store interface {
	Insert(ctx context.Context, rec *models.SocialAnalytics) error
	ListRecent(ctx context.Context, limit int) ([]models.SocialAnalytics, error)
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed social-analytics store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, rec *models.SocialAnalytics) error {
	query := `
		INSERT INTO social_analytics (id, keyword, mention_count, sentiment_score, location, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(ctx, query,
		rec.ID, rec.Keyword, rec.MentionCount, rec.SentimentScore, rec.Location, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert social analytics: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]models.SocialAnalytics, error) {
	query := `
		SELECT id, keyword, mention_count, sentiment_score, COALESCE(location, ''), created_at
		FROM social_analytics
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list social analytics: %w", err)
	}
	defer rows.Close()

	var out []models.SocialAnalytics
	for rows.Next() {
		var rec models.SocialAnalytics
		if err := rows.Scan(&rec.ID, &rec.Keyword, &rec.MentionCount,
			&rec.SentimentScore, &rec.Location, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan social analytics: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MemoryStore is an in-memory Store for demo mode and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.SocialAnalytics
}

// NewMemoryStore creates an empty in-memory social-analytics store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(_ context.Context, rec *models.SocialAnalytics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *rec)
	return nil
}

func (s *MemoryStore) ListRecent(_ context.Context, limit int) ([]models.SocialAnalytics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SocialAnalytics, len(s.records))
	copy(out, s.records)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
