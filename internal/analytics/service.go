package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/oceanguard/hazard-server/internal/models"
	"go.uber.org/zap"
)

const (
	// summaryWindow bounds which records feed the live summary.
	summaryWindow = 24 * time.Hour
	// summarySample is how many recent records the rollup reads.
	summarySample = 200

	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// Service serves social-analytics views. It keeps the last successfully
// computed summary so a store outage degrades to stale data instead of
// a blank view.
type Service struct {
	store  Store
	logger *zap.SugaredLogger
	clock  clockwork.Clock

	mu       sync.RWMutex
	lastGood *models.SocialSummary
}

// NewService creates an analytics service.
func NewService(store Store, logger *zap.SugaredLogger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		clock:  clockwork.NewRealClock(),
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

// Recent returns the newest social-signal records, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.SocialAnalytics, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.store.ListRecent(ctx, limit)
}

// Summary returns the social-signal rollup. cached is true when the
// store was unavailable and the last-known-good value is served.
func (s *Service) Summary(ctx context.Context) (models.SocialSummary, bool, error) {
	summary, err := s.computeSummary(ctx)
	if err == nil {
		return summary, false, nil
	}

	s.mu.RLock()
	cached := s.lastGood
	s.mu.RUnlock()

	if cached != nil {
		s.logger.Warnw("Analytics store unavailable, serving cached summary", "error", err)
		return *cached, true, nil
	}
	return models.SocialSummary{}, false, err
}

// RefreshSummary recomputes and caches the rollup. Scheduled via cron;
// also safe to call ad hoc.
func (s *Service) RefreshSummary(ctx context.Context) error {
	_, err := s.computeSummary(ctx)
	if err != nil {
		s.logger.Warnw("Summary refresh failed, keeping previous snapshot", "error", err)
	}
	return err
}

func (s *Service) computeSummary(ctx context.Context) (models.SocialSummary, error) {
	records, err := s.store.ListRecent(ctx, summarySample)
	if err != nil {
		return models.SocialSummary{}, err
	}

	summary := SummarizeSocialSignals(records, summaryWindow, s.clock.Now())

	s.mu.Lock()
	s.lastGood = &summary
	s.mu.Unlock()
	return summary, nil
}
