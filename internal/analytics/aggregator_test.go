package analytics

import (
	"testing"
	"time"

	"github.com/oceanguard/hazard-server/internal/models"
	"github.com/stretchr/testify/assert"
)

func score(v float64) *float64 { return &v }

func TestComputeStats_EmptySet(t *testing.T) {
	assert.Equal(t, models.Stats{}, ComputeStats(nil))
}

func TestComputeStats_SingleCriticalReport(t *testing.T) {
	stats := ComputeStats([]models.HazardReport{
		{Status: models.StatusPending, Severity: models.SeverityCritical},
	})
	assert.Equal(t, models.Stats{Total: 1, Pending: 1, Critical: 1}, stats)
}

func TestComputeStats_MixedSet(t *testing.T) {
	stats := ComputeStats([]models.HazardReport{
		{Status: models.StatusPending, Severity: models.SeverityLow},
		{Status: models.StatusVerified, Severity: models.SeverityCritical},
		{Status: models.StatusResolved, Severity: models.SeverityHigh},
		{Status: models.StatusVerified, Severity: models.SeverityMedium},
	})
	assert.Equal(t, models.Stats{Total: 4, Pending: 1, Verified: 2, Critical: 1}, stats)
}

func TestSummarizeSocialSignals_NoScoredRecordsYieldsZeroAverage(t *testing.T) {
	now := time.Now()
	summary := SummarizeSocialSignals([]models.SocialAnalytics{
		{Keyword: "tsunami", MentionCount: 12, CreatedAt: now},
		{Keyword: "cyclone", MentionCount: 5, CreatedAt: now},
	}, 0, now)

	assert.Equal(t, 17, summary.TotalMentions)
	assert.Equal(t, 2, summary.TopicCount)
	assert.Equal(t, 0.0, summary.AverageSentiment)
}

func TestSummarizeSocialSignals_AveragesOnlyScoredRecords(t *testing.T) {
	now := time.Now()
	summary := SummarizeSocialSignals([]models.SocialAnalytics{
		{Keyword: "tsunami", MentionCount: 3, SentimentScore: score(0.8), CreatedAt: now},
		{Keyword: "erosion", MentionCount: 4, SentimentScore: score(-0.2), CreatedAt: now},
		{Keyword: "cyclone", MentionCount: 9, CreatedAt: now}, // unscored
	}, 0, now)

	assert.Equal(t, 16, summary.TotalMentions)
	assert.Equal(t, 3, summary.TopicCount)
	assert.InDelta(t, 0.3, summary.AverageSentiment, 1e-9)
}

func TestSummarizeSocialSignals_WindowExcludesOldRecords(t *testing.T) {
	now := time.Now()
	summary := SummarizeSocialSignals([]models.SocialAnalytics{
		{Keyword: "tsunami", MentionCount: 3, CreatedAt: now.Add(-time.Hour)},
		{Keyword: "stale", MentionCount: 100, CreatedAt: now.Add(-48 * time.Hour)},
	}, 24*time.Hour, now)

	assert.Equal(t, 3, summary.TotalMentions)
	assert.Equal(t, 1, summary.TopicCount)
}

func TestSentimentBand_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
	}{
		{0.9, BandPositive},
		{0.5, BandPositive},
		{0.49, BandNeutral},
		{0, BandNeutral},
		{-0.01, BandNegative},
		{-1, BandNegative},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SentimentBand(tt.score), "score %v", tt.score)
	}
}
