// Package analytics derives summary statistics from hazard reports and
// the external social-signal feed. Everything here is recomputed from
// the underlying records, never incrementally patched, so a wholesale
// replacement of the set (reconnect, reingest) cannot cause drift.
package analytics

import (
	"time"

	"github.com/oceanguard/hazard-server/internal/models"
)

// ComputeStats derives the dashboard rollup from a report set.
func ComputeStats(reports []models.HazardReport) models.Stats {
	var stats models.Stats
	for _, r := range reports {
		stats.Total++
		if r.Status == models.StatusPending {
			stats.Pending++
		}
		if r.Status == models.StatusVerified {
			stats.Verified++
		}
		if r.Severity == models.SeverityCritical {
			stats.Critical++
		}
	}
	return stats
}

// SummarizeSocialSignals rolls up records newer than now-window. A
// window <= 0 includes everything. AverageSentiment covers only scored
// records; with no scored records it is 0 by convention, not an error.
func SummarizeSocialSignals(records []models.SocialAnalytics, window time.Duration, now time.Time) models.SocialSummary {
	var summary models.SocialSummary
	var scoredSum float64
	var scored int

	cutoff := time.Time{}
	if window > 0 {
		cutoff = now.Add(-window)
	}

	for _, rec := range records {
		if !cutoff.IsZero() && rec.CreatedAt.Before(cutoff) {
			continue
		}
		summary.TopicCount++
		summary.TotalMentions += rec.MentionCount
		if rec.SentimentScore != nil {
			scoredSum += *rec.SentimentScore
			scored++
		}
	}

	if scored > 0 {
		summary.AverageSentiment = scoredSum / float64(scored)
	}
	return summary
}

// Band is the display classification of a sentiment score.
type Band string

const (
	BandPositive Band = "Positive"
	BandNeutral  Band = "Neutral"
	BandNegative Band = "Negative"
)

// SentimentBand classifies a score for display. The boundary at exactly
// 0 is Neutral.
func SentimentBand(score float64) Band {
	switch {
	case score >= 0.5:
		return BandPositive
	case score >= 0:
		return BandNeutral
	default:
		return BandNegative
	}
}
