// Package models defines the data structures used across the application.
// These map to the OceanGuard PostgreSQL schema.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role determines which views and operations a user may reach.
type Role string

const (
	RoleCitizen  Role = "citizen"
	RoleOfficial Role = "official"
	RoleAnalyst  Role = "analyst"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleOfficial, RoleAnalyst:
		return true
	}
	return false
}

// HazardType classifies the observed coastal hazard.
type HazardType string

const (
	HazardTsunami         HazardType = "tsunami"
	HazardStormSurge      HazardType = "storm_surge"
	HazardHighWaves       HazardType = "high_waves"
	HazardCoastalFlooding HazardType = "coastal_flooding"
	HazardCyclone         HazardType = "cyclone"
	HazardErosion         HazardType = "erosion"
)

// Valid reports whether t is one of the known hazard types.
func (t HazardType) Valid() bool {
	switch t {
	case HazardTsunami, HazardStormSurge, HazardHighWaves,
		HazardCoastalFlooding, HazardCyclone, HazardErosion:
		return true
	}
	return false
}

// Severity is the reporter-assessed impact level, ordered low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the known severity levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ReportStatus is the lifecycle stage of a hazard report.
// Status only moves forward: pending → verified → responded → resolved.
type ReportStatus string

const (
	StatusPending   ReportStatus = "pending"
	StatusVerified  ReportStatus = "verified"
	StatusResponded ReportStatus = "responded"
	StatusResolved  ReportStatus = "resolved"
)

// Valid reports whether s is one of the known report statuses.
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusResponded, StatusResolved:
		return true
	}
	return false
}

// User is an authenticated identity. Exactly one of Email/Phone is set
// after a successful authentication; Role is assigned server-side.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	Role     Role      `json:"role"`
	Verified bool      `json:"verified"`
}

// HazardReport is a citizen/official-submitted record of an observed hazard.
// Immutable once created except for Status; never deleted.
type HazardReport struct {
	ID           uuid.UUID    `json:"id"`
	ReporterID   uuid.UUID    `json:"reporter_id"`
	HazardType   HazardType   `json:"hazard_type"`
	Severity     Severity     `json:"severity"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	Description  string       `json:"description"`
	LocationName string       `json:"location_name"`
	MediaURL     string       `json:"media_url,omitempty"`
	Status       ReportStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ReportDraft is the caller-supplied portion of a new hazard report.
// ID, CreatedAt, Status and ReporterID are assigned by the server.
type ReportDraft struct {
	HazardType  HazardType `json:"hazard_type"`
	Severity    Severity   `json:"severity"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Description string     `json:"description"`
}

// SocialAnalytics is an externally produced social-signal record,
// consumed read-only. SentimentScore is nil when unscored.
type SocialAnalytics struct {
	ID             uuid.UUID `json:"id"`
	Keyword        string    `json:"keyword"`
	MentionCount   int       `json:"mention_count"`
	SentimentScore *float64  `json:"sentiment_score"`
	Location       string    `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
}

// Stats is the dashboard rollup over hazard reports. Derived state:
// always recomputed from the report set, never hand-mutated.
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Verified int `json:"verified"`
	Critical int `json:"critical"`
}

// SocialSummary is the rollup over recent social-signal records.
type SocialSummary struct {
	TotalMentions    int     `json:"total_mentions"`
	TopicCount       int     `json:"topic_count"`
	AverageSentiment float64 `json:"average_sentiment"`
}

// AuditEntry records a submission or status transition against a report.
// The audit log is append-only.
type AuditEntry struct {
	ID         uuid.UUID    `json:"id"`
	ReportID   uuid.UUID    `json:"report_id"`
	ActorID    uuid.UUID    `json:"actor_id"`
	Action     string       `json:"action"` // "submitted" | "status_changed"
	FromStatus ReportStatus `json:"from_status,omitempty"`
	ToStatus   ReportStatus `json:"to_status,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// HealthStatus represents the server health check response
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Database string `json:"database,omitempty"`
}
