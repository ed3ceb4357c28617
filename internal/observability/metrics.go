// Package observability holds the Prometheus instrumentation for the
// hazard server.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the service.
type Metrics struct {
	ReportsSubmitted  prometheus.Counter
	StatusTransitions *prometheus.CounterVec // labels: to
	MediaUploads      *prometheus.CounterVec // labels: outcome={success,error}
	GeocodeLookups    *prometheus.CounterVec // labels: outcome={success,error,empty}

	SocialRecordsIngested prometheus.Counter
	IngestErrors          prometheus.Counter

	FanoutNotifications *prometheus.CounterVec // labels: topic
	EventSubscribers    prometheus.Gauge

	AuthLogins  *prometheus.CounterVec // labels: method={password,otp}, outcome={success,failure}
	AuthLogouts prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oceanguard",
			Name:      "reports_submitted_total",
			Help:      "Total hazard reports accepted.",
		}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oceanguard",
			Name:      "report_status_transitions_total",
			Help:      "Accepted report status transitions by target status.",
		}, []string{"to"}),
		MediaUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oceanguard",
			Name:      "media_uploads_total",
			Help:      "Asynchronous media uploads by outcome.",
		}, []string{"outcome"}),
		GeocodeLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oceanguard",
			Name:      "geocode_lookups_total",
			Help:      "Reverse geocoding lookups by outcome.",
		}, []string{"outcome"}),
		SocialRecordsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oceanguard",
			Name:      "social_records_ingested_total",
			Help:      "Social-signal records consumed from the feed.",
		}),
		IngestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oceanguard",
			Name:      "social_ingest_errors_total",
			Help:      "Social-signal records dropped due to decode or store failures.",
		}),
		FanoutNotifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oceanguard",
			Name:      "fanout_notifications_total",
			Help:      "Change notifications published by topic.",
		}, []string{"topic"}),
		EventSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "oceanguard",
			Name:      "event_subscribers",
			Help:      "Currently connected event-stream subscribers.",
		}),
		AuthLogins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oceanguard",
			Name:      "auth_logins_total",
			Help:      "Login attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		AuthLogouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oceanguard",
			Name:      "auth_logouts_total",
			Help:      "Completed logouts.",
		}),
	}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReportsSubmitted,
		m.StatusTransitions,
		m.MediaUploads,
		m.GeocodeLookups,
		m.SocialRecordsIngested,
		m.IngestErrors,
		m.FanoutNotifications,
		m.EventSubscribers,
		m.AuthLogins,
		m.AuthLogouts,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so
// parallel tests do not trip "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
