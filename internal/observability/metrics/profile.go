package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProfileRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_requests_total",
			Help: "Total number of profile requests",
		},
		[]string{"method", "path"},
	)

	ProfileRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "profile_requests_in_flight",
			Help: "Number of profile requests currently being processed",
		},
	)

	ProfileRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "profile_request_duration_seconds",
			Help:    "Duration of profile requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ProfileUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_updates_total",
			Help: "Total number of committed profile updates",
		},
	)

	UsernameChangesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_username_changes_total",
			Help: "Total number of profile updates that changed the username",
		},
	)

	UsernameConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_username_conflicts_total",
			Help: "Total number of username changes rejected as taken",
		},
	)

	CredentialChecksFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_credential_checks_failed_total",
			Help: "Total number of failed password re-verifications",
		},
	)

	UserEventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "user_events_published_total",
			Help: "Total number of user change events delivered to subscribers",
		},
	)

	UserEventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_events_dropped_total",
			Help: "Total number of user change events dropped",
		},
		[]string{"reason"},
	)

	SnapshotInsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_inserts_total",
			Help: "Total number of snapshot inserts by backend",
		},
		[]string{"backend"},
	)
)
