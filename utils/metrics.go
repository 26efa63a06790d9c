package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnsTotal counts dialogue turns by step and outcome (advanced, retry, transfer, terminal).
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moveline_turns_total",
			Help: "Dialogue turns processed by step and outcome",
		},
		[]string{"step", "outcome"},
	)

	// TurnDuration observes how long a turn takes, collaborator calls included.
	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moveline_turn_duration_seconds",
			Help:    "Dialogue turn duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)

	// SessionsFlushed counts flushes by kind (booking, partial_lead, skipped) and trigger.
	SessionsFlushed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moveline_sessions_flushed_total",
			Help: "Sessions flushed to persistence",
		},
		[]string{"kind", "trigger"},
	)

	// CollaboratorErrors counts failed calls to external collaborators.
	CollaboratorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moveline_collaborator_errors_total",
			Help: "Errors returned by external collaborators",
		},
		[]string{"collaborator"},
	)

	// ActiveSessions tracks sessions currently held by the store.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moveline_active_sessions",
			Help: "Sessions currently held by the session store",
		},
	)
)
