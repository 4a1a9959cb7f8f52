package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsCreated counts operations accepted by kind and initial status
	OperationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_operations_created_total",
			Help: "Total number of operations created",
		},
		[]string{"kind", "status"},
	)

	// StateTransitions counts applied lifecycle transitions
	StateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_state_transitions_total",
			Help: "Total number of applied state transitions",
		},
		[]string{"kind", "from", "to"},
	)

	// TransitionConflicts counts transitions lost to a concurrent writer
	TransitionConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_transition_conflicts_total",
			Help: "Total number of transitions rejected because the stored status changed",
		},
		[]string{"kind"},
	)

	// RiskDecisions counts risk evaluations by outcome
	RiskDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_risk_decisions_total",
			Help: "Total number of risk decisions",
		},
		[]string{"operation", "outcome", "rule"},
	)

	// BroadcastsTotal counts broadcast attempts by chain and result
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_broadcasts_total",
			Help: "Total number of signed transaction broadcasts",
		},
		[]string{"chain", "status"},
	)

	// BroadcastDuration tracks how long a node takes to accept a transaction
	BroadcastDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settlement_broadcast_duration_seconds",
			Help:    "Broadcast duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain"},
	)

	// ActiveMonitors tracks confirmation monitors currently running
	ActiveMonitors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "settlement_active_monitors",
			Help: "Number of confirmation monitors currently running",
		},
	)

	// PendingOperations tracks non-final operations by kind and status
	PendingOperations = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "settlement_pending_operations",
			Help: "Number of non-final operations by kind and status",
		},
		[]string{"kind", "status"},
	)

	// UnlockSessions counts wallet unlock and lock events
	UnlockSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_unlock_sessions_total",
			Help: "Total number of wallet unlock session events",
		},
		[]string{"event"},
	)

	// WebhooksReceived counts inbound provider webhooks by source and result
	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_webhooks_received_total",
			Help: "Total number of provider webhooks received",
		},
		[]string{"source", "result"},
	)

	// RateLimited counts requests rejected by the rate limiter
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "settlement_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// ErrorsTotal counts errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// LastReconcileRun tracks the unix time of the last reconciliation pass
	LastReconcileRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "settlement_last_reconcile_timestamp_seconds",
			Help: "Unix time of the last completed reconciliation pass",
		},
	)
)
