package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	RouteGuardDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_route_guard_decisions_total",
			Help: "Route guard outcomes per matched rule",
		},
		[]string{"rule", "decision"},
	)

	GateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_session_gate_transitions_total",
			Help: "Session gate transitions by target status",
		},
		[]string{"status"},
	)

	SignInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_sign_ins_total",
			Help: "Sign-in attempts by result",
		},
		[]string{"result"},
	)

	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_verifications_total",
			Help: "Token verifications by result",
		},
		[]string{"result"},
	)

	SignOutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_sign_outs_total",
			Help: "Sign-outs by result of the remote call",
		},
		[]string{"result"},
	)

	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_token_refreshes_total",
			Help: "Background credential refreshes by result",
		},
		[]string{"result"},
	)

	RefreshFailedEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: Namespace + "_refresh_failed_events_total",
			Help: "Refresh failure notifications received by session controllers",
		},
	)

	ActiveControllers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: Namespace + "_session_controllers",
			Help: "Number of session controllers held by this instance",
		},
	)

	ProfileLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_profile_loads_total",
			Help: "Profile loads by kind and result",
		},
		[]string{"load", "result"},
	)

	ProfileLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_profile_load_duration_seconds",
			Help:    "Time to load profile data from the finance API",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"load"},
	)
)
