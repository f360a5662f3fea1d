package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "app_subscribe_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// RemoteAPICalls tracks outbound HubSpot API calls
	RemoteAPICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_subscribe_remote_api_calls_total",
			Help: "Number of HubSpot API calls",
		},
		[]string{"operation", "status"},
	)

	// FlowOutcomes tracks subscription flow results by status
	FlowOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_subscribe_flow_outcomes_total",
			Help: "Number of subscription flow results",
		},
		[]string{"status"},
	)

	// NonceVerifications tracks nonce verification attempts
	NonceVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_subscribe_nonce_verifications_total",
			Help: "Number of nonce verification attempts",
		},
		[]string{"action", "result"},
	)

	// WorkflowEnrollments tracks fire-and-forget workflow enrollments
	WorkflowEnrollments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_subscribe_workflow_enrollments_total",
			Help: "Number of workflow enrollment dispatches",
		},
		[]string{"workflow", "status"},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_subscribe_active_connections",
			Help: "Number of active connections",
		},
	)
)
