package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "fraud_dashboard"

var (
	HealthChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "health_checks_total",
		Help:      "Health probes of upstream services by outcome.",
	}, []string{"service", "status"})

	AlertPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "alert_polls_total",
		Help:      "Alert feed polls by outcome.",
	}, []string{"status"})

	TestTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "test_transactions_total",
		Help:      "Submitted test transactions by outcome (fraud, normal, invalid, error).",
	}, []string{"outcome"})

	FraudRate = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "fraud_rate_percent",
		Help:      "Session fraud rate of classified test transactions.",
	})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of calls to the scoring and alert services.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"service", "operation"})

	DashboardClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "websocket_clients",
		Help:      "Dashboard pages connected over WebSocket.",
	})
)
