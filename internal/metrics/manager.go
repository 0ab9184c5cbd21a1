// Package metrics defines the prometheus instruments of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Plan generation outcomes counted by CounterPlanGenerations.
const (
	PlanSourceModel    = "model"
	PlanSourceFallback = "fallback"
	PlanSourceRejected = "rejected"
	PlanSourceQuota    = "quota_exceeded"
)

type Manager struct {
	// counters
	CounterRequests           *prometheus.CounterVec
	CounterHandleRequestPanic prometheus.Counter
	CounterPlanGenerations    *prometheus.CounterVec
	CounterImageResolutions   *prometheus.CounterVec
	CounterRequestTimeouts    prometheus.Counter

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("fitcoach", "test_server", prometheus.NewRegistry())
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterHandleRequestPanic: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handle_request_panic",
			Help:      "The total number of serve request panics",
		}),
		CounterPlanGenerations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plan_generations",
			Help:      "The total number of plan generation requests by outcome",
		}, []string{"source"}),
		CounterImageResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "image_resolutions",
			Help:      "The total number of resolved images by degradation tier",
		}, []string{"tier"}),
		CounterRequestTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_timeouts",
			Help:      "The total number of requests that hit the handler timeout",
		}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "current_requests",
			Help:        "Current number of requests served",
			ConstLabels: nil,
		}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			// Model calls take tens of seconds.
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
			Name:    "request_duration_seconds",
			Help:    "Total duration of requests in seconds",
		}, []string{"route"}),
	}
}
