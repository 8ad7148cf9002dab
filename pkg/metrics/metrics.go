package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// ML predictor metrics
	MLRequests *prometheus.CounterVec
	MLLatency  prometheus.Histogram
	MLFailures prometheus.Counter

	// Risk assessment metrics
	AssessmentsTotal  *prometheus.CounterVec
	AssessmentDegrade prometheus.Counter

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec

	// Rate limiter metrics
	RateLimitRejections *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		MLRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ml_requests_total",
			Help:      "Total number of calls to the ML predictor",
		}, []string{"endpoint", "status"}),
		MLLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ml_request_duration_seconds",
			Help:      "Duration of ML predictor calls",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		MLFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ml_failures_total",
			Help:      "Total number of failed ML predictor calls",
		}),
		AssessmentsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_assessments_total",
			Help:      "Total number of risk assessments by final level",
		}, []string{"level"}),
		AssessmentDegrade: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_assessments_degraded_total",
			Help:      "Assessments completed rule-based-only because the predictor was unavailable",
		}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		RateLimitRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"scope"}),
	}
}
