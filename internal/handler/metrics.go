package handler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_generation_requests_total",
			Help: "Total number of generation operations, partitioned by operation and outcome.",
		},
		[]string{"operation", "status"},
	)
	generationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_generation_failures_total",
			Help: "Total number of classified generation failures, partitioned by operation and error code.",
		},
		[]string{"operation", "code"},
	)
	categoryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_category_errors_total",
			Help: "Total number of failed page categories, partitioned by page type and error code.",
		},
		[]string{"page_type", "code"},
	)
	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybook_generation_duration_seconds",
			Help:    "Duration of generation operations.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"operation"},
	)
)

// metricsRecordOperation записывает исход и длительность операции генерации.
func metricsRecordOperation(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	generationRequests.WithLabelValues(operation, status).Inc()
	generationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// metricsRecordFailure записывает классифицированный сбой операции.
func metricsRecordFailure(operation, code string) {
	generationFailures.WithLabelValues(operation, code).Inc()
}

// metricsRecordCategoryError записывает сбой категории.
func metricsRecordCategoryError(pageType, code string) {
	categoryErrors.WithLabelValues(pageType, code).Inc()
}
