// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wrb_evaluations_total",
			Help: "Total number of patient evaluations by cumulative-burden verdict",
		},
		[]string{"verdict"},
	)

	JobsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wrb_jobs_classified_total",
			Help: "Total number of jobs classified by physical-burden level",
		},
		[]string{"level"},
	)

	EvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wrb_evaluation_duration_seconds",
			Help:    "Duration of evaluation operations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"operation"},
	)

	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wrb_reports_generated_total",
			Help: "Total number of reports generated by format and language",
		},
		[]string{"format", "lang"},
	)

	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wrb_requests_total",
			Help: "Total number of API and tool requests",
		},
		[]string{"surface", "operation", "status"},
	)

	PresetCatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wrb_preset_catalog_size",
			Help: "Number of presets in the loaded catalog",
		},
	)

	BatchInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wrb_batch_evaluations_in_flight",
			Help: "Number of records currently being evaluated in batches",
		},
	)
)
