// Package metrics defines prometheus metrics to expose
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catdog_api_request_count_total",
			Help: "Total number of pipeline requests by outcome",
		},
		[]string{"status", "kind"},
	)

	ModelLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catdog_api_model_loads_total",
			Help: "Model load attempts",
		},
		[]string{"result"},
	)

	ModelLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catdog_api_model_load_duration_seconds",
			Help:    "Time taken to load the model in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
	)

	InferenceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catdog_api_inference_duration_seconds",
			Help:    "Time taken by a single forward pass in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catdog_api_predictions_total",
			Help: "Predictions by label",
		},
		[]string{"label"},
	)

	ResponseCodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catdog_api_status_code",
			Help: "Status Codes",
		},
		[]string{"path", "status_code"},
	)
)
