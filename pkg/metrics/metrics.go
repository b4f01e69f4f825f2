package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ModelCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandreview_model_calls_total",
			Help: "Total number of model calls by request mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	ModelLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brandreview_model_call_duration_seconds",
			Help:    "Duration of model calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 120},
		},
		[]string{"mode"},
	)

	ResultParses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandreview_result_parses_total",
			Help: "Total number of parsed model replies by parse mode",
		},
		[]string{"parse_mode"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandreview_cache_lookups_total",
			Help: "Total number of result cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandreview_uploads_total",
			Help: "Total number of parsed uploads by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)
