package step

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "omicsfetch_step_duration_seconds",
			Help:    "Duration of pipeline steps",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		},
		[]string{"step"},
	)

	stepTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omicsfetch_step_total",
			Help: "Total number of pipeline steps by outcome",
		},
		[]string{"status"}, // success, error or panic
	)
)
