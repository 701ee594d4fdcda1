package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	downloadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omicsfetch_download_total",
			Help: "Total number of download attempts by outcome",
		},
		[]string{"status"}, // cached, success or error
	)

	downloadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "omicsfetch_download_bytes_total",
			Help: "Total number of bytes downloaded",
		},
	)

	downloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "omicsfetch_download_duration_seconds",
			Help:    "Time taken by HTTP downloads",
			Buckets: []float64{0.1, 1, 5, 10, 30, 60, 300, 900},
		},
	)
)
