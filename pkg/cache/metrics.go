package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "omicsfetch_cache_lookups_total",
		Help: "Total number of cache lookups by artifact and result",
	},
	[]string{"artifact", "result"}, // result: hit or miss
)
