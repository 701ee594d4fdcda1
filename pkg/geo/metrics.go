package geo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheLoads = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "omicsfetch_geo_cache_loads_total",
		Help: "Parsed-series cache loads by result",
	},
	[]string{"result"}, // hit or miss
)
