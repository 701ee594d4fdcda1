package snapshotter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Snapshot collection metrics
	snapshotCollectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "omicsfetch_snapshot_collection_duration_seconds",
			Help:    "Time taken to collect a resource snapshot",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	snapshotCollectorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omicsfetch_snapshot_collector_errors_total",
			Help: "Total number of failed resource collector reads",
		},
		[]string{"collector"}, // cpu, memory, disk
	)

	// Last snapshot values
	snapshotCPUPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "omicsfetch_snapshot_cpu_percent",
			Help: "System-wide CPU busy percentage in the last snapshot",
		},
	)

	snapshotBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "omicsfetch_snapshot_bytes",
			Help: "Memory and disk usage in the last snapshot",
		},
		[]string{"resource", "kind"}, // memory|disk, used|total
	)
)

func recordSnapshot(s Snapshot) {
	snapshotCPUPercent.Set(s.CPUPercent)
	snapshotBytes.WithLabelValues("memory", "used").Set(float64(s.MemUsed))
	snapshotBytes.WithLabelValues("memory", "total").Set(float64(s.MemTotal))
	snapshotBytes.WithLabelValues("disk", "used").Set(float64(s.DiskUsed))
	snapshotBytes.WithLabelValues("disk", "total").Set(float64(s.DiskTotal))
}
