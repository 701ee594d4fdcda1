package snapshotter

import (
	"context"
	"time"
)

// bytesPerMB converts bytes to the mebibyte unit used in delta lines.
const bytesPerMB = 1024 * 1024

// bytesPerGB converts bytes to the gibibyte unit used in resource reports.
const bytesPerGB = 1024 * 1024 * 1024

// Snapshotter is the interface that wraps the Snapshot method.
// Snapshot returns a point-in-time resource reading and never fails.
type Snapshotter interface {
	Snapshot(ctx context.Context) Snapshot
}

// Snapshot is an immutable point-in-time reading of system counters.
// Memory and disk values are in bytes.
type Snapshot struct {
	CPUPercent float64   `json:"cpuPercent" yaml:"cpuPercent"`
	MemUsed    uint64    `json:"memUsed" yaml:"memUsed"`
	MemTotal   uint64    `json:"memTotal" yaml:"memTotal"`
	DiskUsed   uint64    `json:"diskUsed" yaml:"diskUsed"`
	DiskTotal  uint64    `json:"diskTotal" yaml:"diskTotal"`
	CapturedAt time.Time `json:"capturedAt" yaml:"capturedAt"`
}

// ResourceDelta is the difference between two snapshots.
type ResourceDelta struct {
	MemoryDeltaMB   float64 `json:"memoryDeltaMB" yaml:"memoryDeltaMB"`
	DiskDeltaMB     float64 `json:"diskDeltaMB" yaml:"diskDeltaMB"`
	CPUAfterPercent float64 `json:"cpuAfterPercent" yaml:"cpuAfterPercent"`
}

// Delta computes after minus before. Memory and disk are reported in MB
// (bytes / 1024²); CPU is the after reading, not a difference.
func Delta(before, after Snapshot) ResourceDelta {
	return ResourceDelta{
		MemoryDeltaMB:   (float64(after.MemUsed) - float64(before.MemUsed)) / bytesPerMB,
		DiskDeltaMB:     (float64(after.DiskUsed) - float64(before.DiskUsed)) / bytesPerMB,
		CPUAfterPercent: after.CPUPercent,
	}
}
