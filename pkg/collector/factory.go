package collector

import (
	"github.com/prometheus/procfs"

	"github.com/omicsfetch/omicsfetch/pkg/defaults"
)

// Factory creates collectors with their dependencies.
// This interface enables dependency injection for testing.
type Factory interface {
	CreateCPUCollector() Collector
	CreateMemoryCollector() Collector
	CreateDiskCollector() Collector
}

// DefaultFactory creates collectors with production dependencies.
type DefaultFactory struct {
	// ProcRoot is the procfs mount point used for CPU and memory counters.
	ProcRoot string

	// DiskPath is the filesystem path whose usage is reported.
	DiskPath string
}

// NewDefaultFactory creates a factory with default settings.
func NewDefaultFactory() *DefaultFactory {
	return &DefaultFactory{
		ProcRoot: procfs.DefaultMountPoint,
		DiskPath: defaults.DiskPath,
	}
}

// CreateCPUCollector creates a system-wide CPU utilization collector.
func (f *DefaultFactory) CreateCPUCollector() Collector {
	return &CPUCollector{ProcRoot: f.ProcRoot}
}

// CreateMemoryCollector creates a system memory collector.
func (f *DefaultFactory) CreateMemoryCollector() Collector {
	return &MemoryCollector{ProcRoot: f.ProcRoot}
}

// CreateDiskCollector creates a filesystem usage collector.
func (f *DefaultFactory) CreateDiskCollector() Collector {
	return &DiskCollector{Path: f.DiskPath}
}
