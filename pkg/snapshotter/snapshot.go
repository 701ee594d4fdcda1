package snapshotter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/omicsfetch/omicsfetch/pkg/collector"
)

// Monitor takes resource snapshots using collectors from a Factory.
// A Monitor is safe for concurrent use; the CPU collector keeps the previous
// counters between calls.
type Monitor struct {
	// Factory is the collector factory to use. If nil, the default factory is used.
	Factory collector.Factory

	// Disabled makes Snapshot return zero values and Report a no-op.
	Disabled bool

	once sync.Once
	cpu  collector.Collector
	mem  collector.Collector
	disk collector.Collector
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithFactory sets the collector factory.
func WithFactory(f collector.Factory) Option {
	return func(m *Monitor) {
		m.Factory = f
	}
}

// WithDisabled turns the monitor off.
func WithDisabled(disabled bool) Option {
	return func(m *Monitor) {
		m.Disabled = disabled
	}
}

// NewMonitor returns a Monitor configured with opts.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Monitor) init() {
	m.once.Do(func() {
		if m.Factory == nil {
			m.Factory = collector.NewDefaultFactory()
		}
		m.cpu = m.Factory.CreateCPUCollector()
		m.mem = m.Factory.CreateMemoryCollector()
		m.disk = m.Factory.CreateDiskCollector()
	})
}

// Snapshot reads CPU, memory and disk counters. A collector that fails
// contributes zero values; Snapshot itself never fails.
func (m *Monitor) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{CapturedAt: time.Now()}
	if m == nil || m.Disabled {
		return snap
	}
	m.init()

	start := time.Now()
	defer func() {
		snapshotCollectionDuration.Observe(time.Since(start).Seconds())
	}()

	if r := read(ctx, "cpu", m.cpu); r != nil {
		snap.CPUPercent = r.Percent
	}
	if r := read(ctx, "memory", m.mem); r != nil {
		snap.MemUsed, snap.MemTotal = r.Used, r.Total
	}
	if r := read(ctx, "disk", m.disk); r != nil {
		snap.DiskUsed, snap.DiskTotal = r.Used, r.Total
	}

	recordSnapshot(snap)
	return snap
}

// Report logs the current CPU percentage, memory and disk usage in GB.
func (m *Monitor) Report(ctx context.Context) {
	if m == nil || m.Disabled {
		return
	}
	s := m.Snapshot(ctx)
	slog.Info("resource usage",
		slog.String("cpu", fmt.Sprintf("%.1f%%", s.CPUPercent)),
		slog.String("memory", fmt.Sprintf("%.2f/%.2f GB", float64(s.MemUsed)/bytesPerGB, float64(s.MemTotal)/bytesPerGB)),
		slog.String("disk", fmt.Sprintf("%.2f/%.2f GB", float64(s.DiskUsed)/bytesPerGB, float64(s.DiskTotal)/bytesPerGB)),
	)
}

func read(ctx context.Context, name string, c collector.Collector) *collector.Reading {
	if c == nil {
		return nil
	}
	r, err := c.Collect(ctx)
	if err != nil {
		snapshotCollectorErrors.WithLabelValues(name).Inc()
		slog.Debug("resource collector failed", slog.String("collector", name), slog.String("error", err.Error()))
		return nil
	}
	return r
}
