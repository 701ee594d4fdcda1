package snapshotter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omicsfetch/omicsfetch/pkg/collector"
)

type stubCollector struct {
	reading *collector.Reading
	err     error
	calls   int
}

func (s *stubCollector) Collect(_ context.Context) (*collector.Reading, error) {
	s.calls++
	return s.reading, s.err
}

type stubFactory struct {
	cpu, mem, disk *stubCollector
}

func (f *stubFactory) CreateCPUCollector() collector.Collector    { return f.cpu }
func (f *stubFactory) CreateMemoryCollector() collector.Collector { return f.mem }
func (f *stubFactory) CreateDiskCollector() collector.Collector   { return f.disk }

func newStubFactory() *stubFactory {
	return &stubFactory{
		cpu:  &stubCollector{reading: &collector.Reading{Percent: 12.5}},
		mem:  &stubCollector{reading: &collector.Reading{Used: 100 * bytesPerMB, Total: 1000 * bytesPerMB}},
		disk: &stubCollector{reading: &collector.Reading{Used: 5 * bytesPerGB, Total: 10 * bytesPerGB}},
	}
}

func TestDelta(t *testing.T) {
	before := Snapshot{MemUsed: 100 * bytesPerMB, DiskUsed: 200 * bytesPerMB, CPUPercent: 3}
	after := Snapshot{MemUsed: 150 * bytesPerMB, DiskUsed: 190 * bytesPerMB, CPUPercent: 40}

	d := Delta(before, after)
	assert.InDelta(t, 50.0, d.MemoryDeltaMB, 1e-9)
	assert.InDelta(t, -10.0, d.DiskDeltaMB, 1e-9)
	assert.InDelta(t, 40.0, d.CPUAfterPercent, 1e-9)
}

func TestFormatDelta(t *testing.T) {
	got := FormatDelta(ResourceDelta{MemoryDeltaMB: 50, DiskDeltaMB: -1.234, CPUAfterPercent: 7.26})
	assert.Equal(t, "RSS Δ +50.00 MB | Disk Δ -1.23 MB | CPU 7.3%", got)
}

func TestMonitor_Snapshot(t *testing.T) {
	m := NewMonitor(WithFactory(newStubFactory()))

	s := m.Snapshot(context.Background())
	assert.InDelta(t, 12.5, s.CPUPercent, 1e-9)
	assert.Equal(t, uint64(100*bytesPerMB), s.MemUsed)
	assert.Equal(t, uint64(1000*bytesPerMB), s.MemTotal)
	assert.Equal(t, uint64(5*bytesPerGB), s.DiskUsed)
	assert.False(t, s.CapturedAt.IsZero())
}

func TestMonitor_CollectorErrorYieldsZero(t *testing.T) {
	f := newStubFactory()
	f.mem = &stubCollector{err: errors.New("meminfo unreadable")}
	m := NewMonitor(WithFactory(f))

	s := m.Snapshot(context.Background())
	assert.Zero(t, s.MemUsed)
	assert.Zero(t, s.MemTotal)
	assert.InDelta(t, 12.5, s.CPUPercent, 1e-9)
}

func TestMonitor_Disabled(t *testing.T) {
	f := newStubFactory()
	m := NewMonitor(WithFactory(f), WithDisabled(true))

	s := m.Snapshot(context.Background())
	assert.Zero(t, s.MemUsed)
	assert.Zero(t, s.CPUPercent)
	assert.Zero(t, f.cpu.calls)
}

func TestMonitor_NilIsDisabled(t *testing.T) {
	var m *Monitor
	s := m.Snapshot(context.Background())
	assert.Zero(t, s.DiskTotal)
	m.Report(context.Background())
}

func TestMonitor_Report(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	NewMonitor(WithFactory(newStubFactory())).Report(context.Background())

	out := buf.String()
	assert.Contains(t, out, "resource usage")
	assert.Contains(t, out, "cpu=12.5%")
	assert.Contains(t, out, `disk="5.00/10.00 GB"`)
}
