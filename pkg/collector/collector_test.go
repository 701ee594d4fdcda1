package collector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProcFile(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
}

func TestCPUCollector_FirstCallIsZeroThenDelta(t *testing.T) {
	root := t.TempDir()
	c := &CPUCollector{ProcRoot: root}
	ctx := context.Background()

	writeProcFile(t, root, "stat", "cpu  100 0 100 800 0 0 0 0 0 0\n")
	first, err := c.Collect(ctx)
	require.NoError(t, err)
	assert.Zero(t, first.Percent)

	// busy +200 ticks out of +800 total
	writeProcFile(t, root, "stat", "cpu  200 0 200 1400 0 0 0 0 0 0\n")
	second, err := c.Collect(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, second.Percent, 0.001)

	// no elapsed ticks
	third, err := c.Collect(ctx)
	require.NoError(t, err)
	assert.Zero(t, third.Percent)
}

func TestCPUCollector_MissingProc(t *testing.T) {
	c := &CPUCollector{ProcRoot: filepath.Join(t.TempDir(), "missing")}
	_, err := c.Collect(context.Background())
	assert.Error(t, err)
}

func TestCPUCollector_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&CPUCollector{ProcRoot: t.TempDir()}).Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryCollector_UsesMemAvailable(t *testing.T) {
	root := t.TempDir()
	writeProcFile(t, root, "meminfo", `MemTotal:        1000 kB
MemFree:          100 kB
MemAvailable:     400 kB
Buffers:           50 kB
Cached:           150 kB
`)

	r, err := (&MemoryCollector{ProcRoot: root}).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000*1024), r.Total)
	assert.Equal(t, uint64(600*1024), r.Used)
}

func TestMemoryCollector_FallbackWithoutMemAvailable(t *testing.T) {
	root := t.TempDir()
	writeProcFile(t, root, "meminfo", `MemTotal:        1000 kB
MemFree:          100 kB
Buffers:           50 kB
Cached:           150 kB
`)

	r, err := (&MemoryCollector{ProcRoot: root}).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(700*1024), r.Used)
}

func TestDiskCollector_TempDir(t *testing.T) {
	r, err := (&DiskCollector{Path: t.TempDir()}).Collect(context.Background())
	if err != nil {
		t.Skipf("statfs unavailable: %v", err)
	}
	assert.Positive(t, r.Total)
	assert.LessOrEqual(t, r.Used, r.Total)
}

func TestDiskCollector_MissingPath(t *testing.T) {
	_, err := (&DiskCollector{Path: filepath.Join(t.TempDir(), "nope")}).Collect(context.Background())
	assert.Error(t, err)
}
