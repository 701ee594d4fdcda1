package collector

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/procfs"
)

// CPUCollector reports system-wide CPU busy percentage since its previous
// Collect call. The first call has no baseline and reports 0.
type CPUCollector struct {
	ProcRoot string

	mu       sync.Mutex
	hasPrev  bool
	prevBusy float64
	prevAll  float64
}

// Collect reads /proc/stat and returns the busy percentage since the last call.
func (c *CPUCollector) Collect(ctx context.Context) (*Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs, err := procfs.NewFS(c.ProcRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open procfs at %s: %w", c.ProcRoot, err)
	}

	stat, err := fs.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu stat: %w", err)
	}

	t := stat.CPUTotal
	all := t.User + t.Nice + t.System + t.Idle + t.Iowait + t.IRQ + t.SoftIRQ + t.Steal
	busy := all - t.Idle - t.Iowait

	c.mu.Lock()
	defer c.mu.Unlock()

	var pct float64
	if c.hasPrev {
		if dAll := all - c.prevAll; dAll > 0 {
			pct = (busy - c.prevBusy) / dAll * 100
		}
	}
	c.prevBusy, c.prevAll, c.hasPrev = busy, all, true

	switch {
	case pct < 0:
		pct = 0
	case pct > 100:
		pct = 100
	}

	return &Reading{Percent: pct}, nil
}
