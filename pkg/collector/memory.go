package collector

import (
	"context"
	"fmt"

	"github.com/prometheus/procfs"
)

const kib = 1024

// MemoryCollector reports used and total system memory from /proc/meminfo.
type MemoryCollector struct {
	ProcRoot string
}

// Collect returns used = MemTotal - MemAvailable. Kernels without MemAvailable
// fall back to MemTotal - MemFree - Buffers - Cached.
func (c *MemoryCollector) Collect(ctx context.Context) (*Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs, err := procfs.NewFS(c.ProcRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open procfs at %s: %w", c.ProcRoot, err)
	}

	mi, err := fs.Meminfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read meminfo: %w", err)
	}

	if mi.MemTotal == nil {
		return nil, fmt.Errorf("meminfo has no MemTotal")
	}
	total := *mi.MemTotal

	var available uint64
	if mi.MemAvailable != nil {
		available = *mi.MemAvailable
	} else {
		available = deref(mi.MemFree) + deref(mi.Buffers) + deref(mi.Cached)
	}
	if available > total {
		available = total
	}

	return &Reading{
		Used:  (total - available) * kib,
		Total: total * kib,
	}, nil
}

func deref(v *uint64) uint64 {
	if v == nil {
		return 0
	}
	return *v
}
