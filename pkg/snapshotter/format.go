package snapshotter

import (
	"fmt"
)

// FormatDelta renders a delta as "RSS Δ +1.50 MB | Disk Δ +0.00 MB | CPU 12.5%".
func FormatDelta(d ResourceDelta) string {
	return fmt.Sprintf("RSS Δ %+.2f MB | Disk Δ %+.2f MB | CPU %.1f%%",
		d.MemoryDeltaMB, d.DiskDeltaMB, d.CPUAfterPercent)
}
