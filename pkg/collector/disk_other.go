//go:build !(linux || darwin || freebsd)

package collector

import (
	"context"
	"fmt"
	"runtime"
)

// Collect is not supported on this platform.
func (c *DiskCollector) Collect(_ context.Context) (*Reading, error) {
	return nil, fmt.Errorf("disk usage is not supported on %s", runtime.GOOS)
}
