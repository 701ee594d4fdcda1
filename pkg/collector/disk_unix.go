//go:build linux || darwin || freebsd

package collector

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// Collect returns filesystem usage via statfs. Used counts every non-free
// block, including blocks reserved for root.
func (c *DiskCollector) Collect(ctx context.Context) (*Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var st unix.Statfs_t
	if err := unix.Statfs(c.Path, &st); err != nil {
		return nil, fmt.Errorf("failed to statfs %s: %w", c.Path, err)
	}

	bsize := uint64(st.Bsize) //nolint:gosec // block size is always positive
	total := uint64(st.Blocks) * bsize
	free := uint64(st.Bfree) * bsize

	return &Reading{
		Used:  total - free,
		Total: total,
	}, nil
}
