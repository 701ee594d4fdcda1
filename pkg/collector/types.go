package collector

import (
	"context"
)

// Reading is a single point-in-time resource reading.
// CPU collectors fill Percent; memory and disk collectors fill Used and Total in bytes.
type Reading struct {
	Percent float64 `json:"percent,omitempty" yaml:"percent,omitempty"`
	Used    uint64  `json:"used,omitempty" yaml:"used,omitempty"`
	Total   uint64  `json:"total,omitempty" yaml:"total,omitempty"`
}

// Collector defines the interface for reading one system resource counter.
// Implementations must be cheap and non-blocking; callers treat errors as
// missing data rather than failures.
type Collector interface {
	Collect(ctx context.Context) (*Reading, error)
}
