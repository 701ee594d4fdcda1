// Package defaults provides centralized configuration constants for omicsfetch.
//
// This package defines timeout values, remote endpoints, pipeline tags and
// other defaults used across the codebase. Centralizing these values keeps the
// two command-line tools consistent and makes tuning easier.
//
// # Categories
//
//   - HTTP timeouts: per-request timeouts for archive downloads
//   - Endpoints: default GEO FTP base URL and annotation package URL
//   - Tags: pipeline step tags used as output filename prefixes
//   - Monitoring: disk path and logging cadence for resource telemetry
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/omicsfetch/omicsfetch/pkg/defaults"
//
//	client := &http.Client{Timeout: defaults.AnnotationHTTPTimeout}
//
// # Timeout Guidelines
//
//   - Annotation downloads: 60s, the package is a few hundred MB at most
//   - GEO downloads: 5m, family SOFT archives of large series exceed 1GB
//   - Rscript bridge: 10m per RDA object, conversion is single-threaded
package defaults
