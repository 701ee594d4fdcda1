package cache

import (
	"log/slog"
	"os"
)

// IsValid reports whether path exists, is a regular file and is non-empty.
func IsValid(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// Lookup is IsValid with a lookup metric and a debug log line.
// artifact names the kind of file (e.g. "soft-archive") for the metric label.
func Lookup(artifact, path string) bool {
	hit := IsValid(path)
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(artifact, result).Inc()
	slog.Debug("cache lookup",
		slog.String("artifact", artifact),
		slog.String("path", path),
		slog.String("result", result))
	return hit
}
