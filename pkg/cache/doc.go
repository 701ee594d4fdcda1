// Package cache implements the on-disk artifact cache shared by both pipelines.
//
// An artifact is valid when its file exists and is non-empty. Content is never
// verified: a truncated but non-empty file is trusted, and deleting the file is
// the only way to force a refresh.
//
// Each artifact written by a pipeline can carry a manifest sidecar
// (<artifact>.manifest.yaml or <artifact>.manifest.json) recording its size,
// BLAKE3 digest and the run that produced it. Manifests are informational and never affect validity.
package cache
