package cache

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/omicsfetch/omicsfetch/pkg/header"
	"github.com/omicsfetch/omicsfetch/pkg/serializer"
)

const (
	// ManifestKind is the document kind of cache manifests.
	ManifestKind = "CacheManifest"

	manifestSuffix = ".manifest."
	digestPrefix   = "blake3:"
)

// Manifest describes a cache artifact.
type Manifest struct {
	header.Header `json:",inline" yaml:",inline"`

	// Artifact is the base name of the described file.
	Artifact string `json:"artifact" yaml:"artifact"`

	// Size is the artifact size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// Digest is the BLAKE3 digest, prefixed with "blake3:".
	Digest string `json:"digest" yaml:"digest"`

	// RunID identifies the run that wrote the artifact.
	RunID string `json:"runId,omitempty" yaml:"runId,omitempty"`
}

// ManifestPath returns the sidecar path for artifactPath in the given format:
// "<artifact>.manifest.yaml" or "<artifact>.manifest.json".
func ManifestPath(artifactPath string, format serializer.Format) string {
	return artifactPath + manifestSuffix + string(format)
}

// Digest returns the BLAKE3 digest of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return digestPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

// NewManifest builds a manifest for the file at artifactPath.
func NewManifest(artifactPath, runID string) (*Manifest, error) {
	info, err := os.Stat(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", artifactPath, err)
	}

	digest, err := Digest(artifactPath)
	if err != nil {
		return nil, err
	}

	return &Manifest{
		Header:   *header.New(header.WithKind(ManifestKind), header.WithMetadata("run-id", runID)),
		Artifact: filepath.Base(artifactPath),
		Size:     info.Size(),
		Digest:   digest,
		RunID:    runID,
	}, nil
}

// WriteManifest computes and writes the manifest sidecar for artifactPath.
func WriteManifest(ctx context.Context, artifactPath, runID string, format serializer.Format) (*Manifest, error) {
	if format.IsUnknown() {
		return nil, fmt.Errorf("unknown manifest format %q", format)
	}
	m, err := NewManifest(artifactPath, runID)
	if err != nil {
		return nil, err
	}

	path := ManifestPath(artifactPath, format)
	w, err := serializer.NewFileWriter(format, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			slog.Warn("failed to close manifest", "error", closeErr, "path", path)
		}
	}()

	if err := w.Serialize(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to write manifest %s: %w", path, err)
	}

	slog.Debug("wrote cache manifest",
		slog.String("path", path),
		slog.String("digest", m.Digest),
		slog.Int64("size", m.Size))
	return m, nil
}

// ReadManifest loads the manifest sidecar for artifactPath, in whichever
// supported format it was written. YAML is tried first.
func ReadManifest(artifactPath string) (*Manifest, error) {
	var lastErr error
	for _, format := range []serializer.Format{serializer.FormatYAML, serializer.FormatJSON} {
		path := ManifestPath(artifactPath, format)
		if _, err := os.Stat(path); err != nil {
			lastErr = err
			continue
		}
		return serializer.FromFile[Manifest](path)
	}
	return nil, fmt.Errorf("no manifest for %s: %w", artifactPath, lastErr)
}
