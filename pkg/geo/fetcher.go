package geo

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/omicsfetch/omicsfetch/pkg/cache"
	"github.com/omicsfetch/omicsfetch/pkg/defaults"
	"github.com/omicsfetch/omicsfetch/pkg/errors"
	"github.com/omicsfetch/omicsfetch/pkg/geo/soft"
	"github.com/omicsfetch/omicsfetch/pkg/paths"
	"github.com/omicsfetch/omicsfetch/pkg/serializer"
)

// Fetcher runs the GEO pipeline operations for one accession.
type Fetcher struct {
	paths    *paths.GEO
	provider Provider
	runID    string
	level    int
	manifest serializer.Format
	log      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRunID records id in cache manifests.
func WithRunID(id string) Option {
	return func(f *Fetcher) {
		f.runID = id
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.log = l
	}
}

// WithManifestFormat sets the format of the cache manifest. Defaults to YAML.
func WithManifestFormat(format serializer.Format) Option {
	return func(f *Fetcher) {
		f.manifest = format
	}
}

// WithCompressionLevel sets the zlib level of the parsed-series cache.
func WithCompressionLevel(level int) Option {
	return func(f *Fetcher) {
		f.level = level
	}
}

// NewFetcher returns a Fetcher for the layout p downloading through provider.
func NewFetcher(p *paths.GEO, provider Provider, opts ...Option) *Fetcher {
	f := &Fetcher{
		paths:    p,
		provider: provider,
		level:    defaults.CacheCompressionLevel,
		manifest: serializer.Format(defaults.ManifestFormat),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Paths returns the file layout.
func (f *Fetcher) Paths() *paths.GEO {
	return f.paths
}

// DownloadArchive makes sure the canonical SOFT archive exists. A non-empty
// archive is reused; otherwise the provider downloads it under its default
// name, which is then renamed to the canonical path.
func (f *Fetcher) DownloadArchive(ctx context.Context) error {
	if cache.Lookup("soft-archive", f.paths.Archive) {
		f.log.Info("SOFT archive already present", slog.String("path", f.paths.Archive))
		return nil
	}

	dataDir := filepath.Dir(f.paths.Archive)
	f.log.Info(fmt.Sprintf("downloading %s", f.paths.ID), slog.String("dest", f.paths.Archive))

	if _, err := f.provider.Download(ctx, f.paths.ID, dataDir); err != nil {
		return err
	}

	src, err := f.findProviderArchive(dataDir)
	if err != nil {
		return err
	}
	if err := os.Rename(src, f.paths.Archive); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to rename downloaded archive", err)
	}

	f.log.Info("download complete", slog.String("path", f.paths.Archive))
	return nil
}

// findProviderArchive returns the first entry of dir named after the
// accession and ending in .soft.gz.
func (f *Fetcher) findProviderArchive(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to list %s", dir), err)
	}

	id := f.paths.ID
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, id) || !strings.HasSuffix(name, ".soft.gz") {
			continue
		}
		// GSE1 must not match GSE10_family.soft.gz
		if next := name[len(id)]; next != '_' && next != '.' {
			continue
		}
		return filepath.Join(dir, name), nil
	}

	return "", errors.WrapWithContext(errors.ErrCodeNotFound,
		"downloaded SOFT archive not found", nil, map[string]any{"dir": dir, "accession": id})
}

// LoadOrParse returns the parsed series, from the cache when it decodes and
// holds at least one sample, otherwise by parsing the archive. A parse result
// is written back to the cache together with its manifest.
func (f *Fetcher) LoadOrParse(ctx context.Context) (*soft.Series, error) {
	f.log.Info("attempting to load cached series", slog.String("path", f.paths.Cache))
	s, err := LoadSeries(f.paths.Cache)
	switch {
	case err == nil && len(s.Samples) > 0:
		cacheLoads.WithLabelValues("hit").Inc()
		f.log.Info(fmt.Sprintf("using cached series with %d samples", len(s.Samples)))
		return s, nil
	case err == nil:
		err = fmt.Errorf("cached series has no samples")
	}
	cacheLoads.WithLabelValues("miss").Inc()
	f.log.Warn("failed to load cached series, parsing SOFT archive", slog.String("error", err.Error()))

	if err := f.ensureParserArchive(); err != nil {
		return nil, err
	}

	doc, err := soft.ParseFile(ctx, f.paths.ParserArchive)
	// guards against the provider renaming its archives away from the accession
	if stderrors.Is(err, soft.ErrUnknownType) {
		f.log.Warn("file name based parse failed, parsing with explicit accession", slog.String("error", err.Error()))
		doc, err = soft.ParseFileAs(ctx, f.paths.Archive, f.paths.ID)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to parse SOFT archive", err)
	}

	s, err = doc.Series()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "SOFT archive is not a series", err)
	}
	if s.Accession != f.paths.ID {
		f.log.Warn("series accession differs from requested id",
			slog.String("requested", f.paths.ID), slog.String("parsed", s.Accession))
	}

	if err := SaveSeries(f.paths.Cache, s, f.level); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to save parsed series", err)
	}
	f.log.Info("saved parsed series", slog.String("path", f.paths.Cache), slog.Int("samples", len(s.Samples)))

	if _, err := cache.WriteManifest(ctx, f.paths.Cache, f.runID, f.manifest); err != nil {
		f.log.Warn("failed to write cache manifest", slog.String("error", err.Error()))
	}

	return s, nil
}

// ensureParserArchive copies the canonical archive to the provider's file
// name, which the parser uses for type inference.
func (f *Fetcher) ensureParserArchive() error {
	if _, err := os.Stat(f.paths.ParserArchive); err == nil {
		return nil
	}
	if err := copyFile(f.paths.Archive, f.paths.ParserArchive); err != nil {
		return errors.Wrap(errors.ErrCodeNotFound, "failed to prepare SOFT archive for parsing", err)
	}
	f.log.Info("created parser-friendly copy", slog.String("path", f.paths.ParserArchive))
	return nil
}

// InspectRecord logs the accession and first metadata fields of the sample
// at index. An index outside the sample list is an error.
func (f *Fetcher) InspectRecord(s *soft.Series, index int) error {
	sample, ok := s.Sample(index)
	if !ok {
		return errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("sample index %d out of range, series has %d samples", index, len(s.Samples)),
			nil, map[string]any{"index": index})
	}

	f.log.Info(fmt.Sprintf("sample %d: %s", index, sample.Accession))
	fields := sample.Metadata
	if len(fields) > defaults.InspectFieldCount {
		fields = fields[:defaults.InspectFieldCount]
	}
	for _, field := range fields {
		f.log.Info(fmt.Sprintf("  %s: %v", field.Key, field.Values))
	}
	return nil
}

// VerifyCache reloads the parsed-series cache and logs its sample count,
// first metadata keys and manifest digest. Problems are logged, never returned.
func (f *Fetcher) VerifyCache(ctx context.Context) {
	f.log.Info("final verification of parsed series")
	defer f.log.Info("dataset inspection complete")

	if err := ctx.Err(); err != nil {
		f.log.Warn("verification skipped", slog.String("error", err.Error()))
		return
	}

	if _, err := os.Stat(f.paths.Cache); err != nil {
		f.log.Warn("parsed series cache not found", slog.String("path", f.paths.Cache))
		return
	}
	f.log.Info("cache file exists", slog.String("path", f.paths.Cache))

	s, err := LoadSeries(f.paths.Cache)
	if err != nil {
		f.log.Warn("failed to load parsed series", slog.String("error", err.Error()))
		return
	}

	keys := s.Metadata.Keys()
	if len(keys) > defaults.InspectFieldCount {
		keys = keys[:defaults.InspectFieldCount]
	}
	f.log.Info("parsed series loaded",
		slog.Int("samples", len(s.Samples)),
		slog.String("metadata_keys", strings.Join(keys, ",")))

	if m, err := cache.ReadManifest(f.paths.Cache); err == nil {
		f.log.Info("cache manifest", slog.String("digest", m.Digest), slog.String("run_id", m.RunID))
	} else {
		f.log.Debug("no cache manifest", slog.String("error", err.Error()))
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
