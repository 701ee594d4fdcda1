package annotation

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/omicsfetch/omicsfetch/pkg/archive"
	"github.com/omicsfetch/omicsfetch/pkg/cache"
	"github.com/omicsfetch/omicsfetch/pkg/defaults"
	"github.com/omicsfetch/omicsfetch/pkg/errors"
	"github.com/omicsfetch/omicsfetch/pkg/fetch"
	"github.com/omicsfetch/omicsfetch/pkg/paths"
	"github.com/omicsfetch/omicsfetch/pkg/rbridge"
	"github.com/omicsfetch/omicsfetch/pkg/serializer"
	"github.com/omicsfetch/omicsfetch/pkg/step"
	"github.com/omicsfetch/omicsfetch/pkg/table"
)

const (
	// LocationsFile and OtherFile are the RDA files merged by LoadAndMerge.
	LocationsFile = "locations.rda"
	OtherFile     = "other.rda"

	// IndexColumn is the join key and first column of the merged table.
	IndexColumn = rbridge.DefaultIndexColumn
)

// Downloader fetches url into dest unless dest is already cached.
type Downloader interface {
	Download(ctx context.Context, url, dest string) (*fetch.Result, error)
}

// Files holds the discovered RDA paths.
type Files struct {
	Locations string
	Other     string
}

// Fetcher runs the annotation pipeline for one tag.
type Fetcher struct {
	paths      *paths.Annotation
	url        string
	downloader Downloader
	bridge     rbridge.Bridge
	runID      string
	manifest   serializer.Format
	log        *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBridge sets the bridge used to read RDA files. Without one, RDA
// processing is always skipped.
func WithBridge(b rbridge.Bridge) Option {
	return func(f *Fetcher) {
		f.bridge = b
	}
}

// WithRunID records id in manifests.
func WithRunID(id string) Option {
	return func(f *Fetcher) {
		f.runID = id
	}
}

// WithManifestFormat sets the format of manifest sidecars. Defaults to YAML.
func WithManifestFormat(format serializer.Format) Option {
	return func(f *Fetcher) {
		f.manifest = format
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.log = l
	}
}

// NewFetcher returns a Fetcher for the layout p, downloading url through d.
func NewFetcher(p *paths.Annotation, url string, d Downloader, opts ...Option) *Fetcher {
	f := &Fetcher{
		paths:      p,
		url:        url,
		downloader: d,
		manifest:   serializer.Format(defaults.ManifestFormat),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Paths returns the file layout.
func (f *Fetcher) Paths() *paths.Annotation {
	return f.paths
}

// BridgeAvailable reports whether RDA files can be loaded.
func (f *Fetcher) BridgeAvailable() bool {
	return f.bridge != nil && f.bridge.Available()
}

// LogEnvironment logs the directories, source URL and RDA settings of the run.
func (f *Fetcher) LogEnvironment(processRDA bool) {
	f.log.Info("annotation environment",
		slog.String("data_dir", filepath.Dir(f.paths.Archive)),
		slog.String("results_dir", filepath.Dir(f.paths.Log)),
		slog.String("url", f.url),
		slog.Bool("process_rda", processRDA),
		slog.Bool("rscript_available", f.BridgeAvailable()))
}

// DownloadIfNeeded fetches the archive unless a non-empty copy exists.
func (f *Fetcher) DownloadIfNeeded(ctx context.Context) (*fetch.Result, error) {
	res, err := f.downloader.Download(ctx, f.url, f.paths.Archive)
	if err != nil {
		return nil, err
	}
	if res.Cached {
		f.log.Info("annotation archive already present", slog.String("path", res.Path))
		return res, nil
	}

	f.log.Info("downloaded annotation archive", slog.String("path", res.Path), slog.Int64("bytes", res.Bytes))
	if _, err := cache.WriteManifest(ctx, res.Path, f.runID, f.manifest); err != nil {
		f.log.Warn("failed to write archive manifest", slog.String("error", err.Error()))
	}
	return res, nil
}

// Extract unpacks the archive into the extraction directory.
func (f *Fetcher) Extract(ctx context.Context) (*archive.Result, error) {
	res, err := archive.SafeExtract(ctx, f.paths.Archive, f.paths.ExtractDir)
	if err != nil {
		return nil, err
	}
	f.log.Info("extracted annotation archive",
		slog.String("dest", f.paths.ExtractDir),
		slog.Int("files", res.Files),
		slog.Int("dirs", res.Dirs),
		slog.Int("links", res.Links))
	return res, nil
}

// DiscoverRDA walks root for the Locations and Other RDA files, matching
// names case-insensitively. The first match in walk order wins.
func DiscoverRDA(root string) (*Files, error) {
	var files Files
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(d.Name()) {
		case LocationsFile:
			if files.Locations == "" {
				files.Locations = path
			}
		case OtherFile:
			if files.Other == "" {
				files.Other = path
			}
		}
		if files.Locations != "" && files.Other != "" {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to walk %s", root), err)
	}

	var missing []string
	if files.Locations == "" {
		missing = append(missing, LocationsFile)
	}
	if files.Other == "" {
		missing = append(missing, OtherFile)
	}
	if len(missing) > 0 {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound,
			fmt.Sprintf("required files not found: %s", strings.Join(missing, ", ")),
			nil, map[string]any{"root": root})
	}
	return &files, nil
}

// LoadAndMerge loads both RDA tables and inner-joins them on IndexColumn.
func (f *Fetcher) LoadAndMerge(ctx context.Context, files *Files) (*table.Table, error) {
	if !f.BridgeAvailable() {
		return nil, errors.New(errors.ErrCodeUnavailable, "no R bridge available to load RDA files")
	}

	locations, err := f.load(ctx, files.Locations)
	if err != nil {
		return nil, err
	}
	other, err := f.load(ctx, files.Other)
	if err != nil {
		return nil, err
	}

	merged, err := table.InnerJoin(locations, other, IndexColumn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to merge annotation tables", err)
	}
	f.log.Info("merged annotation tables",
		slog.Int("rows", len(merged.Rows)),
		slog.Int("columns", len(merged.Columns)))
	return merged, nil
}

func (f *Fetcher) load(ctx context.Context, path string) (*table.Table, error) {
	t, err := f.bridge.LoadTable(ctx, path)
	if err != nil {
		return nil, err
	}
	f.log.Info(fmt.Sprintf("loaded %s", filepath.Base(path)),
		slog.Int("rows", len(t.Rows)),
		slog.Int("columns", len(t.Columns)))
	return t, nil
}

// Export writes t to the merged CSV path and records its manifest.
func (f *Fetcher) Export(ctx context.Context, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := table.WriteCSV(f.paths.Merged, t); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to export merged annotation", err)
	}
	f.log.Info("exported merged annotation", slog.String("path", f.paths.Merged), slog.Int("rows", len(t.Rows)))

	if _, err := cache.WriteManifest(ctx, f.paths.Merged, f.runID, f.manifest); err != nil {
		f.log.Warn("failed to write merged manifest", slog.String("error", err.Error()))
	}
	return nil
}

// Run executes the pipeline steps through r. RDA files are processed only
// when processRDA is set and the bridge is available.
func (f *Fetcher) Run(ctx context.Context, r *step.Runner, processRDA bool) error {
	if err := r.Run(ctx, "Download annotation archive", func(ctx context.Context) error {
		_, err := f.DownloadIfNeeded(ctx)
		return err
	}); err != nil {
		return err
	}

	if err := r.Run(ctx, "Extract .tar.gz archive", func(ctx context.Context) error {
		_, err := f.Extract(ctx)
		return err
	}); err != nil {
		return err
	}

	switch {
	case !processRDA:
		f.log.Info("RDA processing not requested")
	case !f.BridgeAvailable():
		f.log.Warn("Rscript not available, skipping RDA processing")
	default:
		if err := f.processRDA(ctx, r); err != nil {
			return err
		}
	}

	f.log.Info("Finished successfully")
	return nil
}

func (f *Fetcher) processRDA(ctx context.Context, r *step.Runner) error {
	var files *Files
	if err := r.Run(ctx, "Locate RDA files", func(context.Context) error {
		var err error
		files, err = DiscoverRDA(f.paths.ExtractDir)
		return err
	}); err != nil {
		return err
	}

	var merged *table.Table
	if err := r.Run(ctx, "Load and merge RDA tables", func(ctx context.Context) error {
		var err error
		merged, err = f.LoadAndMerge(ctx, files)
		return err
	}); err != nil {
		return err
	}

	return r.Run(ctx, "Export merged annotation", func(ctx context.Context) error {
		return f.Export(ctx, merged)
	})
}
