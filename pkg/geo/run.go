package geo

import (
	"context"

	"github.com/omicsfetch/omicsfetch/pkg/geo/soft"
	"github.com/omicsfetch/omicsfetch/pkg/step"
)

// Run executes the GEO pipeline through r: download, parse or load, inspect
// the sample at sampleIndex, summarize field and verify the cache.
func (f *Fetcher) Run(ctx context.Context, r *step.Runner, sampleIndex int, field string) error {
	if err := r.Run(ctx, "Download SOFT file", f.DownloadArchive); err != nil {
		return err
	}

	var series *soft.Series
	if err := r.Run(ctx, "Parse or load GSE object", func(ctx context.Context) error {
		var err error
		series, err = f.LoadOrParse(ctx)
		return err
	}); err != nil {
		return err
	}

	if err := r.Run(ctx, "Inspect one sample", func(context.Context) error {
		return f.InspectRecord(series, sampleIndex)
	}); err != nil {
		return err
	}

	if err := r.Run(ctx, "Summarize phenotype field", func(ctx context.Context) error {
		_, err := f.SummarizeAndExport(ctx, series, field)
		return err
	}); err != nil {
		return err
	}

	if err := r.Run(ctx, "Verify GSE object", func(ctx context.Context) error {
		f.VerifyCache(ctx)
		return nil
	}); err != nil {
		return err
	}

	f.log.Info("Completed all steps")
	return nil
}
