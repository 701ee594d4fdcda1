/*
Copyright © 2025 omicsfetch authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/omicsfetch/omicsfetch/pkg/defaults"
	"github.com/omicsfetch/omicsfetch/pkg/errors"
	"github.com/omicsfetch/omicsfetch/pkg/fetch"
	"github.com/omicsfetch/omicsfetch/pkg/geo"
	"github.com/omicsfetch/omicsfetch/pkg/geo/soft"
	"github.com/omicsfetch/omicsfetch/pkg/paths"
)

// GEOCommand returns the geo-inspect command.
func GEOCommand() *cli.Command {
	return &cli.Command{
		Name:                  "geo-inspect",
		EnableShellCompletion: true,
		Version:               version,
		Usage:                 "Download, parse and summarize a GEO series",
		Description: `Downloads the SOFT family archive of a GEO series, parses it into a
cached series object, prints the metadata of one sample and exports one
phenotype field as a flattened CSV.

Steps run in a fixed order, each logged with its duration and resource delta:
  1. Download SOFT file (skipped when the archive is already cached)
  2. Parse or load GSE object (skipped when the parsed cache is valid)
  3. Inspect one sample
  4. Summarize phenotype field
  5. Verify GSE object

# Examples

Inspect the default series:
  geo-inspect

Summarize the first sample of another series into custom directories:
  geo-inspect --geo-id GSE12345 --sample-index 0 --data-dir ./data --results-dir ./results`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "geo-id",
				Aliases: []string{"geo_id"},
				Value:   defaults.GEOAccession,
				Usage:   "GEO series accession (e.g. GSE40279)",
				Sources: cli.EnvVars("OMICSFETCH_GEO_ID"),
			},
			&cli.IntFlag{
				Name:    "sample-index",
				Aliases: []string{"sample_index"},
				Value:   0,
				Usage:   "zero-based index of the sample to inspect",
			},
			&cli.StringFlag{
				Name:  "field",
				Value: defaults.PhenotypeField,
				Usage: "sample metadata field to summarize",
			},
			&cli.StringFlag{
				Name:  "geo-base-url",
				Usage: "base URL of the GEO download site",
			},
			timeoutFlag(defaults.GEOHTTPTimeout),
		}, commonFlags()...),
		Action: runGEO,
	}
}

func runGEO(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.String("geo-id"))
	if err := geo.ValidateAccession(id); err != nil {
		return err
	}
	if !strings.HasPrefix(id, string(soft.TypeSeries)) {
		return errors.New(errors.ErrCodeInvalidRequest, "only GSE series accessions can be inspected")
	}
	index := cmd.Int("sample-index")
	field := strings.TrimSpace(cmd.String("field"))
	if field == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "--field must not be empty")
	}
	httpTimeout, err := timeout(cmd)
	if err != nil {
		return err
	}
	format, err := manifestFormat(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(cmd.String("geo-base-url")); v != "" {
		cfg.GEOBaseURL = v
	}

	layout, err := paths.ForGEO(dirs(cfg), id)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to prepare directories", err)
	}

	s, err := startSession(cmd, cfg, layout.Log)
	if err != nil {
		return err
	}
	defer s.close()

	client := geo.NewClient(cfg.GEOBaseURL, fetch.NewDownloader(fetch.WithTimeout(httpTimeout)))
	f := geo.NewFetcher(layout, client, geo.WithRunID(s.runID), geo.WithManifestFormat(format), geo.WithLogger(s.log))

	s.log.Info("starting GEO dataset inspection",
		slog.String("geo_id", id),
		slog.Int("sample_index", index),
		slog.String("field", field),
		slog.String("data_dir", cfg.DataDir),
		slog.String("results_dir", cfg.ResultsDir),
		slog.String("base_url", cfg.GEOBaseURL))
	s.monitor.Report(ctx)

	return s.finish(f.Run(ctx, s.runner, index, field))
}
