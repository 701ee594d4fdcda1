/*
Copyright © 2025 omicsfetch authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omicsfetch/omicsfetch/pkg/annotation"
	"github.com/omicsfetch/omicsfetch/pkg/defaults"
	"github.com/omicsfetch/omicsfetch/pkg/errors"
	"github.com/omicsfetch/omicsfetch/pkg/fetch"
	"github.com/omicsfetch/omicsfetch/pkg/paths"
	"github.com/omicsfetch/omicsfetch/pkg/rbridge"
)

// AnnotationCommand returns the annotation-extract command.
func AnnotationCommand() *cli.Command {
	return &cli.Command{
		Name:                  "annotation-extract",
		EnableShellCompletion: true,
		Version:               version,
		Usage:                 "Download and extract the Illumina 450k annotation package",
		Description: `Downloads the annotation package archive, extracts it with path traversal
protection and, with --process-rda, merges the Locations and Other tables
into one CSV keyed by CpG identifier. RDA processing needs an Rscript executable
and is skipped with a warning when none is found.

# Examples

Download and extract only:
  annotation-extract

Also merge the RDA tables:
  annotation-extract --process-rda --rscript /usr/local/bin/Rscript`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   defaults.AnnotationURL,
				Usage:   "annotation package archive URL",
				Sources: cli.EnvVars("OMICSFETCH_ANNOTATION_URL"),
			},
			&cli.StringFlag{
				Name:  "tag",
				Value: defaults.AnnotationName,
				Usage: "name used for the archive and output files",
			},
			&cli.StringFlag{
				Name:    "geo-id",
				Aliases: []string{"geo_id"},
				Usage:   "GEO accession used to label the run log (default: the tag)",
			},
			&cli.BoolFlag{
				Name:    "process-rda",
				Aliases: []string{"process_rda"},
				Usage:   "load, merge and export the RDA tables",
			},
			&cli.StringFlag{
				Name:  "rscript",
				Value: defaults.RscriptBinary,
				Usage: "Rscript executable used to read RDA files",
			},
			timeoutFlag(defaults.AnnotationHTTPTimeout),
		}, commonFlags()...),
		Action: runAnnotation,
	}
}

func runAnnotation(ctx context.Context, cmd *cli.Command) error {
	url := strings.TrimSpace(cmd.String("url"))
	if url == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "--url must not be empty")
	}
	tag := strings.TrimSpace(cmd.String("tag"))
	if tag == "" || strings.ContainsAny(tag, `/\`) {
		return errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid --tag %q", tag))
	}
	processRDA := cmd.Bool("process-rda")
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

	layout, err := paths.ForAnnotation(dirs(cfg), tag, strings.TrimSpace(cmd.String("geo-id")))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to prepare directories", err)
	}

	s, err := startSession(cmd, cfg, layout.Log)
	if err != nil {
		return err
	}
	defer s.close()
	defer func() {
		s.log.Info(fmt.Sprintf("Completed at %s", time.Now().Format(time.DateTime)))
	}()

	f := annotation.NewFetcher(layout, url,
		fetch.NewDownloader(fetch.WithTimeout(httpTimeout)),
		annotation.WithBridge(rbridge.NewRscript(cmd.String("rscript"))),
		annotation.WithRunID(s.runID),
		annotation.WithManifestFormat(format),
		annotation.WithLogger(s.log))

	f.LogEnvironment(processRDA)
	s.monitor.Report(ctx)

	return s.finish(f.Run(ctx, s.runner, processRDA))
}
