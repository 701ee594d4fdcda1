// Package annotation downloads the Illumina 450k annotation package,
// extracts it safely and, when an R interpreter is available, merges the
// Locations and Other tables into one CSV keyed by CpG identifier.
//
// The run is a fixed sequence of steps executed by a step.Runner:
//
//	f := annotation.NewFetcher(layout, url, fetch.NewDownloader(), annotation.WithBridge(bridge))
//	f.LogEnvironment(processRDA)
//	err := f.Run(ctx, runner, processRDA)
//
// Downloads are skipped when the archive already exists and is non-empty.
// Extraction validates every entry before anything is written and refuses
// archives whose entries resolve outside the extraction directory.
package annotation
