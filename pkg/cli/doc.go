/*
Copyright © 2025 omicsfetch authors
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the geo-inspect and annotation-extract commands.
//
// # Commands
//
// geo-inspect - Download, parse and summarize a GEO series:
//
//	geo-inspect [--geo-id GSE40279] [--sample-index 0] [--field characteristics_ch1]
//
// Downloads the series SOFT family archive unless it is cached, parses it
// (or loads the parsed cache), logs the first metadata fields of one sample
// and exports the requested phenotype field as a CSV with one row per sample.
//
// annotation-extract - Fetch the Illumina 450k annotation package:
//
//	annotation-extract [--url URL] [--tag Illumina450k] [--process-rda]
//
// Downloads and safely extracts the package archive. With --process-rda and
// an Rscript executable available, the Locations and Other tables are
// inner-joined on the CpG identifier and exported as CSV.
//
// # Shared Flags
//
//	--data-dir       artifacts and caches (env OMICSFETCH_DATA_DIR)
//	--results-dir    exported CSVs and run logs (env OMICSFETCH_RESULTS_DIR)
//	--timeout        HTTP timeout in seconds
//	--no-monitor     disable resource usage reporting
//	--log-level      debug, info, warn or error (env LOG_LEVEL)
//	--log-json       JSON console logs
//	--metrics-file   Prometheus text dump written at the end of the run
//
// Without flags or environment, the directories come from omicsfetch.yaml
// found above the working directory, or default to data/ and results/ next
// to the parent directory of the executable.
//
// # Exit Codes
//
//	0  success
//	1  failure (the error is logged)
//	2  interrupted
//
// Every run writes a plain-text log to the results directory. Each step is
// bracketed by START and DONE (or FAIL) lines carrying its duration and the
// memory, disk and CPU change observed across it.
package cli
