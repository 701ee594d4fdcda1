/*
Copyright © 2025 omicsfetch authors
SPDX-License-Identifier: Apache-2.0
*/

// Command geo-inspect downloads a GEO series, inspects one sample and exports a phenotype summary.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/omicsfetch/omicsfetch/pkg/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, cli.GEOCommand(), os.Args)
	stop()
	os.Exit(code)
}
