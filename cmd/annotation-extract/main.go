/*
Copyright © 2025 omicsfetch authors
SPDX-License-Identifier: Apache-2.0
*/

// Command annotation-extract downloads and safely extracts the Illumina 450k annotation package.
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
	code := cli.Run(ctx, cli.AnnotationCommand(), os.Args)
	stop()
	os.Exit(code)
}
