// Package rbridge loads tables stored in R data files (.rda) by running an
// external Rscript process. The bridge is optional: callers check Available
// and skip RDA processing when no interpreter is installed.
package rbridge

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/omicsfetch/omicsfetch/pkg/defaults"
	"github.com/omicsfetch/omicsfetch/pkg/errors"
	"github.com/omicsfetch/omicsfetch/pkg/table"
)

//go:embed convert.R
var convertScript []byte

// DefaultIndexColumn names the column holding the R row names.
const DefaultIndexColumn = "CpG"

// Bridge loads tables from R data files.
type Bridge interface {
	// Available reports whether the bridge can run.
	Available() bool

	// LoadTable converts the object in rdaPath to a table whose first column
	// holds the row names.
	LoadTable(ctx context.Context, rdaPath string) (*table.Table, error)
}

// Rscript is a Bridge backed by the Rscript executable.
type Rscript struct {
	// Binary is the executable name or path.
	Binary string

	// IndexColumn names the row-name column.
	IndexColumn string

	// Timeout bounds one conversion.
	Timeout time.Duration
}

// NewRscript returns a bridge running binary. An empty binary uses "Rscript".
func NewRscript(binary string) *Rscript {
	if binary == "" {
		binary = defaults.RscriptBinary
	}
	return &Rscript{
		Binary:      binary,
		IndexColumn: DefaultIndexColumn,
		Timeout:     defaults.RBridgeTimeout,
	}
}

// Available reports whether Binary can be found.
func (r *Rscript) Available() bool {
	_, err := exec.LookPath(r.Binary)
	return err == nil
}

// LoadTable runs the conversion script on rdaPath and reads the CSV it writes.
// The object named like the file (Locations.rda -> Locations) is used when
// present, otherwise the first object in the file.
func (r *Rscript) LoadTable(ctx context.Context, rdaPath string) (*table.Table, error) {
	if !r.Available() {
		return nil, errors.New(errors.ErrCodeUnavailable, fmt.Sprintf("%s not found in PATH", r.Binary))
	}

	work, err := os.MkdirTemp("", "omicsfetch-rbridge-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create bridge work directory", err)
	}
	defer func() { _ = os.RemoveAll(work) }()

	script := filepath.Join(work, "convert.R")
	if err := os.WriteFile(script, convertScript, 0o600); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to write bridge script", err)
	}
	out := filepath.Join(work, "table.csv")

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	index := r.IndexColumn
	if index == "" {
		index = DefaultIndexColumn
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Binary, "--vanilla", script, rdaPath, out, index)
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, fmt.Sprintf("conversion of %s did not finish", rdaPath), ctx.Err())
		}
		return nil, errors.WrapWithContext(errors.ErrCodeInternal,
			fmt.Sprintf("conversion of %s failed", rdaPath), err,
			map[string]any{"stderr": strings.TrimSpace(stderr.String())})
	}

	t, err := table.ReadCSV(out)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read converted table", err)
	}

	slog.Debug("loaded rda table",
		slog.String("path", rdaPath),
		slog.Int("rows", len(t.Rows)),
		slog.Int("columns", len(t.Columns)),
		slog.Duration("elapsed", time.Since(start)))
	return t, nil
}
