/*
Copyright © 2025 omicsfetch authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/omicsfetch/omicsfetch/pkg/collector"
	"github.com/omicsfetch/omicsfetch/pkg/config"
	"github.com/omicsfetch/omicsfetch/pkg/defaults"
	"github.com/omicsfetch/omicsfetch/pkg/errors"
	"github.com/omicsfetch/omicsfetch/pkg/logging"
	"github.com/omicsfetch/omicsfetch/pkg/paths"
	"github.com/omicsfetch/omicsfetch/pkg/serializer"
	"github.com/omicsfetch/omicsfetch/pkg/snapshotter"
	"github.com/omicsfetch/omicsfetch/pkg/step"
)

var (
	// version is set at build time with -ldflags "-X .../pkg/cli.version=...".
	version = "dev"

	// configOptions controls where configuration is looked up.
	configOptions config.Options

	// consoleWriter overrides the console log sink. Nil means stderr.
	consoleWriter io.Writer
)

// commonFlags returns the flags shared by both commands. A fresh slice is
// built on every call since flags hold parsed state.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"data_dir"},
			Usage:   "directory for downloaded and cached artifacts (default: <project>/data)",
		},
		&cli.StringFlag{
			Name:    "results-dir",
			Aliases: []string{"results_dir"},
			Usage:   "directory for exported CSV files and run logs (default: <project>/results)",
		},
		&cli.BoolFlag{
			Name:  "no-monitor",
			Usage: "disable CPU, memory and disk usage reporting",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, warn, error)",
		},
		&cli.BoolFlag{
			Name:  "log-json",
			Usage: "write console logs as JSON",
		},
		&cli.StringFlag{
			Name:  "manifest-format",
			Value: defaults.ManifestFormat,
			Usage: fmt.Sprintf("format of manifest sidecar files (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "write Prometheus metrics in text format to this file when the run ends",
		},
	}
}

func timeoutFlag(def time.Duration) *cli.IntFlag {
	return &cli.IntFlag{
		Name:  "timeout",
		Value: int(def / time.Second),
		Usage: "HTTP timeout in seconds",
	}
}

// timeout reads the --timeout flag as a duration.
func timeout(cmd *cli.Command) (time.Duration, error) {
	secs := cmd.Int("timeout")
	if secs <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("--timeout must be positive, got %d", secs))
	}
	return time.Duration(secs) * time.Second, nil
}

// manifestFormat reads the --manifest-format flag.
func manifestFormat(cmd *cli.Command) (serializer.Format, error) {
	f, err := serializer.ParseFormat(cmd.String("manifest-format"))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidRequest, "invalid --manifest-format", err)
	}
	return f, nil
}

// loadConfig resolves the configuration and applies flag overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(configOptions)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to load configuration", err)
	}
	if v := strings.TrimSpace(cmd.String("data-dir")); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(cmd.String("results-dir")); v != "" {
		cfg.ResultsDir = v
	}
	if v := strings.TrimSpace(cmd.String("log-level")); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}

func dirs(cfg *config.Config) paths.Dirs {
	return paths.Dirs{Data: cfg.DataDir, Results: cfg.ResultsDir}
}

// session holds the per-run logger, monitor and step runner.
type session struct {
	log         *slog.Logger
	runID       string
	monitor     *snapshotter.Monitor
	runner      *step.Runner
	metricsFile string
	closeLog    func() error
	prevLogger  *slog.Logger
}

// reportedError marks an error already written to the run log.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// startSession installs the run logger writing to logPath and builds the
// resource monitor and step runner.
func startSession(cmd *cli.Command, cfg *config.Config, logPath string) (*session, error) {
	prev := slog.Default()
	logger, closeLog, err := logging.Setup(logging.Options{
		Name:     cmd.Name,
		Version:  version,
		FilePath: logPath,
		Level:    cfg.LogLevel,
		JSON:     cmd.Bool("log-json"),
		Console:  consoleWriter,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to set up logging", err)
	}

	noMonitor := cmd.Bool("no-monitor")
	factory := collector.NewDefaultFactory()
	factory.DiskPath = cfg.DataDir
	monitor := snapshotter.NewMonitor(
		snapshotter.WithFactory(factory),
		snapshotter.WithDisabled(noMonitor),
	)

	s := &session{
		log:         logger,
		runID:       uuid.NewString(),
		monitor:     monitor,
		runner:      step.NewRunner(monitor, step.WithLogger(logger), step.WithDelta(!noMonitor)),
		metricsFile: cmd.String("metrics-file"),
		closeLog:    closeLog,
		prevLogger:  prev,
	}

	logger.Info(fmt.Sprintf("%s %s", cmd.Name, version),
		slog.String("run_id", s.runID),
		slog.String("log_file", logPath))
	if cfg.ProjectFile != "" {
		logger.Info("project configuration loaded", slog.String("path", cfg.ProjectFile))
	}
	return s, nil
}

// finish logs a failed run. The returned error wraps err.
func (s *session) finish(err error) error {
	if err == nil {
		return nil
	}
	s.log.Error("run failed",
		slog.String("error", err.Error()),
		slog.String("code", string(errors.CodeOf(err))))
	return &reportedError{err: err}
}

// close writes the metrics file, if requested, and closes the run log.
func (s *session) close() {
	if s.metricsFile != "" {
		if err := prometheus.WriteToTextfile(s.metricsFile, prometheus.DefaultGatherer); err != nil {
			s.log.Warn("failed to write metrics file", slog.String("path", s.metricsFile), slog.String("error", err.Error()))
		} else {
			s.log.Debug("metrics written", slog.String("path", s.metricsFile))
		}
	}
	slog.SetDefault(s.prevLogger)
	if err := s.closeLog(); err != nil {
		slog.Warn("failed to close log file", slog.String("error", err.Error()))
	}
}

// Run executes cmd with args and returns the process exit code: 0 on
// success, 2 when ctx was canceled and 1 for any other failure.
func Run(ctx context.Context, cmd *cli.Command, args []string) int {
	err := cmd.Run(ctx, args)
	var reported *reportedError
	if err != nil && !stderrors.As(err, &reported) {
		slog.Error("command failed", slog.String("command", cmd.Name), slog.String("error", err.Error()))
	}
	if err != nil && ctx.Err() != nil {
		return errors.ExitCanceled
	}
	return errors.ExitCode(err)
}
