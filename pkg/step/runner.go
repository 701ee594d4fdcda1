package step

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/omicsfetch/omicsfetch/pkg/snapshotter"
)

// Func is a unit of work executed by a Runner.
type Func func(ctx context.Context) error

// Runner executes steps inside a timing and resource-delta bracket.
type Runner struct {
	snap        snapshotter.Snapshotter
	logger      *slog.Logger
	reportDelta bool
	now         func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Defaults to slog.Default() at run time.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithDelta controls whether the resource delta line is logged on success.
func WithDelta(enabled bool) Option {
	return func(r *Runner) {
		r.reportDelta = enabled
	}
}

// NewRunner returns a Runner taking snapshots from s. A nil s disables snapshots.
func NewRunner(s snapshotter.Snapshotter, opts ...Option) *Runner {
	r := &Runner{
		snap:        s,
		reportDelta: s != nil,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run logs the start of title, runs fn and logs the outcome. The error
// returned by fn is returned as is; a panic in fn is logged and re-raised.
func (r *Runner) Run(ctx context.Context, title string, fn Func) (err error) {
	log := r.logger
	if log == nil {
		log = slog.Default()
	}

	log.Info("START: " + title)
	before := r.snapshot(ctx)
	start := r.now()

	defer func() {
		elapsed := r.now().Sub(start)
		stepDuration.WithLabelValues(title).Observe(elapsed.Seconds())

		if p := recover(); p != nil {
			stepTotal.WithLabelValues("panic").Inc()
			log.Error(fmt.Sprintf("FAIL: %s (duration %s)", title, FormatDuration(elapsed)),
				slog.Any("panic", p))
			panic(p)
		}

		after := r.snapshot(ctx)

		if err != nil {
			stepTotal.WithLabelValues("error").Inc()
			log.Error(fmt.Sprintf("FAIL: %s (duration %s)", title, FormatDuration(elapsed)),
				slog.String("error", err.Error()))
			return
		}

		stepTotal.WithLabelValues("success").Inc()
		if r.reportDelta {
			log.Info(snapshotter.FormatDelta(snapshotter.Delta(before, after)))
		}
		log.Info(fmt.Sprintf("DONE: %s in %s", title, FormatDuration(elapsed)))
	}()

	return fn(ctx)
}

func (r *Runner) snapshot(ctx context.Context) snapshotter.Snapshot {
	if r.snap == nil {
		return snapshotter.Snapshot{}
	}
	return r.snap.Snapshot(ctx)
}

// FormatDuration renders d as H:MM:SS after rounding to whole seconds
// (half to even). Durations of a day or more get a "N day(s), " prefix.
func FormatDuration(d time.Duration) string {
	secs := int64(math.RoundToEven(d.Seconds()))
	if secs < 0 {
		secs = 0
	}

	days := secs / 86400
	secs %= 86400
	hms := fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)

	switch {
	case days == 1:
		return "1 day, " + hms
	case days > 1:
		return fmt.Sprintf("%d days, %s", days, hms)
	default:
		return hms
	}
}
