// Package step wraps a unit of pipeline work in a timing and resource bracket.
//
// Every step logs a start marker, runs the work, and always logs a closing
// line: either the resource delta and "DONE: <title> in H:MM:SS", or
// "FAIL: <title> (duration H:MM:SS)". Errors are returned unchanged and
// panics are re-raised after the failure line is written.
//
// Usage:
//
//	r := step.NewRunner(monitor)
//	err := r.Run(ctx, "Download SOFT file", func(ctx context.Context) error {
//	    return fetcher.DownloadArchive(ctx)
//	})
package step
