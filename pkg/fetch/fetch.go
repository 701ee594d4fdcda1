// Package fetch downloads remote archives into the local cache.
package fetch

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/omicsfetch/omicsfetch/pkg/cache"
	"github.com/omicsfetch/omicsfetch/pkg/defaults"
	"github.com/omicsfetch/omicsfetch/pkg/errors"
)

// Result describes the outcome of Download.
type Result struct {
	// Path is the destination file.
	Path string

	// Bytes is the number of bytes written. Zero for cache hits.
	Bytes int64

	// Cached is true when the destination was already valid and no request was made.
	Cached bool
}

// Downloader performs plain HTTP GET downloads.
type Downloader struct {
	client           *http.Client
	timeout          time.Duration
	progressInterval time.Duration
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithTimeout sets the connect and response-header timeout. The body transfer
// is bounded only by the context.
func WithTimeout(d time.Duration) Option {
	return func(dl *Downloader) {
		dl.timeout = d
	}
}

// WithHTTPClient overrides the HTTP client. WithTimeout has no effect on a
// custom client.
func WithHTTPClient(c *http.Client) Option {
	return func(dl *Downloader) {
		dl.client = c
	}
}

// WithProgressInterval sets the minimum interval between progress log lines.
func WithProgressInterval(d time.Duration) Option {
	return func(dl *Downloader) {
		dl.progressInterval = d
	}
}

// NewDownloader returns a Downloader configured with opts.
func NewDownloader(opts ...Option) *Downloader {
	dl := &Downloader{
		timeout:          defaults.AnnotationHTTPTimeout,
		progressInterval: defaults.DownloadProgressInterval,
	}
	for _, opt := range opts {
		opt(dl)
	}
	if dl.client == nil {
		dl.client = newClient(dl.timeout)
	}
	return dl
}

func newClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: timeout}).DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: transport}
}

// Download fetches url into dest unless dest is already a valid cache entry.
// The body is written to a temporary file in dest's directory and renamed
// into place only after the transfer completes.
func (d *Downloader) Download(ctx context.Context, url, dest string) (*Result, error) {
	if cache.Lookup("download", dest) {
		slog.Info("using cached file", slog.String("path", dest))
		downloadTotal.WithLabelValues("cached").Inc()
		return &Result{Path: dest, Cached: true}, nil
	}

	start := time.Now()
	n, err := d.get(ctx, url, dest)
	downloadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		downloadTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	downloadTotal.WithLabelValues("success").Inc()
	downloadBytes.Add(float64(n))
	slog.Info("download complete",
		slog.String("path", dest),
		slog.Int64("bytes", n),
		slog.Duration("elapsed", time.Since(start)))

	return &Result{Path: dest, Bytes: n}, nil
}

func (d *Downloader) get(ctx context.Context, url, dest string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, "failed to create download directory", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid download url %q", url), err)
	}

	slog.Info("downloading", slog.String("url", url), slog.String("dest", dest))

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, classify(ctx, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, errors.WrapWithContext(errors.ErrCodeUnavailable,
			fmt.Sprintf("download failed with HTTP status %s", resp.Status), nil,
			map[string]any{"url": url, "status": resp.StatusCode})
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".part-*")
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, "failed to create temporary file", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	pw := &progressWriter{
		url:   url,
		total: resp.ContentLength,
		every: rate.Sometimes{Interval: d.progressInterval},
	}
	n, copyErr := io.Copy(io.MultiWriter(tmp, pw), resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		return 0, classify(ctx, url, copyErr)
	}
	if closeErr != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, "failed to flush download", closeErr)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to move download into %s", dest), err)
	}
	committed = true
	return n, nil
}

func classify(ctx context.Context, url string, err error) error {
	var netErr net.Error
	switch {
	case stderrors.Is(ctx.Err(), context.Canceled):
		return ctx.Err()
	case stderrors.Is(err, context.DeadlineExceeded),
		stderrors.As(err, &netErr) && netErr.Timeout():
		return errors.WrapWithContext(errors.ErrCodeTimeout, "download timed out", err, map[string]any{"url": url})
	default:
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "download failed", err, map[string]any{"url": url})
	}
}

// progressWriter logs transfer progress at most once per interval.
type progressWriter struct {
	url     string
	total   int64
	written int64
	every   rate.Sometimes
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	p.every.Do(func() {
		attrs := []any{slog.String("url", p.url), slog.Int64("bytes", p.written)}
		if p.total > 0 {
			attrs = append(attrs, slog.String("percent", fmt.Sprintf("%.1f", float64(p.written)*100/float64(p.total))))
		}
		slog.Info("download progress", attrs...)
	})
	return len(b), nil
}
