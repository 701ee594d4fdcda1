package step

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omicsfetch/omicsfetch/pkg/snapshotter"
)

type fakeSnapshotter struct {
	snaps []snapshotter.Snapshot
	calls int
}

func (f *fakeSnapshotter) Snapshot(_ context.Context) snapshotter.Snapshot {
	s := f.snaps[f.calls%len(f.snaps)]
	f.calls++
	return s
}

// fakeClock advances by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now := t
		t = t.Add(step)
		return now
	}
}

func newTestRunner(buf *bytes.Buffer, s snapshotter.Snapshotter, clockStep time.Duration) *Runner {
	r := NewRunner(s, WithLogger(slog.New(slog.NewTextHandler(buf, nil))))
	r.now = fakeClock(clockStep)
	return r
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00:00"},
		{3661 * time.Second, "1:01:01"},
		{59 * time.Second, "0:00:59"},
		{1500 * time.Millisecond, "0:00:02"},
		{2500 * time.Millisecond, "0:00:02"},
		{499 * time.Millisecond, "0:00:00"},
		{-5 * time.Second, "0:00:00"},
		{24 * time.Hour, "1 day, 0:00:00"},
		{50*time.Hour + 30*time.Second, "2 days, 2:00:30"},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func TestRun_Success(t *testing.T) {
	var buf bytes.Buffer
	snaps := &fakeSnapshotter{snaps: []snapshotter.Snapshot{
		{MemUsed: 100 * 1024 * 1024},
		{MemUsed: 150 * 1024 * 1024, CPUPercent: 10},
	}}
	r := newTestRunner(&buf, snaps, 3661*time.Second)

	ran := false
	err := r.Run(context.Background(), "Parse SOFT", func(context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 2, snaps.calls)

	out := buf.String()
	assert.Contains(t, out, "START: Parse SOFT")
	assert.Contains(t, out, "RSS Δ +50.00 MB | Disk Δ +0.00 MB | CPU 10.0%")
	assert.Contains(t, out, "DONE: Parse SOFT in 1:01:01")
	assert.Less(t, strings.Index(out, "START"), strings.Index(out, "DONE"))
}

func TestRun_ErrorReturnedUnchanged(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRunner(&buf, &fakeSnapshotter{snaps: []snapshotter.Snapshot{{}}}, 2*time.Second)

	sentinel := errors.New("network down")
	err := r.Run(context.Background(), "Download", func(context.Context) error {
		return sentinel
	})

	assert.Same(t, sentinel, err)
	out := buf.String()
	assert.Contains(t, out, "FAIL: Download (duration 0:00:02)")
	assert.Contains(t, out, "network down")
	assert.NotContains(t, out, "DONE:")
	assert.NotContains(t, out, "RSS Δ")
}

func TestRun_PanicIsLoggedAndReraised(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRunner(&buf, nil, time.Second)

	assert.PanicsWithValue(t, "boom", func() {
		_ = r.Run(context.Background(), "Inspect", func(context.Context) error {
			panic("boom")
		})
	})
	assert.Contains(t, buf.String(), "FAIL: Inspect (duration 0:00:01)")
}

func TestRun_WithoutDelta(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRunner(&buf, &fakeSnapshotter{snaps: []snapshotter.Snapshot{{}}}, time.Second)
	WithDelta(false)(r)

	require.NoError(t, r.Run(context.Background(), "Verify", func(context.Context) error { return nil }))
	assert.NotContains(t, buf.String(), "RSS Δ")
	assert.Contains(t, buf.String(), "DONE: Verify in 0:00:01")
}

func TestRun_NilSnapshotterSkipsDelta(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRunner(&buf, nil, 0)

	require.NoError(t, r.Run(context.Background(), "Export", func(context.Context) error { return nil }))
	assert.NotContains(t, buf.String(), "RSS Δ")
}

func TestRun_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	var buf bytes.Buffer
	r := newTestRunner(&buf, nil, 0)
	require.NoError(t, r.Run(ctx, "ctx", func(got context.Context) error {
		assert.Equal(t, "v", got.Value(key{}))
		return nil
	}))
}
