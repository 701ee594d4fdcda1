package step

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, status string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, stepTotal.WithLabelValues(status).Write(&m))
	return m.GetCounter().GetValue()
}

func sampleCount(t *testing.T, title string) uint64 {
	t.Helper()
	var m dto.Metric
	h, ok := stepDuration.WithLabelValues(title).(interface{ Write(*dto.Metric) error })
	require.True(t, ok)
	require.NoError(t, h.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestRun_RecordsMetrics(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRunner(&buf, nil, time.Second)

	successes, failures := counterValue(t, "success"), counterValue(t, "error")
	observed := sampleCount(t, "metrics step")

	require.NoError(t, r.Run(context.Background(), "metrics step", func(context.Context) error { return nil }))
	require.Error(t, r.Run(context.Background(), "metrics step", func(context.Context) error { return errors.New("boom") }))

	assert.Equal(t, successes+1, counterValue(t, "success"))
	assert.Equal(t, failures+1, counterValue(t, "error"))
	assert.Equal(t, observed+2, sampleCount(t, "metrics step"))
}
