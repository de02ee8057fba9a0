package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synopticon/visionmetrics/internal/core/observability/log"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(cfg, log.Nop())
	require.NoError(t, err)
	return e
}

func TestReporter_CompliantSession(t *testing.T) {
	cfg := DefaultConfig()
	e := newTestEngine(t, cfg)
	e.Start()

	for i := 0; i < 10; i++ {
		require.NoError(t, e.RecordFrameTime(16))
		require.NoError(t, e.RecordDetectionTime(30))
		require.NoError(t, e.RecordLandmarkTime(10))
	}

	report := e.GenerateReport()
	require.Len(t, report.Compliance, 3)
	for _, entry := range report.Compliance {
		assert.True(t, entry.HasData, entry.Metric)
		assert.True(t, entry.Compliant, entry.Metric)
	}
	assert.Equal(t, cfg.Fingerprint(), report.ConfigFingerprint)
	assert.NotEmpty(t, report.SessionID)
}

func TestReporter_NonCompliantMetricFlagged(t *testing.T) {
	cfg := DefaultConfig()
	e := newTestEngine(t, cfg)
	e.Start()

	// Mean exceeds target but stays below the warning bound.
	require.NoError(t, e.RecordDetectionTime(cfg.TargetDetectionTimeMs * 1.2))

	report := e.GenerateReport()
	for _, entry := range report.Compliance {
		if entry.Metric == "detection" {
			assert.True(t, entry.HasData)
			assert.False(t, entry.Compliant)
		}
	}
}

func TestReporter_EmptyWindowsHaveNoData(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	e.Start()

	report := e.GenerateReport()
	require.Len(t, report.Compliance, 3)
	for _, entry := range report.Compliance {
		assert.False(t, entry.HasData)
		assert.False(t, entry.Compliant)
	}
	assert.Empty(t, report.Benchmarks)
	assert.Zero(t, report.Errors.Total)
}

func TestReporter_IncludesBenchmarksSorted(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	e.Start()

	_, err := e.RunBenchmark("warp", func() error { return nil }, 3)
	require.NoError(t, err)
	_, err = e.RunBenchmark("align", func() error { return errors.New("fail") }, 2)
	require.NoError(t, err)

	report := e.GenerateReport()
	require.Len(t, report.Benchmarks, 2)
	assert.Equal(t, "align", report.Benchmarks[0].Name)
	assert.Equal(t, "warp", report.Benchmarks[1].Name)
	assert.Equal(t, 2, report.Benchmarks[0].Errors)
	assert.Equal(t, 3, report.Benchmarks[1].Stats.Count)
}

func TestReporter_DoesNotMutateState(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	e.Start()
	require.NoError(t, e.RecordFrameTime(16))

	first := e.GenerateReport()
	second := e.GenerateReport()

	assert.Equal(t, first.Realtime.FrameTime, second.Realtime.FrameTime)
	assert.Equal(t, first.Errors, second.Errors)
	assert.Equal(t, first.SessionID, second.SessionID)
}

func TestEngine_DuplicateStartRecordsInfoNote(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	first := e.Start()
	second := e.Start()

	assert.Equal(t, first, second)
	stats := e.ErrorStatistics()
	assert.Equal(t, 1, stats.BySeverity[SeverityInfo])
	assert.Equal(t, 1, stats.ByCategory[CategoryOther])
}

func TestEngine_RestartResetsErrorsAndBenchmarks(t *testing.T) {
	cfg := DefaultConfig()
	e := newTestEngine(t, cfg)
	e.Start()

	require.NoError(t, e.RecordFrameTime(cfg.TargetFrameTimeMs*cfg.CriticalMultiplier))
	_, err := e.RunBenchmark("op", func() error { return nil }, 2)
	require.NoError(t, err)
	require.NoError(t, e.Stop())

	e.Start()
	assert.Zero(t, e.ErrorStatistics().Total)
	assert.Empty(t, e.GenerateReport().Benchmarks)
}

func TestEngine_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowCapacity = 0

	_, err := New(cfg, log.Nop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
