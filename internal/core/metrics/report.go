package metrics

import (
	"sort"
	"time"
)

// ComplianceEntry flags whether one metric's window mean meets its target.
// HasData is false when the window was empty at report time.
type ComplianceEntry struct {
	Metric    string  `json:"metric"`
	TargetMs  float64 `json:"target_ms"`
	MeanMs    float64 `json:"mean_ms"`
	Samples   int     `json:"samples"`
	HasData   bool    `json:"has_data"`
	Compliant bool    `json:"compliant"`
}

// BenchmarkSummary is one benchmark's derived statistics for the report.
type BenchmarkSummary struct {
	Name       string        `json:"name"`
	Iterations int           `json:"iterations"`
	Errors     int           `json:"errors"`
	Stats      DurationStats `json:"stats"`
}

// Report is the full compliance snapshot of one monitoring session.
type Report struct {
	GeneratedAt       time.Time          `json:"generated_at"`
	SessionID         string             `json:"session_id"`
	ConfigFingerprint string             `json:"config_fingerprint"`
	Realtime          RealtimeStats      `json:"realtime"`
	Compliance        []ComplianceEntry  `json:"compliance"`
	Benchmarks        []BenchmarkSummary `json:"benchmarks"`
	Errors            ErrorStats         `json:"errors"`
}

// Reporter reads from the collector, runner and aggregator without
// mutating any of them. Repeated calls within one session yield
// monotonically updated, always consistent snapshots.
type Reporter struct {
	collector *Collector
	runner    *Runner
	errs      *Aggregator
}

func NewReporter(collector *Collector, runner *Runner, errs *Aggregator) *Reporter {
	return &Reporter{collector: collector, runner: runner, errs: errs}
}

// Generate assembles the report from component state at call time.
func (r *Reporter) Generate() Report {
	cfg := r.collector.Config()
	realtime := r.collector.RealtimeStats()

	compliance := make([]ComplianceEntry, 0, 3)
	for kind, stats := range map[Kind]WindowStats{
		KindFrame:     realtime.FrameTime,
		KindDetection: realtime.DetectionTime,
		KindLandmark:  realtime.LandmarkTime,
	} {
		target, ok := cfg.Target(kind)
		if !ok {
			continue
		}
		compliance = append(compliance, ComplianceEntry{
			Metric:    kind.String(),
			TargetMs:  target,
			MeanMs:    stats.Mean,
			Samples:   stats.Count,
			HasData:   stats.Count > 0,
			Compliant: stats.Count > 0 && stats.Mean <= target,
		})
	}
	sort.Slice(compliance, func(i, j int) bool { return compliance[i].Metric < compliance[j].Metric })

	results := r.runner.Results()
	benchmarks := make([]BenchmarkSummary, 0, len(results))
	for name, result := range results {
		benchmarks = append(benchmarks, BenchmarkSummary{
			Name:       name,
			Iterations: result.Iterations,
			Errors:     result.Errors,
			Stats:      result.Stats(),
		})
	}
	sort.Slice(benchmarks, func(i, j int) bool { return benchmarks[i].Name < benchmarks[j].Name })

	return Report{
		GeneratedAt:       time.Now(),
		SessionID:         realtime.SessionID,
		ConfigFingerprint: cfg.Fingerprint(),
		Realtime:          realtime,
		Compliance:        compliance,
		Benchmarks:        benchmarks,
		Errors:            r.errs.Statistics(),
	}
}
