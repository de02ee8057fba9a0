package metrics

import (
	"github.com/google/uuid"

	"github.com/synopticon/visionmetrics/internal/core/observability/log"
)

// Engine is the single entry point handed to a host pipeline. It owns the
// collector, benchmark runner, error aggregator and reporter for one
// explicitly constructed instance; independent engines share nothing.
type Engine struct {
	cfg       Config
	log       log.Log
	errs      *Aggregator
	collector *Collector
	runner    *Runner
	reporter  *Reporter
}

// New validates the configuration and wires the engine components.
func New(cfg Config, logger log.Log) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	errs := NewAggregator()
	collector := NewCollector(cfg, errs, logger)
	runner := NewRunner(cfg, errs, logger)

	return &Engine{
		cfg:       cfg,
		log:       logger,
		errs:      errs,
		collector: collector,
		runner:    runner,
		reporter:  NewReporter(collector, runner, errs),
	}, nil
}

// Start opens a fresh session, resetting the sample windows, the error
// aggregator and the benchmark history. Calling Start on an active
// session is a logged no-op that keeps the running session.
func (e *Engine) Start() uuid.UUID {
	if e.collector.Active() {
		id := e.collector.SessionID()
		e.log.Warn("start ignored, session already active",
			log.String("session_id", id.String()))
		e.errs.Record(SeverityInfo, CategoryOther, "duplicate start ignored")
		return id
	}

	e.errs.Reset()
	e.runner.Reset()
	id, err := e.collector.Start()
	if err != nil {
		// Lost a race with a concurrent Start; keep that session.
		return e.collector.SessionID()
	}
	return id
}

// Stop freezes the session. Recording calls made afterwards fail with
// ErrSessionInactive.
func (e *Engine) Stop() error {
	return e.collector.Stop()
}

func (e *Engine) Active() bool {
	return e.collector.Active()
}

func (e *Engine) RecordFrameTime(ms float64) error {
	return e.collector.RecordFrameTime(ms)
}

func (e *Engine) RecordDetectionTime(ms float64) error {
	return e.collector.RecordDetectionTime(ms)
}

func (e *Engine) RecordLandmarkTime(ms float64) error {
	return e.collector.RecordLandmarkTime(ms)
}

func (e *Engine) RecordInitializationTime(ms float64) error {
	return e.collector.RecordInitializationTime(ms)
}

func (e *Engine) TrackMemoryUsage() (MemoryUsage, error) {
	return e.collector.TrackMemoryUsage()
}

func (e *Engine) RealtimeStats() RealtimeStats {
	return e.collector.RealtimeStats()
}

// RunBenchmark executes a named benchmark; see Runner.Run.
func (e *Engine) RunBenchmark(name string, op Operation, iterations int) (BenchmarkResult, error) {
	return e.runner.Run(name, op, iterations)
}

// BenchmarkResult returns the stored outcome for a name.
func (e *Engine) BenchmarkResult(name string) (BenchmarkResult, error) {
	return e.runner.Result(name)
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// ErrorStatistics regroups the recorded error events.
func (e *Engine) ErrorStatistics() ErrorStats {
	return e.errs.Statistics()
}

// GenerateReport assembles the compliance report without mutating state.
func (e *Engine) GenerateReport() Report {
	return e.reporter.Generate()
}
