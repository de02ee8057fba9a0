package metrics

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/synopticon/visionmetrics/internal/core/observability/log"
)

// Operation is one caller-supplied unit of work to benchmark. It may fail;
// a failing iteration is counted but never aborts the run.
type Operation func() error

// DurationStats summarizes the measured iterations of one benchmark.
type DurationStats struct {
	Mean  time.Duration `json:"mean"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	P95   time.Duration `json:"p95"`
	Count int           `json:"count"`
}

// BenchmarkResult holds the raw outcome of one named benchmark run.
// Durations covers only successful measured iterations.
type BenchmarkResult struct {
	Name       string          `json:"name"`
	Durations  []time.Duration `json:"durations"`
	Errors     int             `json:"errors"`
	Iterations int             `json:"iterations"`
	RanAt      time.Time       `json:"ran_at"`
}

// Stats derives the aggregate statistics from the recorded durations.
func (r BenchmarkResult) Stats() DurationStats {
	n := len(r.Durations)
	if n == 0 {
		return DurationStats{}
	}

	sorted := make([]time.Duration, n)
	copy(sorted, r.Durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	idx := int(math.Ceil(0.95*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}

	return DurationStats{
		Mean:  sum / time.Duration(n),
		Min:   sorted[0],
		Max:   sorted[n-1],
		P95:   sorted[idx],
		Count: n,
	}
}

// Runner executes named micro-benchmarks. Iterations run strictly
// sequentially on the calling goroutine so contention never skews the
// measured latency; the caller bounds total runtime via the iteration
// count.
type Runner struct {
	log    log.Log
	errs   *Aggregator
	warmup int

	mu      sync.Mutex
	results map[string]BenchmarkResult
}

func NewRunner(cfg Config, errs *Aggregator, logger log.Log) *Runner {
	return &Runner{
		log:     logger,
		errs:    errs,
		warmup:  cfg.WarmupIterations,
		results: make(map[string]BenchmarkResult),
	}
}

// Run executes op iterations times after the configured warmup. Warmup
// iterations prime caches and are excluded from every statistic, failures
// included. Re-running a name overwrites its prior result.
func (r *Runner) Run(name string, op Operation, iterations int) (BenchmarkResult, error) {
	if op == nil {
		return BenchmarkResult{}, ErrNilOperation
	}
	if iterations <= 0 {
		return BenchmarkResult{}, ErrInvalidIterations
	}

	r.log.Debug("benchmark starting",
		log.String("name", name),
		log.Int("iterations", iterations),
		log.Int("warmup", r.warmup))

	for i := 0; i < r.warmup; i++ {
		_ = op()
	}

	result := BenchmarkResult{
		Name:       name,
		Durations:  make([]time.Duration, 0, iterations),
		Iterations: iterations,
		RanAt:      time.Now(),
	}
	for i := 0; i < iterations; i++ {
		start := time.Now()
		err := op()
		elapsed := time.Since(start)
		if err != nil {
			result.Errors++
			r.errs.Record(SeverityWarning, CategoryBenchmark,
				"benchmark "+name+" iteration failed: "+err.Error())
			continue
		}
		result.Durations = append(result.Durations, elapsed)
	}

	r.mu.Lock()
	r.results[name] = result
	r.mu.Unlock()

	r.log.Info("benchmark finished",
		log.String("name", name),
		log.Int("measured", len(result.Durations)),
		log.Int("errors", result.Errors),
		log.Duration("mean", result.Stats().Mean))
	return result, nil
}

// Result returns the stored outcome for a name.
func (r *Runner) Result(name string) (BenchmarkResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result, ok := r.results[name]
	if !ok {
		return BenchmarkResult{}, ErrBenchmarkNotFound
	}
	return result, nil
}

// Results returns a copy of every stored outcome keyed by name.
func (r *Runner) Results() map[string]BenchmarkResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]BenchmarkResult, len(r.results))
	for name, result := range r.results {
		out[name] = result
	}
	return out
}

// Reset drops all stored results.
func (r *Runner) Reset() {
	r.mu.Lock()
	r.results = make(map[string]BenchmarkResult)
	r.mu.Unlock()
}
