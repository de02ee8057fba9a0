package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/synopticon/visionmetrics/pkg/sequence"
)

// Sample is one timestamped measurement. Immutable once recorded.
type Sample struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// WindowStats summarizes the currently retained samples of one window.
// Count 0 is the "no data" sentinel; the numeric fields are zero then.
type WindowStats struct {
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	P95   float64 `json:"p95"`
	Count int     `json:"count"`
}

// Window is a bounded FIFO buffer of samples for one metric kind. It does
// no locking of its own; the owning collector serializes access.
type Window struct {
	ring *sequence.Ring[Sample]
}

func NewWindow(capacity int) *Window {
	return &Window{ring: sequence.NewRing[Sample](capacity)}
}

// Record appends a sample, evicting the oldest one at capacity.
func (w *Window) Record(value float64) {
	w.ring.Push(Sample{Value: value, Timestamp: time.Now()})
}

func (w *Window) Len() int {
	return w.ring.Len()
}

func (w *Window) Reset() {
	w.ring.Reset()
}

// Stats computes mean/min/max/p95 over the retained samples. The p95 is
// taken from a sorted copy at index ceil(0.95*n)-1; a full sort per query
// is fine at window capacities of tens to low hundreds.
func (w *Window) Stats() WindowStats {
	samples := w.ring.Values()
	n := len(samples)
	if n == 0 {
		return WindowStats{}
	}

	values := make([]float64, n)
	sum := 0.0
	for i, s := range samples {
		values[i] = s.Value
		sum += s.Value
	}
	sort.Float64s(values)

	idx := int(math.Ceil(0.95*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}

	return WindowStats{
		Mean:  sum / float64(n),
		Min:   values[0],
		Max:   values[n-1],
		P95:   values[idx],
		Count: n,
	}
}
