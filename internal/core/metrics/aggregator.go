package metrics

import (
	"sync"
	"time"
)

// Record is one aggregated error event. Never mutated after creation.
type Record struct {
	Severity  Severity  `json:"severity"`
	Category  Category  `json:"category"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorStats groups the recorded errors along both dimensions.
type ErrorStats struct {
	Total      int              `json:"total"`
	BySeverity map[Severity]int `json:"by_severity"`
	ByCategory map[Category]int `json:"by_category"`
}

// Aggregator collects error records append-only, without deduplication.
// Safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	records []Record
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record appends an error event.
func (a *Aggregator) Record(severity Severity, category Category, message string) {
	a.mu.Lock()
	a.records = append(a.records, Record{
		Severity:  severity,
		Category:  category,
		Message:   message,
		Timestamp: time.Now(),
	})
	a.mu.Unlock()
}

// Records returns a copy of every recorded event, oldest first.
func (a *Aggregator) Records() []Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Record, len(a.records))
	copy(out, a.records)
	return out
}

// Statistics recomputes the groupings from the backing sequence. O(n) in
// total error count; error volume stays small relative to sample volume.
func (a *Aggregator) Statistics() ErrorStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := ErrorStats{
		Total:      len(a.records),
		BySeverity: make(map[Severity]int),
		ByCategory: make(map[Category]int),
	}
	for _, r := range a.records {
		stats.BySeverity[r.Severity]++
		stats.ByCategory[r.Category]++
	}
	return stats
}

// Reset drops all recorded events.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.records = a.records[:0]
	a.mu.Unlock()
}
