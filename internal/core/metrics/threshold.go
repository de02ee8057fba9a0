package metrics

import (
	"fmt"
)

// Bounds is the (warning, critical) threshold pair for one metric kind.
// Warning sits below critical; values under warning are nominal.
type Bounds struct {
	Warning  float64 `json:"warning"`
	Critical float64 `json:"critical"`
}

// Evaluator classifies samples against per-kind bounds and files breaches
// with the error aggregator. Classification is a pure function of
// (kind, value, bounds); the only side effect is the appended record.
type Evaluator struct {
	bounds map[Kind]Bounds
	sink   *Aggregator
}

func NewEvaluator(cfg Config, sink *Aggregator) *Evaluator {
	bounds := make(map[Kind]Bounds)
	for _, kind := range []Kind{KindFrame, KindDetection, KindLandmark, KindMemory} {
		if b, ok := cfg.Bounds(kind); ok {
			bounds[kind] = b
		}
	}
	return &Evaluator{bounds: bounds, sink: sink}
}

// Check classifies a sample. The critical bound is inclusive: a value
// exactly at it is critical, never warning.
func (e *Evaluator) Check(kind Kind, value float64) Severity {
	b, ok := e.bounds[kind]
	if !ok {
		return SeverityInfo
	}

	switch {
	case value >= b.Critical:
		e.sink.Record(SeverityCritical, kind.Category(),
			fmt.Sprintf("%s sample %.2f at or above critical bound %.2f", kind, value, b.Critical))
		return SeverityCritical
	case value >= b.Warning:
		e.sink.Record(SeverityWarning, kind.Category(),
			fmt.Sprintf("%s sample %.2f at or above warning bound %.2f", kind, value, b.Warning))
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// BoundsFor exposes the configured pair for a kind.
func (e *Evaluator) BoundsFor(kind Kind) (Bounds, bool) {
	b, ok := e.bounds[kind]
	return b, ok
}
