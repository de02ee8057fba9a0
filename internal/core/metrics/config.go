package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// Config carries every recognized engine option. Thresholds are derived
// from per-kind targets and shared warning/critical multipliers.
type Config struct {
	// WindowCapacity bounds each rolling sample window.
	WindowCapacity int `json:"window_capacity" yaml:"window_capacity"`

	// WindowCapacityPerKind optionally overrides WindowCapacity for
	// single kinds, keyed by kind name (frame, detection, landmark,
	// memory).
	WindowCapacityPerKind map[string]int `json:"window_capacity_per_kind,omitempty" yaml:"window_capacity_per_kind,omitempty"`

	// Per-kind latency targets, in milliseconds.
	TargetFrameTimeMs     float64 `json:"target_frame_time_ms" yaml:"target_frame_time_ms"`
	TargetDetectionTimeMs float64 `json:"target_detection_time_ms" yaml:"target_detection_time_ms"`
	TargetLandmarkTimeMs  float64 `json:"target_landmark_time_ms" yaml:"target_landmark_time_ms"`

	// A sample at target*WarningMultiplier raises a warning, at
	// target*CriticalMultiplier a critical.
	WarningMultiplier  float64 `json:"warning_multiplier" yaml:"warning_multiplier"`
	CriticalMultiplier float64 `json:"critical_multiplier" yaml:"critical_multiplier"`

	// Memory bounds are absolute, in megabytes of heap in use.
	MemoryWarningMB  float64 `json:"memory_warning_mb" yaml:"memory_warning_mb"`
	MemoryCriticalMB float64 `json:"memory_critical_mb" yaml:"memory_critical_mb"`

	// WarmupIterations run before each benchmark's measured iterations.
	WarmupIterations int `json:"warmup_iterations" yaml:"warmup_iterations"`

	// MemoryTracking enables TrackMemoryUsage and, when SampleInterval is
	// positive, a background sampler feeding the memory window.
	MemoryTracking       bool          `json:"memory_tracking" yaml:"memory_tracking"`
	MemorySampleInterval time.Duration `json:"memory_sample_interval,omitempty" yaml:"memory_sample_interval,omitempty"`
}

// DefaultConfig targets a 30 FPS pipeline.
func DefaultConfig() Config {
	return Config{
		WindowCapacity:        60,
		TargetFrameTimeMs:     33.33,
		TargetDetectionTimeMs: 50,
		TargetLandmarkTimeMs:  20,
		WarningMultiplier:     1.5,
		CriticalMultiplier:    3.0,
		MemoryWarningMB:       256,
		MemoryCriticalMB:      512,
		WarmupIterations:      3,
		MemoryTracking:        true,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.WindowCapacity < 1 {
		return fmt.Errorf("%w: window capacity must be at least 1, got %d", ErrInvalidConfig, c.WindowCapacity)
	}
	if c.TargetFrameTimeMs <= 0 || c.TargetDetectionTimeMs <= 0 || c.TargetLandmarkTimeMs <= 0 {
		return fmt.Errorf("%w: latency targets must be positive", ErrInvalidConfig)
	}
	if c.WarningMultiplier <= 0 || c.CriticalMultiplier <= 0 {
		return fmt.Errorf("%w: threshold multipliers must be positive", ErrInvalidConfig)
	}
	if c.WarningMultiplier >= c.CriticalMultiplier {
		return fmt.Errorf("%w: warning multiplier %.2f must be below critical multiplier %.2f",
			ErrInvalidConfig, c.WarningMultiplier, c.CriticalMultiplier)
	}
	if c.MemoryWarningMB >= c.MemoryCriticalMB {
		return fmt.Errorf("%w: memory warning bound %.0fMB must be below critical bound %.0fMB",
			ErrInvalidConfig, c.MemoryWarningMB, c.MemoryCriticalMB)
	}
	if c.WarmupIterations < 0 {
		return fmt.Errorf("%w: warmup iterations must not be negative", ErrInvalidConfig)
	}
	for name, capacity := range c.WindowCapacityPerKind {
		if !isWindowedKindName(name) {
			return fmt.Errorf("%w: unknown windowed metric kind %q", ErrInvalidConfig, name)
		}
		if capacity < 1 {
			return fmt.Errorf("%w: window capacity for %s must be at least 1, got %d",
				ErrInvalidConfig, name, capacity)
		}
	}
	return nil
}

// CapacityFor resolves the window capacity for a kind, honoring per-kind
// overrides.
func (c Config) CapacityFor(kind Kind) int {
	if capacity, ok := c.WindowCapacityPerKind[kind.String()]; ok {
		return capacity
	}
	return c.WindowCapacity
}

func isWindowedKindName(name string) bool {
	switch name {
	case KindFrame.String(), KindDetection.String(), KindLandmark.String(), KindMemory.String():
		return true
	default:
		return false
	}
}

// Bounds returns the threshold pair for a kind. Initialization time is
// never thresholded.
func (c Config) Bounds(kind Kind) (Bounds, bool) {
	switch kind {
	case KindFrame:
		return Bounds{Warning: c.TargetFrameTimeMs * c.WarningMultiplier, Critical: c.TargetFrameTimeMs * c.CriticalMultiplier}, true
	case KindDetection:
		return Bounds{Warning: c.TargetDetectionTimeMs * c.WarningMultiplier, Critical: c.TargetDetectionTimeMs * c.CriticalMultiplier}, true
	case KindLandmark:
		return Bounds{Warning: c.TargetLandmarkTimeMs * c.WarningMultiplier, Critical: c.TargetLandmarkTimeMs * c.CriticalMultiplier}, true
	case KindMemory:
		return Bounds{Warning: c.MemoryWarningMB, Critical: c.MemoryCriticalMB}, true
	default:
		return Bounds{}, false
	}
}

// Target returns the compliance target for a kind, in milliseconds.
func (c Config) Target(kind Kind) (float64, bool) {
	switch kind {
	case KindFrame:
		return c.TargetFrameTimeMs, true
	case KindDetection:
		return c.TargetDetectionTimeMs, true
	case KindLandmark:
		return c.TargetLandmarkTimeMs, true
	default:
		return 0, false
	}
}

// Fingerprint hashes the canonical JSON encoding of the configuration.
// Reports embed it so snapshots taken under different configurations can
// be told apart.
func (c Config) Fingerprint() string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(raw))
}

// LoadJSON loads config from a JSON reader on top of defaults.
func LoadJSON(r io.Reader) (Config, error) {
	c := DefaultConfig()
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadYAML loads config from a YAML reader on top of defaults.
func LoadYAML(r io.Reader) (Config, error) {
	c := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
