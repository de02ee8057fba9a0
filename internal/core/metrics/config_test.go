package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfig_ValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window capacity", func(c *Config) { c.WindowCapacity = 0 }},
		{"negative frame target", func(c *Config) { c.TargetFrameTimeMs = -1 }},
		{"zero detection target", func(c *Config) { c.TargetDetectionTimeMs = 0 }},
		{"warning above critical", func(c *Config) { c.WarningMultiplier = 5; c.CriticalMultiplier = 2 }},
		{"equal multipliers", func(c *Config) { c.WarningMultiplier = 2; c.CriticalMultiplier = 2 }},
		{"memory bounds inverted", func(c *Config) { c.MemoryWarningMB = 512; c.MemoryCriticalMB = 256 }},
		{"negative warmup", func(c *Config) { c.WarmupIterations = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfig_BoundsDerivedFromMultipliers(t *testing.T) {
	cfg := DefaultConfig()

	b, ok := cfg.Bounds(KindDetection)
	require.True(t, ok)
	assert.InDelta(t, cfg.TargetDetectionTimeMs*cfg.WarningMultiplier, b.Warning, 1e-9)
	assert.InDelta(t, cfg.TargetDetectionTimeMs*cfg.CriticalMultiplier, b.Critical, 1e-9)

	_, ok = cfg.Bounds(KindInitialization)
	assert.False(t, ok)
}

func TestConfig_LoadYAMLOverridesDefaults(t *testing.T) {
	in := strings.NewReader(`
window_capacity: 100
target_frame_time_ms: 16.67
warmup_iterations: 5
memory_tracking: false
`)

	cfg, err := LoadYAML(in)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.WindowCapacity)
	assert.InDelta(t, 16.67, cfg.TargetFrameTimeMs, 1e-9)
	assert.Equal(t, 5, cfg.WarmupIterations)
	assert.False(t, cfg.MemoryTracking)
	// Untouched options keep their defaults.
	assert.Equal(t, DefaultConfig().TargetLandmarkTimeMs, cfg.TargetLandmarkTimeMs)
}

func TestConfig_LoadJSONRejectsInvalid(t *testing.T) {
	in := strings.NewReader(`{"window_capacity": 0}`)

	_, err := LoadJSON(in)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_PerKindCapacityOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowCapacityPerKind = map[string]int{"memory": 10}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10, cfg.CapacityFor(KindMemory))
	assert.Equal(t, cfg.WindowCapacity, cfg.CapacityFor(KindFrame))

	cfg.WindowCapacityPerKind = map[string]int{"initialization": 10}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.WindowCapacityPerKind = map[string]int{"frame": 0}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestConfig_FingerprintTracksChanges(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.WindowCapacity = 100
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 16)
}
