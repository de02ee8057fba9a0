package metrics

import "errors"

// Engine-specific errors
var (
	ErrSessionInactive   = errors.New("metrics session is not active")
	ErrSessionActive     = errors.New("metrics session is already active")
	ErrInvalidConfig     = errors.New("invalid metrics configuration")
	ErrMemoryUnavailable = errors.New("memory tracking is unavailable")
	ErrInvalidIterations = errors.New("benchmark iteration count must be positive")
	ErrNilOperation      = errors.New("benchmark operation must not be nil")
	ErrBenchmarkNotFound = errors.New("benchmark result not found")
)
