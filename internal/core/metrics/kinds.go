package metrics

// Kind identifies one tracked metric stream.
type Kind uint8

const (
	KindFrame Kind = iota
	KindDetection
	KindLandmark
	KindInitialization
	KindMemory
)

func (k Kind) String() string {
	switch k {
	case KindFrame:
		return "frame"
	case KindDetection:
		return "detection"
	case KindLandmark:
		return "landmark"
	case KindInitialization:
		return "initialization"
	case KindMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// Category returns the error category breaches of this kind are filed under.
func (k Kind) Category() Category {
	switch k {
	case KindFrame:
		return CategoryFrame
	case KindDetection:
		return CategoryDetection
	case KindLandmark:
		return CategoryLandmark
	case KindMemory:
		return CategoryMemory
	default:
		return CategoryOther
	}
}

// Severity ranks an error record.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalText lets severities key JSON maps.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Category ties an error record to the operation that produced it.
type Category uint8

const (
	CategoryFrame Category = iota
	CategoryDetection
	CategoryLandmark
	CategoryMemory
	CategoryBenchmark
	CategoryOther
)

func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "frame"
	case CategoryDetection:
		return "detection"
	case CategoryLandmark:
		return "landmark"
	case CategoryMemory:
		return "memory"
	case CategoryBenchmark:
		return "benchmark"
	default:
		return "other"
	}
}

// MarshalText lets categories key JSON maps.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
