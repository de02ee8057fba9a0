package metrics

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/synopticon/visionmetrics/internal/core/observability/log"
)

const bytesPerMB = 1024 * 1024

// MemoryUsage is one point-in-time heap reading. Available is false when
// memory tracking is disabled by configuration.
type MemoryUsage struct {
	UsedBytes  uint64 `json:"used_bytes"`
	TotalBytes uint64 `json:"total_bytes"`
	Available  bool   `json:"available"`
}

// RealtimeStats is the live snapshot of the current session.
type RealtimeStats struct {
	SessionID        string        `json:"session_id"`
	Active           bool          `json:"active"`
	FPS              float64       `json:"fps"`
	FrameTime        WindowStats   `json:"frame_time"`
	DetectionTime    WindowStats   `json:"detection_time"`
	LandmarkTime     WindowStats   `json:"landmark_time"`
	Memory           WindowStats   `json:"memory"`
	InitializationMs float64       `json:"initialization_ms"`
	FrameCount       uint64        `json:"frame_count"`
	Uptime           time.Duration `json:"uptime"`
}

// Collector owns the per-kind sample windows and the session lifecycle.
// One mutex guards session state and all window mutations, so Stop is
// safe against a final in-flight record call.
type Collector struct {
	cfg        Config
	log        log.Log
	errs       *Aggregator
	thresholds *Evaluator

	mu              sync.Mutex
	active          bool
	sessionID       uuid.UUID
	startedAt       time.Time
	stoppedAt       time.Time
	frameCount      uint64
	frameWindow     *Window
	detectionWindow *Window
	landmarkWindow  *Window
	memoryWindow    *Window
	initMs          float64
	initSet         bool

	samplerCancel context.CancelFunc
	samplerGroup  *errgroup.Group
}

func NewCollector(cfg Config, errs *Aggregator, logger log.Log) *Collector {
	return &Collector{
		cfg:             cfg,
		log:             logger,
		errs:            errs,
		thresholds:      NewEvaluator(cfg, errs),
		frameWindow:     NewWindow(cfg.CapacityFor(KindFrame)),
		detectionWindow: NewWindow(cfg.CapacityFor(KindDetection)),
		landmarkWindow:  NewWindow(cfg.CapacityFor(KindLandmark)),
		memoryWindow:    NewWindow(cfg.CapacityFor(KindMemory)),
	}
}

// Start opens a fresh session, resetting every window and the frame
// counter. Returns ErrSessionActive without touching state if a session
// is already running.
func (c *Collector) Start() (uuid.UUID, error) {
	c.mu.Lock()
	if c.active {
		id := c.sessionID
		c.mu.Unlock()
		return id, ErrSessionActive
	}

	c.sessionID = uuid.New()
	c.startedAt = time.Now()
	c.stoppedAt = time.Time{}
	c.frameCount = 0
	c.initMs = 0
	c.initSet = false
	c.frameWindow.Reset()
	c.detectionWindow.Reset()
	c.landmarkWindow.Reset()
	c.memoryWindow.Reset()
	c.active = true
	id := c.sessionID

	if c.cfg.MemoryTracking && c.cfg.MemorySampleInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		g, ctx := errgroup.WithContext(ctx)
		c.samplerCancel = cancel
		c.samplerGroup = g
		g.Go(func() error {
			return c.sampleMemoryLoop(ctx)
		})
	}
	c.mu.Unlock()

	c.log.Info("metrics session started", log.String("session_id", id.String()))
	return id, nil
}

// Stop freezes the session. Recording calls made afterwards fail with
// ErrSessionInactive.
func (c *Collector) Stop() error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrSessionInactive
	}
	c.active = false
	c.stoppedAt = time.Now()
	id := c.sessionID
	frames := c.frameCount
	cancel := c.samplerCancel
	group := c.samplerGroup
	c.samplerCancel = nil
	c.samplerGroup = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		_ = group.Wait()
	}

	c.log.Info("metrics session stopped",
		log.String("session_id", id.String()),
		log.Uint64("frames", frames))
	return nil
}

func (c *Collector) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Collector) SessionID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// RecordFrameTime appends a frame duration sample and advances the frame
// counter.
func (c *Collector) RecordFrameTime(ms float64) error {
	return c.record(KindFrame, c.frameWindow, ms, true)
}

// RecordDetectionTime appends a face-detection duration sample.
func (c *Collector) RecordDetectionTime(ms float64) error {
	return c.record(KindDetection, c.detectionWindow, ms, false)
}

// RecordLandmarkTime appends a landmark-estimation duration sample.
func (c *Collector) RecordLandmarkTime(ms float64) error {
	return c.record(KindLandmark, c.landmarkWindow, ms, false)
}

// RecordInitializationTime stores the time-to-first-ready scalar. Only
// the first call per session has effect.
func (c *Collector) RecordInitializationTime(ms float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return ErrSessionInactive
	}
	if c.initSet {
		c.log.Debug("initialization time already recorded, ignoring",
			log.Float64("ignored_ms", ms))
		return nil
	}
	c.initMs = ms
	c.initSet = true
	return nil
}

// TrackMemoryUsage samples the runtime heap. Returns the unavailable
// sentinel when tracking is disabled; the breach check feeds the memory
// window like any other sample.
func (c *Collector) TrackMemoryUsage() (MemoryUsage, error) {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if !active {
		return MemoryUsage{}, ErrSessionInactive
	}
	if !c.cfg.MemoryTracking {
		return MemoryUsage{}, ErrMemoryUnavailable
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	usage := MemoryUsage{
		UsedBytes:  ms.Alloc,
		TotalBytes: ms.Sys,
		Available:  true,
	}

	usedMB := float64(usage.UsedBytes) / bytesPerMB
	if err := c.record(KindMemory, c.memoryWindow, usedMB, false); err != nil {
		// Session stopped between the check and the record. Non-fatal.
		return usage, nil
	}
	return usage, nil
}

// RealtimeStats snapshots the current session. Never fails; a fresh or
// empty session yields zero FPS and empty per-metric stats.
func (c *Collector) RealtimeStats() RealtimeStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := RealtimeStats{
		Active:           c.active,
		FrameTime:        c.frameWindow.Stats(),
		DetectionTime:    c.detectionWindow.Stats(),
		LandmarkTime:     c.landmarkWindow.Stats(),
		Memory:           c.memoryWindow.Stats(),
		InitializationMs: c.initMs,
		FrameCount:       c.frameCount,
	}
	if c.sessionID != uuid.Nil {
		stats.SessionID = c.sessionID.String()
	}
	if !c.startedAt.IsZero() {
		if c.active {
			stats.Uptime = time.Since(c.startedAt)
		} else {
			stats.Uptime = c.stoppedAt.Sub(c.startedAt)
		}
	}
	if secs := stats.Uptime.Seconds(); secs > 0 {
		stats.FPS = float64(c.frameCount) / secs
	}
	return stats
}

// Config returns the configuration the collector was built with.
func (c *Collector) Config() Config {
	return c.cfg
}

func (c *Collector) record(kind Kind, w *Window, value float64, countFrame bool) error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrSessionInactive
	}
	w.Record(value)
	if countFrame {
		c.frameCount++
	}
	c.mu.Unlock()

	c.thresholds.Check(kind, value)
	return nil
}

func (c *Collector) sampleMemoryLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.MemorySampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := c.TrackMemoryUsage(); err != nil {
				return nil
			}
		}
	}
}
