package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/synopticon/visionmetrics/internal/core/metrics"
	"github.com/synopticon/visionmetrics/internal/core/observability/log"
	"github.com/synopticon/visionmetrics/internal/stream"
)

// Simulated per-frame latencies, loosely matching a 30 FPS face tracking
// pipeline with occasional spikes that trip the thresholds.
func simulatedMs(base, jitter float64) float64 {
	v := base + rand.Float64()*jitter
	if rand.IntN(100) < 3 {
		v *= 4
	}
	return v
}

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	duration := flag.Duration("duration", 5*time.Second, "monitoring session length")
	streamAddr := flag.String("stream", "", "serve live snapshots on this address (empty disables)")
	iterations := flag.Int("iterations", 50, "measured iterations per benchmark")
	flag.Parse()

	cfg := metrics.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			fmt.Println("Error opening config:", err)
			os.Exit(1)
		}
		cfg, err = metrics.LoadYAML(f)
		_ = f.Close()
		if err != nil {
			fmt.Println("Error loading config:", err)
			os.Exit(1)
		}
	}

	logger := log.New(log.LevelInfo)
	engine, err := metrics.New(cfg, logger)
	if err != nil {
		fmt.Println("Error building engine:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-stopCh
		cancel()
	}()

	initStart := time.Now()
	engine.Start()
	warmupDetector()
	if err = engine.RecordInitializationTime(float64(time.Since(initStart).Milliseconds())); err != nil {
		logger.Error("init time not recorded", log.Error("error", err))
	}

	var broadcaster *stream.Broadcaster
	if *streamAddr != "" {
		streamCfg := stream.DefaultConfig()
		streamCfg.Addr = *streamAddr
		broadcaster = stream.NewBroadcaster(streamCfg, engine, logger)
		if err = broadcaster.Start(ctx); err != nil {
			fmt.Println("Error starting stream:", err)
			os.Exit(1)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runPipeline(gctx, engine) })
	g.Go(func() error { return sampleMemory(gctx, engine) })
	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("pipeline stopped", log.Error("error", err))
	}

	if err = engine.Stop(); err != nil {
		logger.Error("session stop failed", log.Error("error", err))
	}
	if broadcaster != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = broadcaster.Stop(shutdownCtx)
		shutdownCancel()
	}

	runBenchmarks(engine, *iterations, logger)

	report := engine.GenerateReport()
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Println("Error encoding report:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// runPipeline pushes simulated detector timings at roughly 30 FPS until
// the context expires.
func runPipeline(ctx context.Context, engine *metrics.Engine) error {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			detection := simulatedMs(20, 15)
			landmark := simulatedMs(6, 8)
			frame := detection + landmark + rand.Float64()*4

			if err := engine.RecordDetectionTime(detection); err != nil {
				return err
			}
			if err := engine.RecordLandmarkTime(landmark); err != nil {
				return err
			}
			if err := engine.RecordFrameTime(frame); err != nil {
				return err
			}
		}
	}
}

func sampleMemory(ctx context.Context, engine *metrics.Engine) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := engine.TrackMemoryUsage(); err != nil &&
				!errors.Is(err, metrics.ErrMemoryUnavailable) {
				return err
			}
		}
	}
}

func runBenchmarks(engine *metrics.Engine, iterations int, logger log.Log) {
	benchmarks := map[string]metrics.Operation{
		"grayscale-320x240": func() error {
			grayscale(320, 240)
			return nil
		},
		"grayscale-640x480": func() error {
			grayscale(640, 480)
			return nil
		},
		"box-blur-3x3": func() error {
			boxBlur(320, 240)
			return nil
		},
	}

	for name, op := range benchmarks {
		if _, err := engine.RunBenchmark(name, op, iterations); err != nil {
			logger.Error("benchmark failed", log.String("name", name), log.Error("error", err))
		}
	}
}

// warmupDetector stands in for model loading in the real pipeline.
func warmupDetector() {
	grayscale(640, 480)
	boxBlur(640, 480)
}

func grayscale(w, h int) {
	frame := syntheticFrame(w, h)
	out := make([]byte, w*h)
	for i := 0; i < w*h; i++ {
		r := frame[i*3]
		g := frame[i*3+1]
		b := frame[i*3+2]
		out[i] = byte((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
	}
}

func boxBlur(w, h int) {
	frame := syntheticFrame(w, h)
	out := make([]byte, len(frame))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var sum int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sum += int(frame[((y+dy)*w+x+dx)*3])
				}
			}
			out[(y*w+x)*3] = byte(sum / 9)
		}
	}
}

func syntheticFrame(w, h int) []byte {
	frame := make([]byte, w*h*3)
	for i := range frame {
		frame[i] = byte(i * 31)
	}
	return frame
}
