package stream

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/synopticon/visionmetrics/internal/core/metrics"
	"github.com/synopticon/visionmetrics/internal/core/observability/log"
)

// SnapshotSource supplies the realtime snapshot pushed to clients. The
// metrics engine satisfies it.
type SnapshotSource interface {
	RealtimeStats() metrics.RealtimeStats
}

type Config struct {
	Addr         string        `json:"addr" yaml:"addr"`
	Path         string        `json:"path" yaml:"path"`
	Interval     time.Duration `json:"interval" yaml:"interval"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

func DefaultConfig() Config {
	return Config{
		Addr:         ":8083",
		Path:         "/metrics/ws",
		Interval:     500 * time.Millisecond,
		WriteTimeout: 2 * time.Second,
	}
}

// Broadcaster pushes realtime snapshots to WebSocket clients on an
// interval. Slow or failing clients are dropped rather than allowed to
// stall the broadcast loop. Entirely optional; the engine itself stays a
// plain in-process library.
type Broadcaster struct {
	cfg Config
	src SnapshotSource
	log log.Log

	upgrader websocket.Upgrader
	server   *http.Server
	listener net.Listener
	cancel   context.CancelFunc
	done     chan struct{}

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewBroadcaster(cfg Config, src SnapshotSource, logger log.Log) *Broadcaster {
	return &Broadcaster{
		cfg: cfg,
		src: src,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Handler exposes the upgrade endpoint for embedding into an existing mux.
func (b *Broadcaster) Handler() http.Handler {
	return http.HandlerFunc(b.handleWebSocket)
}

// Start binds the listener and begins broadcasting.
func (b *Broadcaster) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", b.cfg.Addr)
	if err != nil {
		return err
	}
	b.listener = listener

	mux := http.NewServeMux()
	mux.Handle(b.cfg.Path, b.Handler())
	b.server = &http.Server{Handler: mux}

	loopCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})

	go func() {
		if err := b.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			b.log.Error("stream server stopped", log.Error("error", err))
		}
	}()
	go b.broadcastLoop(loopCtx)

	b.log.Info("stream broadcaster started",
		log.String("addr", listener.Addr().String()),
		log.String("path", b.cfg.Path))
	return nil
}

// Stop drops every client and shuts the server down.
func (b *Broadcaster) Stop(ctx context.Context) error {
	if b.cancel != nil {
		b.cancel()
		<-b.done
	}

	b.mu.Lock()
	for conn := range b.clients {
		_ = conn.Close()
	}
	b.clients = make(map[*websocket.Conn]struct{})
	b.mu.Unlock()

	if b.server != nil {
		return b.server.Shutdown(ctx)
	}
	return nil
}

// Addr returns the bound listen address.
func (b *Broadcaster) Addr() string {
	if b.listener == nil {
		return b.cfg.Addr
	}
	return b.listener.Addr().String()
}

func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *Broadcaster) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("websocket upgrade failed", log.Error("error", err))
		return
	}

	b.mu.Lock()
	b.clients[conn] = struct{}{}
	count := len(b.clients)
	b.mu.Unlock()
	b.log.Debug("stream client connected", log.Int("clients", count))

	// Drain incoming frames so close handshakes are noticed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				b.dropClient(conn)
				return
			}
		}
	}()
}

func (b *Broadcaster) broadcastLoop(ctx context.Context) {
	defer close(b.done)
	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.broadcast()
		}
	}
}

func (b *Broadcaster) broadcast() {
	payload, err := json.Marshal(b.src.RealtimeStats())
	if err != nil {
		b.log.Error("snapshot encode failed", log.Error("error", err))
		return
	}

	b.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(b.clients))
	for conn := range b.clients {
		conns = append(conns, conn)
	}
	b.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(b.cfg.WriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			b.dropClient(conn)
		}
	}
}

func (b *Broadcaster) dropClient(conn *websocket.Conn) {
	b.mu.Lock()
	if _, ok := b.clients[conn]; !ok {
		b.mu.Unlock()
		return
	}
	delete(b.clients, conn)
	count := len(b.clients)
	b.mu.Unlock()

	_ = conn.Close()
	b.log.Debug("stream client dropped", log.Int("clients", count))
}
