package livesync

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/patchwork/pkg/component"
	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// ErrNotAttached is returned when a Hub has no root instance yet.
var ErrNotAttached = errors.New("patchwork: livesync hub has no root instance")

// Config configures a Hub.
type Config struct {
	// ReadBufferSize and WriteBufferSize size the websocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the Origin header of websocket upgrades.
	// Default: same-origin only (gorilla's default).
	CheckOrigin func(r *http.Request) bool

	// MaxMessageSize limits client messages. Default: 64KB.
	MaxMessageSize int64

	// ReadTimeout closes connections silent for this long. Clients answer
	// pings, so it must exceed HeartbeatInterval. Default: 60s.
	ReadTimeout time.Duration

	// WriteTimeout bounds every write. Default: 10s.
	WriteTimeout time.Duration

	// HeartbeatInterval is the ping period. Default: 25s.
	HeartbeatInterval time.Duration

	// SendBuffer is the number of frames queued per client before the
	// client is dropped as too slow. Default: 64.
	SendBuffer int

	// History is the number of batches kept for resync. Default: 100.
	History int

	// Gatherer, when set, is served on /metrics.
	Gatherer prometheus.Gatherer

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (c *Config) normalize() {
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 64 << 10
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 60 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 25 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Hub publishes the operations of one document and serves its clients.
// It implements reactive.FlushObserver and vdom.PatchObserver; install it
// as the runtime's observer (possibly through telemetry.Tee).
//
// Fields marked loop-owned are only touched on the runtime loop.
type Hub struct {
	cfg      Config
	doc      *memdom.Document
	log      *slog.Logger
	upgrader websocket.Upgrader

	// loop-owned
	root    *component.Instance
	seq     uint64
	history *history

	mu      sync.Mutex
	rt      *reactive.Runtime
	clients map[*client]struct{}
}

// NewHub creates a Hub for doc.
func NewHub(doc *memdom.Document, cfg Config) *Hub {
	cfg.normalize()
	return &Hub{
		cfg: cfg,
		doc: doc,
		log: cfg.Logger.With("component", "livesync"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
		history: newHistory(cfg.History),
		clients: make(map[*client]struct{}),
	}
}

// Attach makes inst the root served by the Hub. It must be called on the
// runtime loop, typically right after mounting. Operations recorded before
// Attach are folded into the first snapshot.
func (h *Hub) Attach(inst *component.Instance) {
	h.root = inst
	h.doc.ResetOps()
	h.mu.Lock()
	h.rt = inst.App().Runtime()
	h.mu.Unlock()
}

func (h *Hub) runtime() (*reactive.Runtime, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rt == nil {
		return nil, ErrNotAttached
	}
	return h.rt, nil
}

// Apply runs fn with the root instance on the runtime loop, waits for the
// resulting flush and publishes its operations.
func (h *Hub) Apply(ctx context.Context, fn func(root *component.Instance)) error {
	rt, err := h.runtime()
	if err != nil {
		return err
	}
	if err := rt.Loop().Do(ctx, func() { fn(h.root) }); err != nil {
		return err
	}
	// Ops recorded outside a flush (sync handlers, direct backend use).
	return rt.Loop().Do(ctx, h.publish)
}

// Set assigns key on the root instance.
func (h *Hub) Set(ctx context.Context, key string, value any) error {
	return h.Apply(ctx, func(root *component.Instance) {
		root.Set(key, value)
	})
}

// Snapshot returns the current markup of the root and the seq it reflects.
func (h *Hub) Snapshot(ctx context.Context) (html string, seq uint64, err error) {
	rt, err := h.runtime()
	if err != nil {
		return "", 0, err
	}
	err = rt.Loop().Do(ctx, func() {
		h.publish()
		html, seq = h.rootHTML(), h.seq
	})
	return html, seq, err
}

func (h *Hub) rootNode() *memdom.Node {
	if h.root == nil {
		return nil
	}
	n, _ := h.root.Elm().(*memdom.Node)
	return n
}

func (h *Hub) rootHTML() string {
	if n := h.rootNode(); n != nil {
		return n.OuterHTML()
	}
	return ""
}

func (h *Hub) snapshotMessage() []byte {
	data, _ := json.Marshal(Message{
		Type: TypeSnapshot,
		Seq:  h.seq,
		HTML: h.rootHTML(),
		Tree: toWire(h.rootNode()),
	})
	return data
}

// publish sends the pending operations as the next batch. Loop only.
func (h *Hub) publish() {
	ops := h.doc.TakeOps()
	if len(ops) == 0 {
		return
	}
	h.seq++
	data, err := json.Marshal(Message{Type: TypeOps, Seq: h.seq, Ops: ops})
	if err != nil {
		h.log.Error("encode ops", "error", err)
		return
	}
	h.history.add(h.seq, data)
	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	var slow []*client
	h.mu.Lock()
	for c := range h.clients {
		if !c.queue(data) {
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()
	for _, c := range slow {
		h.log.Warn("dropping slow client", "remote", c.remote)
		c.close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Seq returns the seq of the last published batch.
func (h *Hub) Seq(ctx context.Context) (uint64, error) {
	rt, err := h.runtime()
	if err != nil {
		return 0, err
	}
	var seq uint64
	err = rt.Loop().Do(ctx, func() { seq = h.seq })
	return seq, err
}

// FlushStarted implements reactive.FlushObserver.
func (h *Hub) FlushStarted(int) {}

// WatcherRan implements reactive.FlushObserver.
func (h *Hub) WatcherRan(*reactive.Watcher, time.Duration, error) {}

// InfiniteLoop implements reactive.FlushObserver.
func (h *Hub) InfiniteLoop(*reactive.Watcher) {}

// FlushFinished implements reactive.FlushObserver: the flush's patches are
// published as one batch.
func (h *Hub) FlushFinished(int, time.Duration) {
	h.publish()
}

// Patched implements vdom.PatchObserver.
func (h *Hub) Patched(vdom.PatchOp, time.Duration) {}

var (
	_ reactive.FlushObserver = (*Hub)(nil)
	_ vdom.PatchObserver     = (*Hub)(nil)
)
