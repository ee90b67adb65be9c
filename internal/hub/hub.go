// Package hub is the authoritative broadcast hub for the presentation state.
// Any number of viewer/controller clients connect over WebSocket, observe the
// shared state, and mutate it with last-writer-wins semantics; every accepted
// mutation is rebroadcast to all connections, sender included.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/Markrodriguez1105/Live-Score-Board/internal/state"
)

// SnapshotSink receives every accepted snapshot after it has been broadcast
// to the connected clients. Delivery is fire-and-forget.
type SnapshotSink interface {
	PublishSnapshot(snap state.Snapshot)
}

// Config holds WebSocket and dispatch settings for the hub.
type Config struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	EventBuffer     int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConfig returns the default hub configuration. Intents carry whole
// candidate lists, so the message size limit is generous.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1 << 20, // candidate lists ride inside intents
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      256,
		EventBuffer:     256,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

type eventKind int

const (
	eventJoin eventKind = iota
	eventIntent
)

// hubEvent is one connection event queued for the dispatch loop: either a
// raw client frame or a newly accepted connection awaiting its catch-up
// snapshot.
type hubEvent struct {
	kind    eventKind
	conn    *Connection
	payload []byte
}

// Hub manages the connection set and applies client intents to the state
// store. Joins and intents from all connections funnel through a single
// dispatch goroutine, so each one is handled completely, state mutated and
// frames queued, before the next is dequeued; global order is arrival order
// at the hub.
type Hub struct {
	store *state.Store
	sink  SnapshotSink // optional
	clock clockwork.Clock

	config   Config
	upgrader websocket.Upgrader
	metrics  *Metrics

	mu          sync.RWMutex
	connections map[*Connection]bool

	events chan hubEvent
}

// New creates a hub around the given store. sink may be nil.
func New(store *state.Store, config Config, metrics *Metrics, sink SnapshotSink) *Hub {
	return &Hub{
		store:  store,
		sink:   sink,
		clock:  clockwork.NewRealClock(),
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		metrics:     metrics,
		connections: make(map[*Connection]bool),
		events:      make(chan hubEvent, config.EventBuffer),
	}
}

// WithClock replaces the hub clock. In production the real clock is used;
// tests inject a fake.
func (h *Hub) WithClock(clock clockwork.Clock) *Hub {
	h.clock = clock
	return h
}

// Run processes queued events until the context is cancelled. Handling of
// one event completes, state mutated and frames queued, before the next is
// dequeued.
func (h *Hub) Run(ctx context.Context) {
	log.Info().Msg("hub started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("hub shutting down")
			h.closeAll()
			return
		case ev := <-h.events:
			switch ev.kind {
			case eventJoin:
				h.sendSnapshot(ev.conn)
			case eventIntent:
				h.handleIntent(ev.conn, ev.payload)
			}
		}
	}
}

// Upgrade upgrades an HTTP request to a WebSocket connection and registers
// it with the hub. The catch-up snapshot is not sent here: the join is queued
// to the dispatch loop, so the snapshot a late joiner receives is read after
// every intent already ahead of it in the queue has been applied. The join is
// queued before the read pump starts, so a client's own intents are always
// handled after its snapshot.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	conn := newConnection(h, ws)
	h.register(conn)
	h.queueJoin(conn)

	go conn.writePump()
	go conn.readPump()

	log.Info().
		Str("connection_id", conn.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	return nil
}

// register adds a connection to the broadcast set.
func (h *Hub) register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[conn] = true
	h.metrics.ConnectionOpened()

	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(h.connections)).
		Msg("connection registered")
}

// unregister removes a connection from the broadcast set. Disconnects have
// no effect on the presentation state.
func (h *Hub) unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.connections[conn]; !exists {
		return
	}
	delete(h.connections, conn)
	close(conn.Send)
	h.metrics.ConnectionClosed()

	log.Info().
		Str("connection_id", conn.ID).
		Int("total_connections", len(h.connections)).
		Msg("connection unregistered")
}

// queueJoin hands a newly registered connection to the dispatch loop for its
// catch-up snapshot.
func (h *Hub) queueJoin(conn *Connection) {
	select {
	case h.events <- hubEvent{kind: eventJoin, conn: conn}:
	default:
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("event queue full, dropping join snapshot")
	}
}

// queueIntent hands a raw client frame to the dispatch loop.
func (h *Hub) queueIntent(conn *Connection, payload []byte) {
	select {
	case h.events <- hubEvent{kind: eventIntent, conn: conn, payload: payload}:
	default:
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("event queue full, dropping message")
		h.metrics.IntentDropped("overflow")
	}
}

// sendSnapshot delivers the current state to a single connection. It runs on
// the dispatch goroutine, so the snapshot it reads reflects every intent
// dispatched before the join and can never be older than a broadcast already
// queued to the connection.
func (h *Hub) sendSnapshot(conn *Connection) {
	payload, err := marshalState(h.store.Snapshot())
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal snapshot for new connection")
		return
	}

	select {
	case conn.Send <- payload:
	default:
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("connection send buffer full, closing connection")
		h.unregister(conn)
		conn.ws.Close()
	}
}

// handleIntent decodes one client frame, applies the transition, and fans the
// resulting snapshot out to every connection. Malformed or unknown intents
// are dropped without mutating state and without a broadcast; the hub never
// surfaces an error to the sender.
func (h *Hub) handleIntent(conn *Connection, payload []byte) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		h.dropIntent(conn, "unparseable", err)
		return
	}

	var snap state.Snapshot
	switch env.Type {
	case TypeSetIndex:
		intent, err := decodeIndexIntent(env.Data)
		if err != nil {
			h.dropIntent(conn, env.Type, err)
			return
		}
		snap = h.store.SetIndex(intent.Index, intent.Candidates)

	case TypeSetIdle:
		idle, err := coerceBool(env.Data)
		if err != nil {
			h.dropIntent(conn, env.Type, err)
			return
		}
		snap = h.store.SetIdle(idle)

	case TypeSetCategory:
		intent, err := decodeCategoryIntent(env.Data)
		if err != nil {
			h.dropIntent(conn, env.Type, err)
			return
		}
		snap = h.store.SetCategory(intent.Category, intent.Candidates)

	default:
		h.dropIntent(conn, env.Type, fmt.Errorf("unknown intent type"))
		return
	}

	h.metrics.IntentApplied(env.Type)
	h.broadcast(snap)

	if h.sink != nil {
		h.sink.PublishSnapshot(snap)
	}
}

func (h *Hub) dropIntent(conn *Connection, intentType string, err error) {
	h.metrics.IntentDropped(intentType)
	log.Debug().
		Err(err).
		Str("connection_id", conn.ID).
		Str("intent_type", intentType).
		Msg("dropping malformed intent")
}

// broadcast sends the snapshot to all currently connected clients, including
// the originator of the mutation.
func (h *Hub) broadcast(snap state.Snapshot) {
	payload, err := marshalState(snap)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal snapshot for broadcast")
		return
	}

	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.connections))
	for conn := range h.connections {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		select {
		case conn.Send <- payload:
		default:
			// Connection is slow/dead, close it
			log.Warn().
				Str("connection_id", conn.ID).
				Msg("connection send buffer full, closing connection")
			h.unregister(conn)
			conn.ws.Close()
		}
	}

	h.metrics.BroadcastSent(len(targets))
	log.Debug().
		Int("connections", len(targets)).
		Int("index", snap.Index).
		Bool("idle", snap.Idle).
		Str("category", snap.Category).
		Msg("snapshot broadcasted")
}

// closeAll tears down every connection on shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.connections {
		delete(h.connections, conn)
		close(conn.Send)
		conn.ws.Close()
		h.metrics.ConnectionClosed()
	}
}

// ConnectionCount returns the number of registered connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// ConnectionInfo describes one registered connection for the stats endpoint.
type ConnectionInfo struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connected_at"`
	LastPing    time.Time `json:"last_ping"`
}

// ConnectionStats returns per-connection liveness details.
func (h *Hub) ConnectionStats() []ConnectionInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	infos := make([]ConnectionInfo, 0, len(h.connections))
	for conn := range h.connections {
		infos = append(infos, ConnectionInfo{
			ID:          conn.ID,
			ConnectedAt: conn.ConnectedAt(),
			LastPing:    conn.LastPing(),
		})
	}
	return infos
}

// marshalState wraps a snapshot in the wire envelope.
func marshalState(snap state.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: TypeState, Data: data})
}
