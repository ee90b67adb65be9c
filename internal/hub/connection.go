package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Connection is one WebSocket client, viewer or controller; the hub makes no
// distinction and any connected client may mutate the shared state.
type Connection struct {
	ID   string
	Send chan []byte

	hub *Hub
	ws  *websocket.Conn

	connectedAt time.Time

	mu       sync.Mutex
	lastPing time.Time
}

func newConnection(h *Hub, ws *websocket.Conn) *Connection {
	now := h.clock.Now()
	return &Connection{
		ID:          uuid.New().String(),
		Send:        make(chan []byte, h.config.SendBuffer),
		hub:         h,
		ws:          ws,
		connectedAt: now,
		lastPing:    now,
	}
}

// ConnectedAt returns when the connection was accepted.
func (c *Connection) ConnectedAt() time.Time {
	return c.connectedAt
}

// LastPing returns the time of the most recent ping sent or pong received.
func (c *Connection) LastPing() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPing
}

// touchPing stamps ping/pong activity. Called from both pumps.
func (c *Connection) touchPing() {
	c.mu.Lock()
	c.lastPing = c.hub.clock.Now()
	c.mu.Unlock()
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with periodic pings. The ping cycle and write deadlines run off the
// hub clock so tests can drive them with a fake.
func (c *Connection) writePump() {
	ticker := c.hub.clock.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.ws.SetWriteDeadline(c.hub.clock.Now().Add(c.hub.config.WriteTimeout))
			if !ok {
				// Channel was closed by unregister.
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.Chan():
			c.ws.SetWriteDeadline(c.hub.clock.Now().Add(c.hub.config.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
			c.touchPing()
		}
	}
}

// readPump reads client frames and queues them for the dispatch loop.
func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(c.hub.config.MaxMessageSize)
	c.ws.SetReadDeadline(c.hub.clock.Now().Add(c.hub.config.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(c.hub.clock.Now().Add(c.hub.config.ReadTimeout))
		c.touchPing()
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.hub.queueIntent(c, message)
		c.ws.SetReadDeadline(c.hub.clock.Now().Add(c.hub.config.ReadTimeout))
	}
}
