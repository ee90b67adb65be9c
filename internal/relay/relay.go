// Package relay republishes accepted presentation snapshots to NATS so
// out-of-process consumers (overlay renderers, recorders) can follow the
// board without holding a WebSocket connection. Delivery mirrors the hub's
// fire-and-forget semantics.
package relay

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/Markrodriguez1105/Live-Score-Board/internal/state"
)

// Config holds NATS connection settings for the relay.
type Config struct {
	URL           string
	Subject       string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns default relay configuration.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Subject:       "scoreboard.state",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// envelope is the message published for each accepted snapshot.
type envelope struct {
	EventID     string         `json:"event_id"`
	PublishedAt time.Time      `json:"published_at"`
	State       state.Snapshot `json:"state"`
}

// Relay publishes snapshots to a NATS subject.
type Relay struct {
	nc      *nats.Conn
	subject string
}

// New connects to NATS and returns a relay. The connection reconnects
// automatically; transient publish failures are logged and dropped, matching
// the hub's own delivery guarantees.
func New(config Config) (*Relay, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, err
	}

	log.Info().Str("subject", config.Subject).Msg("snapshot relay connected")
	return &Relay{nc: nc, subject: config.Subject}, nil
}

// PublishSnapshot publishes one snapshot. Implements hub.SnapshotSink.
func (r *Relay) PublishSnapshot(snap state.Snapshot) {
	payload, err := marshalEnvelope(snap, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal snapshot envelope")
		return
	}

	if err := r.nc.Publish(r.subject, payload); err != nil {
		log.Error().Err(err).Str("subject", r.subject).Msg("failed to publish snapshot")
		return
	}

	log.Debug().
		Str("subject", r.subject).
		Int("size", len(payload)).
		Msg("snapshot relayed")
}

// Close drains and closes the NATS connection.
func (r *Relay) Close() {
	if err := r.nc.Drain(); err != nil {
		log.Error().Err(err).Msg("failed to drain NATS connection")
	}
}

func marshalEnvelope(snap state.Snapshot, at time.Time) ([]byte, error) {
	return json.Marshal(envelope{
		EventID:     uuid.New().String(),
		PublishedAt: at,
		State:       snap,
	})
}
