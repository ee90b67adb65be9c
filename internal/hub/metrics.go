package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks hub activity for the /metrics endpoint.
type Metrics struct {
	connectionsActive prometheus.Gauge
	intentsTotal      *prometheus.CounterVec
	broadcastsTotal   prometheus.Counter
	broadcastFanout   prometheus.Counter
}

// NewMetrics registers hub metrics with the given registerer. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "scoreboard_connections_active",
			Help: "Number of currently connected WebSocket clients.",
		}),
		intentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scoreboard_intents_total",
			Help: "Client intents processed, by type and outcome.",
		}, []string{"type", "status"}),
		broadcastsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "scoreboard_broadcasts_total",
			Help: "State broadcasts performed after accepted intents.",
		}),
		broadcastFanout: factory.NewCounter(prometheus.CounterOpts{
			Name: "scoreboard_broadcast_messages_total",
			Help: "Individual snapshot messages fanned out to clients.",
		}),
	}
}

func (m *Metrics) ConnectionOpened() {
	m.connectionsActive.Inc()
}

func (m *Metrics) ConnectionClosed() {
	m.connectionsActive.Dec()
}

func (m *Metrics) IntentApplied(intentType string) {
	m.intentsTotal.WithLabelValues(intentType, "applied").Inc()
}

func (m *Metrics) IntentDropped(intentType string) {
	m.intentsTotal.WithLabelValues(intentType, "dropped").Inc()
}

func (m *Metrics) BroadcastSent(fanout int) {
	m.broadcastsTotal.Inc()
	m.broadcastFanout.Add(float64(fanout))
}
