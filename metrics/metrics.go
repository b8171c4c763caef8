// Package metrics exposes the engine's operational counters as Prometheus
// instruments: registered counters/gauges an integrator can scrape instead
// of parsing periodic log lines.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Engine holds every counter/gauge the replication core reports. All
// methods are safe to call with a nil *Engine (a no-op), so wiring metrics
// is opt-in for the library's callers.
type Engine struct {
	MessagesSent     prometheus.Counter
	MessagesRecv     prometheus.Counter
	BytesSent        prometheus.Counter
	BytesRecv        prometheus.Counter
	MalformedPackets prometheus.Counter
	Rebaselines      prometheus.Counter
	ActivePlayers    prometheus.Gauge
	ActiveEntities   prometheus.Gauge
}

// NewEngine builds and registers the engine's metrics against reg.
func NewEngine(reg prometheus.Registerer, namespace string) *Engine {
	m := &Engine{
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "messages_sent_total", Help: "Outbound engine packets sent.",
		}),
		MessagesRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "messages_received_total", Help: "Inbound engine packets processed.",
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bytes_sent_total", Help: "Outbound engine bytes sent.",
		}),
		BytesRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bytes_received_total", Help: "Inbound engine bytes processed.",
		}),
		MalformedPackets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "malformed_packets_total", Help: "Ingress packets rejected as malformed.",
		}),
		Rebaselines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rebaselines_total", Help: "Players forced back to RequestBaseline on diff overflow.",
		}),
		ActivePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "active_players", Help: "Currently connected players.",
		}),
		ActiveEntities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "active_entities", Help: "Currently live synced entities.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.MessagesSent, m.MessagesRecv, m.BytesSent, m.BytesRecv,
			m.MalformedPackets, m.Rebaselines, m.ActivePlayers, m.ActiveEntities,
		)
	}
	return m
}

// AddSent records one outbound packet of n bytes.
func (m *Engine) AddSent(bytes int) {
	if m == nil {
		return
	}
	m.MessagesSent.Inc()
	m.BytesSent.Add(float64(bytes))
}

// AddReceived records one inbound packet of n bytes.
func (m *Engine) AddReceived(bytes int) {
	if m == nil {
		return
	}
	m.MessagesRecv.Inc()
	m.BytesRecv.Add(float64(bytes))
}

// IncMalformed counts one rejected ingress packet.
func (m *Engine) IncMalformed() {
	if m == nil {
		return
	}
	m.MalformedPackets.Inc()
}

// IncRebaseline counts one player forced back to RequestBaseline.
func (m *Engine) IncRebaseline() {
	if m == nil {
		return
	}
	m.Rebaselines.Inc()
}

// SetActivePlayers reports the current connected-player count.
func (m *Engine) SetActivePlayers(n int) {
	if m == nil {
		return
	}
	m.ActivePlayers.Set(float64(n))
}

// SetActiveEntities reports the current live-entity count.
func (m *Engine) SetActiveEntities(n int) {
	if m == nil {
		return
	}
	m.ActiveEntities.Set(float64(n))
}
