// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for client traffic and lifecycle. A nil *Metrics is
// valid and records nothing.

package control

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/hioload-netclient/api"
)

// Metrics groups the client's collectors.
type Metrics struct {
	bytesSent     prometheus.Counter
	bytesReceived prometheus.Counter
	flushes       prometheus.Counter
	drains        prometheus.Counter
	growths       *prometheus.CounterVec
	disconnects   *prometheus.CounterVec
	state         prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered, which is useful in tests.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	const ns, sub = "hioload", "netclient"
	m := &Metrics{
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "bytes_sent_total",
			Help: "Bytes written to the socket by the drain.",
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "bytes_received_total",
			Help: "Bytes read from the socket by the fill task.",
		}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "flushes_total",
			Help: "Flush calls that queued a snapshot.",
		}),
		drains: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "snapshots_drained_total",
			Help: "Snapshots fully written to the socket.",
		}),
		growths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "buffer_growths_total",
			Help: "Ring buffer relocations by direction.",
		}, []string{"direction"}),
		disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "disconnects_total",
			Help: "Disconnect callbacks by code.",
		}, []string{"code"}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub, Name: "connection_state",
			Help: "0 disconnected, 1 connecting, 2 connected.",
		}),
	}
	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.bytesSent, m.bytesReceived, m.flushes, m.drains,
		m.growths, m.disconnects, m.state,
	}
}

// Sent counts bytes written to the socket.
func (m *Metrics) Sent(n int) {
	if m != nil && n > 0 {
		m.bytesSent.Add(float64(n))
	}
}

// Received counts bytes read from the socket.
func (m *Metrics) Received(n int) {
	if m != nil && n > 0 {
		m.bytesReceived.Add(float64(n))
	}
}

// Flushed counts queued snapshots.
func (m *Metrics) Flushed() {
	if m != nil {
		m.flushes.Inc()
	}
}

// Drained counts snapshots fully written.
func (m *Metrics) Drained() {
	if m != nil {
		m.drains.Inc()
	}
}

// Grew records n relocations of the "outbound" or "inbound" ring.
func (m *Metrics) Grew(direction string, n uint64) {
	if m != nil && n > 0 {
		m.growths.WithLabelValues(direction).Add(float64(n))
	}
}

// Disconnected counts a disconnect notification by code.
func (m *Metrics) Disconnected(code api.DisconnectCode) {
	if m != nil {
		m.disconnects.WithLabelValues(code.String()).Inc()
	}
}

// State publishes the connection state.
func (m *Metrics) State(s api.ConnState) {
	if m != nil {
		m.state.Set(float64(s))
	}
}
