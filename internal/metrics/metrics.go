// Package metrics exposes the server's runtime counters and gauges as
// Prometheus metrics, registered against a dedicated registry rather
// than the global default so a test process can spin up several
// without collisions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry collects every counter and gauge a running server exposes.
type Registry struct {
	registry *prometheus.Registry

	MessagesSent prometheus.Counter
	MessagesRecv prometheus.Counter
	BytesSent    prometheus.Counter
	BytesRecv    prometheus.Counter

	Connections    *prometheus.GaugeVec
	ActiveEntities prometheus.Gauge

	DecodeErrors prometheus.Counter
}

// ConnectionState labels the Connections gauge.
type ConnectionState string

const (
	ConnectionPending     ConnectionState = "pending"
	ConnectionEstablished ConnectionState = "established"
)

// NewRegistry builds and registers every metric under a fresh registry.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		registry: reg,
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_messages_sent_total",
			Help: "Messages encoded and handed to the transport.",
		}),
		MessagesRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_messages_received_total",
			Help: "Messages decoded from inbound datagrams.",
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_bytes_sent_total",
			Help: "Bytes written to the transport.",
		}),
		BytesRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_bytes_received_total",
			Help: "Bytes read from the transport.",
		}),
		Connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "arena_connections",
			Help: "Connections by handshake state.",
		}, []string{"state"}),
		ActiveEntities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arena_active_entities",
			Help: "Entities currently live in the world.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_decode_errors_total",
			Help: "Datagrams dropped for failing to decode.",
		}),
	}
	reg.MustRegister(r.MessagesSent, r.MessagesRecv, r.BytesSent, r.BytesRecv,
		r.Connections, r.ActiveEntities, r.DecodeErrors)
	return r
}

// Handler returns the HTTP handler that serves this registry's metrics
// in the Prometheus text exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
