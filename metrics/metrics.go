// Package metrics exposes Prometheus counters and histograms for the
// socket and request façade: frames/bytes transferred, protocol errors
// by kind, successful (re)connects, and request latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the registered metric instruments. A nil *Collector
// is a valid no-op: every method tolerates a nil receiver so the core
// never requires Prometheus to function.
type Collector struct {
	framesSent      prometheus.Counter
	framesReceived  prometheus.Counter
	bytesSent       prometheus.Counter
	bytesReceived   prometheus.Counter
	protocolErrors  *prometheus.CounterVec
	reconnects      prometheus.Counter
	requestDuration prometheus.Histogram
}

// New registers apiwire's metrics against reg and returns a Collector.
// Pass prometheus.DefaultRegisterer to expose them on the default
// /metrics handler.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		framesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apiwire_frames_sent_total",
			Help: "Total frames written to the wire.",
		}),
		framesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apiwire_frames_received_total",
			Help: "Total frames successfully parsed from the wire.",
		}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apiwire_bytes_sent_total",
			Help: "Total bytes written to the wire.",
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apiwire_bytes_received_total",
			Help: "Total bytes read from the wire.",
		}),
		protocolErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apiwire_protocol_errors_total",
			Help: "Total protocol/network errors, by kind.",
		}, []string{"kind"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apiwire_reconnects_total",
			Help: "Total successful (re)dials.",
		}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "apiwire_request_duration_seconds",
			Help:    "Latency of façade fetch calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.framesSent, c.framesReceived,
		c.bytesSent, c.bytesReceived,
		c.protocolErrors, c.reconnects,
		c.requestDuration,
	)
	return c
}

func (c *Collector) FrameSent(bytes int) {
	if c == nil {
		return
	}
	c.framesSent.Inc()
	c.bytesSent.Add(float64(bytes))
}

func (c *Collector) FrameReceived(bytes int) {
	if c == nil {
		return
	}
	c.framesReceived.Inc()
	c.bytesReceived.Add(float64(bytes))
}

func (c *Collector) ProtocolError(kind string) {
	if c == nil {
		return
	}
	c.protocolErrors.WithLabelValues(kind).Inc()
}

func (c *Collector) Reconnected() {
	if c == nil {
		return
	}
	c.reconnects.Inc()
}

func (c *Collector) ObserveRequest(d time.Duration) {
	if c == nil {
		return
	}
	c.requestDuration.Observe(d.Seconds())
}
