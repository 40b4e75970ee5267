package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mickamy/apiwire/metrics"
)

func TestCollectorRecordsObservations(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.New(reg)

	c.FrameSent(10)
	c.FrameReceived(20)
	c.ProtocolError("closed")
	c.Reconnected()
	c.ObserveRequest(150 * time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	counts := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				counts[f.GetName()] += m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				counts[f.GetName()] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}

	want := map[string]float64{
		"apiwire_frames_sent_total":        1,
		"apiwire_frames_received_total":    1,
		"apiwire_bytes_sent_total":         10,
		"apiwire_bytes_received_total":     20,
		"apiwire_protocol_errors_total":    1,
		"apiwire_reconnects_total":         1,
		"apiwire_request_duration_seconds": 1,
	}
	for name, wantVal := range want {
		if got := counts[name]; got != wantVal {
			t.Errorf("%s = %v, want %v", name, got, wantVal)
		}
	}
}

func TestNilCollectorIsNoOp(t *testing.T) {
	t.Parallel()

	var c *metrics.Collector
	c.FrameSent(10)
	c.FrameReceived(20)
	c.ProtocolError("closed")
	c.Reconnected()
	c.ObserveRequest(time.Second)
}
