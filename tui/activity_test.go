package tui //nolint:testpackage // testing internal decode helper

import (
	"testing"
	"time"
)

func TestParseActivity(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"query_id":7,"msg_id":3,"kind":"sql","query":"select 1","start_time":"2026-01-02T15:04:05.123456789Z","duration_ms":12.5,"keep_alive":true}`)

	a, err := parseActivity(raw)
	if err != nil {
		t.Fatalf("parseActivity: %v", err)
	}
	if a.QueryID != 7 || a.MsgID != 3 || a.Kind != "sql" || a.Query != "select 1" {
		t.Fatalf("got %+v", a)
	}
	if !a.KeepAlive {
		t.Fatal("expected keep_alive = true")
	}
	if a.duration() != 12*time.Millisecond+500*time.Microsecond {
		t.Fatalf("duration = %v", a.duration())
	}
	if a.StartTime.IsZero() {
		t.Fatal("expected a decoded start time")
	}
}

func TestParseActivityInvalidJSON(t *testing.T) {
	t.Parallel()

	if _, err := parseActivity([]byte("not json")); err == nil {
		t.Fatal("expected a decode error")
	}
}
