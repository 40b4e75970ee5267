package tui

import (
	"encoding/json"
	"time"
)

// Activity mirrors the JSON shape the web inspector's SSE endpoint
// emits (web.activityJSON), decoded independently here so the TUI
// does not need to import the web package.
type Activity struct {
	QueryID    uint64
	MsgID      uint32
	Kind       string
	Query      string
	StartTime  time.Time
	DurationMs float64
	Error      string
	KeepAlive  bool
}

type wireActivity struct {
	QueryID    uint64  `json:"query_id"`
	MsgID      uint32  `json:"msg_id"`
	Kind       string  `json:"kind"`
	Query      string  `json:"query"`
	StartTime  string  `json:"start_time"`
	DurationMs float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
	KeepAlive  bool    `json:"keep_alive"`
}

// parseActivity decodes one SSE `data:` payload into an Activity.
func parseActivity(data []byte) (Activity, error) {
	var w wireActivity
	if err := json.Unmarshal(data, &w); err != nil {
		return Activity{}, err
	}
	t, _ := time.Parse(time.RFC3339Nano, w.StartTime)
	return Activity{
		QueryID:    w.QueryID,
		MsgID:      w.MsgID,
		Kind:       w.Kind,
		Query:      w.Query,
		StartTime:  t,
		DurationMs: w.DurationMs,
		Error:      w.Error,
		KeepAlive:  w.KeepAlive,
	}, nil
}

func (a Activity) duration() time.Duration {
	return time.Duration(a.DurationMs * float64(time.Millisecond))
}
