// Package web serves the apiwire inspector: a static single-page
// viewer plus an SSE stream of broker Activity events. It carries no
// explain/analyze endpoint and no protobuf/gRPC — see DESIGN.md.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/mickamy/apiwire/broker"
)

//go:embed static
var staticFS embed.FS

// Server serves the apiwire inspector UI and its activity stream.
type Server struct {
	httpServer *http.Server
	broker     *broker.Broker
}

// New creates a web Server backed by the given Broker.
func New(b *broker.Broker) *Server {
	s := &Server{broker: b}

	mux := http.NewServeMux()

	sub, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /", http.FileServer(http.FS(sub)))
	mux.HandleFunc("GET /api/activity", s.handleSSE)

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Serve starts the HTTP server on the given listener.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web: serve: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// activityJSON is the wire shape of one SSE `data:` line.
type activityJSON struct {
	QueryID    uint64  `json:"query_id"`
	MsgID      uint32  `json:"msg_id"`
	Kind       string  `json:"kind"`
	Query      string  `json:"query"`
	StartTime  string  `json:"start_time"`
	DurationMs float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
	KeepAlive  bool    `json:"keep_alive"`
}

func toJSON(a broker.Activity) activityJSON {
	return activityJSON{
		QueryID:    a.QueryID,
		MsgID:      a.MsgID,
		Kind:       a.Kind,
		Query:      a.Query,
		StartTime:  a.StartTime.Format(time.RFC3339Nano),
		DurationMs: float64(a.Duration.Microseconds()) / 1000,
		Error:      a.Error,
		KeepAlive:  a.KeepAlive,
	}
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	flusher.Flush() // send headers immediately

	ch, unsub := s.broker.Subscribe()
	defer unsub()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(toJSON(a))
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
