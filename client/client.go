// Package client implements the request façade: it wraps one Socket,
// the currently held Query, and the auth/keep-alive/debug flags, and
// drives the complete send-one-frame/await-one-reply exchange per
// spec §4.7.
package client

import (
	"encoding/json"
	"time"

	"github.com/mickamy/apiwire/broker"
	"github.com/mickamy/apiwire/envelope"
	"github.com/mickamy/apiwire/metrics"
	"github.com/mickamy/apiwire/socket"
	"github.com/mickamy/apiwire/wire"
)

// marshalRequest encodes req, wrapping a failure as an envelope Error
// of kind Serialize.
func marshalRequest(req envelope.Request) ([]byte, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, &envelope.Error{Op: envelope.ErrSerialize, Err: err}
	}
	return b, nil
}

// Config configures a Client.
type Config struct {
	Address        string
	AuthToken      string
	Timeout        time.Duration
	SynByte        byte
	ReadBufferSize int
	MaxFrameSize   uint32

	Metrics *metrics.Collector
	Broker  *broker.Broker
}

// Client wraps one complete request/reply exchange over a Socket,
// maintaining its own query_id sequence, distinct from the wire-level
// msg_id that Socket allocates.
type Client struct {
	sock      *Socket
	authToken string
	debug     bool
	queryID   uint64
	query     envelope.Query

	metrics *metrics.Collector
	broker  *broker.Broker
}

// Socket is an alias of socket.Socket, the concrete socket type the
// client drives; it is not an interface, so tests use a real Socket
// against a loopback listener.
type Socket = socket.Socket

// New constructs a Client over a fresh Socket built from cfg.
func New(cfg Config) *Client {
	sock := socket.New(socket.Config{
		Address:        cfg.Address,
		Timeout:        cfg.Timeout,
		SynByte:        cfg.SynByte,
		ReadBufferSize: cfg.ReadBufferSize,
		MaxFrameSize:   cfg.MaxFrameSize,
		Metrics:        cfg.Metrics,
	})
	return &Client{
		sock:      sock,
		authToken: cfg.AuthToken,
		metrics:   cfg.Metrics,
		broker:    cfg.Broker,
	}
}

// NewWithSocket wraps an already-constructed Socket, for tests and for
// callers that want to share one Socket's dial/retry configuration
// across multiple façade instances.
func NewWithSocket(sock *Socket, authToken string, m *metrics.Collector, b *broker.Broker) *Client {
	return &Client{sock: sock, authToken: authToken, metrics: m, broker: b}
}

// SetDebug toggles the debug flag carried in future requests.
func (c *Client) SetDebug(debug bool) { c.debug = debug }

// WithTimeout has no effect on an already-constructed Socket beyond
// what Config.Timeout set; Socket's timeout is fixed at construction,
// matching the teacher's own lazy-connect design. Present for API
// parity with spec §4.7's with_timeout operation.
func (c *Client) WithTimeout(time.Duration) *Client { return c }

// nextQueryID allocates the next façade-level query id, wrapping to 1
// (never 0) after math.MaxUint64, independent of the wire-level
// msg_id sequence Socket maintains.
func (c *Client) nextQueryID() uint64 {
	c.queryID = (c.queryID % ^uint64(0)) + 1
	return c.queryID
}

// FetchWith replaces the currently held query and performs Fetch.
func (c *Client) FetchWith(query envelope.Query, keepAlive bool) (envelope.Reply, error) {
	c.query = query
	return c.Fetch(keepAlive)
}

// Fetch serializes the currently held query plus auth token, keep-alive
// and debug flags, and the next query_id as one JSON object, sends it
// as a single String frame, waits for one reply frame, and parses its
// Data as a Reply.
func (c *Client) Fetch(keepAlive bool) (envelope.Reply, error) {
	start := time.Now()
	qid := c.nextQueryID()

	req := envelope.Request{
		QueryID:   qid,
		AuthToken: c.authToken,
		KeepAlive: keepAlive,
		Debug:     c.debug,
		Query:     c.query,
	}

	msgID, reply, err := c.exchange(req)

	c.publish(req, msgID, start, err, reply)
	if c.metrics != nil {
		c.metrics.ObserveRequest(time.Since(start))
	}
	return reply, err
}

func (c *Client) exchange(req envelope.Request) (uint32, envelope.Reply, error) {
	payload, err := marshalRequest(req)
	if err != nil {
		return 0, envelope.Reply{}, err
	}

	msgID, err := c.sock.Send(wire.KindString, payload, nil)
	if err != nil {
		return 0, envelope.Reply{}, err
	}

	_, val, err := c.sock.Read()
	if err != nil {
		return msgID, envelope.Reply{}, err
	}

	data, err := wire.PayloadToBytes(val)
	if err != nil {
		return msgID, envelope.Reply{}, err
	}
	reply, err := envelope.ParseReply(data)
	return msgID, reply, err
}

func (c *Client) publish(req envelope.Request, msgID uint32, start time.Time, err error, reply envelope.Reply) {
	if c.broker == nil {
		return
	}
	a := broker.Activity{
		QueryID:   req.QueryID,
		MsgID:     msgID,
		Kind:      string(req.Query.Kind),
		Query:     req.Query.Summary(),
		StartTime: start,
		Duration:  time.Since(start),
		KeepAlive: req.KeepAlive,
	}
	switch {
	case err != nil:
		a.Error = err.Error()
	case reply.HasError():
		a.Error = reply.Error.Message
	}
	c.broker.Publish(a)
}

// Close drops the underlying connection, if any.
func (c *Client) Close() error { return c.sock.Close() }
