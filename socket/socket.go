package socket

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mickamy/apiwire/metrics"
	"github.com/mickamy/apiwire/wire"
)

const (
	// DefaultTimeout is the default read/write/connect timeout.
	DefaultTimeout = 10 * time.Second
	// DefaultReadBufferSize is the default scratch-buffer capacity.
	DefaultReadBufferSize = 4096
	// dialRetryRate bounds how often the dial loop may attempt to
	// connect, so a downed peer doesn't get hammered.
	dialRetryRate = 5 // attempts per second
)

// Config configures a Socket's connection and framing parameters, per
// spec §6's "Configuration recognized by the socket".
type Config struct {
	Address        string
	Timeout        time.Duration // 0 -> DefaultTimeout
	SynByte        byte          // 0 -> wire.DefaultSyn
	ReadBufferSize int           // 0 -> DefaultReadBufferSize
	MaxFrameSize   uint32        // 0 -> no ceiling

	// Logger receives non-fatal diagnostic lines (incomplete parses,
	// reconnect attempts). Defaults to log.Default() if nil.
	Logger *log.Logger
	// Metrics is optional; a nil Collector is a valid no-op.
	Metrics *metrics.Collector
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c Config) synByte() byte {
	if c.SynByte != 0 {
		return c.SynByte
	}
	return wire.DefaultSyn
}

func (c Config) readBufferSize() int {
	if c.ReadBufferSize > 0 {
		return c.ReadBufferSize
	}
	return DefaultReadBufferSize
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

// Socket owns a lazily established TCP connection, the shared Message
// (template + parser), a receive scratch buffer, a per-instance msg_id
// counter, and read/write timeouts. It is single-threaded per instance:
// callers must not invoke Send/Read concurrently on the same Socket.
type Socket struct {
	cfg     Config
	msg     *wire.Message
	buf     []byte
	limiter *rate.Limiter

	mu     sync.Mutex
	conn   net.Conn
	connID uuid.UUID
	msgID  uint32
}

// New constructs a Socket. It does not connect; the first Send or Read
// dials lazily.
func New(cfg Config) *Socket {
	return &Socket{
		cfg:     cfg,
		msg:     wire.NewMessage(cfg.synByte(), cfg.MaxFrameSize),
		buf:     make([]byte, cfg.readBufferSize()),
		limiter: rate.NewLimiter(rate.Limit(dialRetryRate), 1),
	}
}

// Connected reports whether the socket currently holds a live
// connection.
func (s *Socket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Close explicitly drops the active connection, if any.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Socket) closeLocked() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.msg.Reset()
	return err
}

// ensureConnected dials the remote in a bounded, rate-paced retry loop
// until the configured timeout elapses.
func (s *Socket) ensureConnected() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}

	deadline := time.Now().Add(s.cfg.timeout())
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	var lastErr error
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			if lastErr != nil {
				return &NetworkError{Op: ErrConnectTimeout, Err: lastErr}
			}
			return &NetworkError{Op: ErrConnectTimeout, Err: err}
		}

		conn, err := net.DialTimeout("tcp", s.cfg.Address, time.Until(deadline))
		if err == nil {
			if err := conn.SetDeadline(time.Time{}); err != nil {
				_ = conn.Close()
				lastErr = err
			} else {
				s.conn = conn
				s.connID = uuid.New()
				s.msg.Reset()
				s.cfg.logger().Printf("socket[%s]: connected to %s", s.connID, s.cfg.Address)
				s.cfg.Metrics.Reconnected()
				return nil
			}
		} else {
			lastErr = err
			s.cfg.logger().Printf("socket: dial %s failed: %v", s.cfg.Address, err)
		}

		if time.Now().After(deadline) {
			return &NetworkError{Op: ErrConnectTimeout, Err: lastErr}
		}
	}
}

// nextMsgID allocates the next wire-level message id, wrapping to 1
// (never 0) after math.MaxUint32, per spec §3/§9.
func (s *Socket) nextMsgID() uint32 {
	s.msgID = (s.msgID % ^uint32(0)) + 1
	return s.msgID
}

// Send allocates (or uses the caller-supplied) message id, builds the
// frame, and issues a single buffered write. It returns the id that was
// assigned. A caller-supplied id also becomes the point from which later
// allocations continue.
func (s *Socket) Send(kind wire.Kind, payload []byte, id *uint32) (uint32, error) {
	if err := s.ensureConnected(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	var assigned uint32
	if id != nil {
		assigned = *id
		s.msgID = assigned
	} else {
		assigned = s.nextMsgID()
	}
	frame := s.msg.BuildRaw(assigned, kind, payload)
	conn := s.conn
	s.mu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.timeout())); err != nil {
		return 0, s.fail(ErrSend, err)
	}

	n, err := conn.Write(frame)
	if err != nil {
		return 0, s.fail(ErrSend, err)
	}
	s.cfg.Metrics.FrameSent(n)
	return assigned, nil
}

// Read loops reading from the connection and feeding the parser chain
// until a complete frame is assembled, the configured read timeout
// elapses, or the peer closes the connection.
func (s *Socket) Read() (uint32, wire.Value, error) {
	if err := s.ensureConnected(); err != nil {
		return 0, wire.Value{}, err
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	deadline := time.Now().Add(s.cfg.timeout())
	if err := conn.SetReadDeadline(deadline); err != nil {
		return 0, wire.Value{}, s.fail(ErrRecv, err)
	}

	for {
		n, err := conn.Read(s.buf)
		if n > 0 {
			s.cfg.Metrics.FrameReceived(n)
			frame, perr := s.msg.Parse(s.buf[:n])
			if perr == nil {
				v, derr := wire.BytesToValue(frame.Kind, frame.Data)
				if derr != nil {
					s.msg.Reset()
					s.cfg.Metrics.ProtocolError(string(wire.ErrBadUTF8))
					return 0, wire.Value{}, derr
				}
				return frame.Id, v, nil
			}

			var pe *wire.ProtocolError
			if errors.As(perr, &pe) {
				if pe.NonFatal() {
					s.cfg.logger().Printf("socket[%s]: %v", s.connID, pe)
					continue
				}
				s.cfg.Metrics.ProtocolError(string(pe.Op))
				return 0, wire.Value{}, perr
			}
			return 0, wire.Value{}, perr
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				s.mu.Lock()
				s.closeLocked()
				s.mu.Unlock()
				return 0, wire.Value{}, &NetworkError{Op: ErrPeerClosed}
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.mu.Lock()
				s.closeLocked()
				s.mu.Unlock()
				return 0, wire.Value{}, &NetworkError{Op: ErrReadTimeout, Err: err}
			}

			if Classify(err) == Transient {
				s.cfg.logger().Printf("socket[%s]: transient read error: %v", s.connID, err)
				continue
			}

			return 0, wire.Value{}, s.fail(ErrRecv, err)
		}
	}
}

// fail classifies err, closing the connection on a fatal
// classification (the common case — see Classify), and wraps it as a
// NetworkError of the given op.
func (s *Socket) fail(op NetworkErrorOp, err error) error {
	if isClosedConnErr(err) {
		return &NetworkError{Op: op, Err: err}
	}
	if Classify(err) == Closed {
		s.mu.Lock()
		s.closeLocked()
		s.mu.Unlock()
	}
	return &NetworkError{Op: op, Err: err}
}

// ConnectionID returns the UUID tagging the currently active physical
// connection, for log correlation across reconnects. Returns the zero
// UUID if not connected.
func (s *Socket) ConnectionID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connID
}
