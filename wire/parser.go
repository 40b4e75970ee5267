package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Frame is a fully assembled frame as produced by Chain.Parse.
type Frame struct {
	Id   uint32
	Kind Kind
	Size uint32
	Data []byte
}

// synStage scans for the sentinel byte and discards everything up to
// and including it. Once satisfied it is a pass-through for the rest
// of the current frame.
type synStage struct {
	syn       byte
	satisfied bool
}

func (s *synStage) consume(in []byte) ([]byte, error) {
	if s.satisfied {
		return in, nil
	}
	idx := bytes.IndexByte(in, s.syn)
	if idx < 0 {
		return nil, &ProtocolError{Op: ErrSynNotFound}
	}
	s.satisfied = true
	return in[idx+1:], nil
}

func (s *synStage) reset() { s.satisfied = false }

// idStage accumulates 4 bytes and latches a big-endian u32.
type idStage struct {
	buf     []byte
	latched bool
	value   uint32
}

func (s *idStage) consume(in []byte) ([]byte, error) {
	if s.latched {
		return in, nil
	}
	s.buf = append(s.buf, in...)
	if len(s.buf) < 4 {
		return nil, &ProtocolError{Op: ErrIncomplete, Detail: "id"}
	}
	s.value = binary.BigEndian.Uint32(s.buf[:4])
	rest := s.buf[4:]
	s.buf = nil
	s.latched = true
	return rest, nil
}

func (s *idStage) reset() { s.buf = nil; s.latched = false; s.value = 0 }

// kindStage accumulates 1 byte and latches a decoded Kind. Decode
// failure is frame-fatal.
type kindStage struct {
	have    bool
	pending byte
	latched bool
	value   Kind
}

func (s *kindStage) consume(in []byte) ([]byte, error) {
	if s.latched {
		return in, nil
	}
	if !s.have {
		if len(in) == 0 {
			return nil, &ProtocolError{Op: ErrIncomplete, Detail: "kind"}
		}
		s.pending = in[0]
		s.have = true
		in = in[1:]
	}
	k, err := DecodeKind(s.pending)
	if err != nil {
		return nil, err
	}
	s.value = k
	s.latched = true
	return in, nil
}

func (s *kindStage) reset() { s.have = false; s.latched = false; s.value = 0 }

// sizeStage accumulates 4 bytes and latches a big-endian u32, enforcing
// an optional ceiling.
type sizeStage struct {
	buf     []byte
	latched bool
	value   uint32
}

func (s *sizeStage) consume(in []byte, ceiling uint32) ([]byte, error) {
	if s.latched {
		return in, nil
	}
	s.buf = append(s.buf, in...)
	if len(s.buf) < 4 {
		return nil, &ProtocolError{Op: ErrIncomplete, Detail: "size"}
	}
	value := binary.BigEndian.Uint32(s.buf[:4])
	rest := s.buf[4:]
	s.buf = nil
	if ceiling > 0 && value > ceiling {
		return nil, &ProtocolError{Op: ErrOversized, Detail: fmt.Sprintf("size %d exceeds ceiling %d", value, ceiling)}
	}
	s.value = value
	s.latched = true
	return rest, nil
}

func (s *sizeStage) reset() { s.buf = nil; s.latched = false; s.value = 0 }

// dataStage accumulates exactly Size bytes.
type dataStage struct {
	buf []byte
}

func (s *dataStage) consume(in []byte, size uint32) (payload, rest []byte, err error) {
	s.buf = append(s.buf, in...)
	if uint32(len(s.buf)) < size {
		return nil, nil, &ProtocolError{Op: ErrIncomplete, Detail: "data"}
	}
	payload = s.buf[:size]
	rest = s.buf[size:]
	s.buf = nil
	return payload, rest, nil
}

func (s *dataStage) reset() { s.buf = nil }

// Chain is the composed ParseSyn→ParseId→ParseKind→ParseSize→ParseData
// incremental parser. It produces at most one complete Frame per Parse
// call; bytes past a completed frame's Data are retained internally and
// prepended to the next call's input.
type Chain struct {
	syn  synStage
	id   idStage
	kind kindStage
	size sizeStage
	data dataStage

	maxFrameSize uint32 // 0 = no ceiling
	pending      []byte // bytes past the end of the last completed frame
}

// NewChain constructs a parser chain for the given sentinel byte and an
// optional ceiling on Size (0 disables the ceiling).
func NewChain(syn byte, maxFrameSize uint32) *Chain {
	return &Chain{
		syn:          synStage{syn: syn},
		maxFrameSize: maxFrameSize,
	}
}

// Parse feeds newly delivered bytes to the chain. On success it returns
// a complete Frame and nil error; the chain has already auto-reset to
// Awaiting-Syn. On a non-fatal error (*ProtocolError with NonFatal()
// true) the caller's read loop should simply continue reading more
// bytes. On a frame-fatal error the chain has already been reset.
func (c *Chain) Parse(in []byte) (*Frame, error) {
	buf := in
	if len(c.pending) > 0 {
		buf = make([]byte, 0, len(c.pending)+len(in))
		buf = append(buf, c.pending...)
		buf = append(buf, in...)
		c.pending = nil
	}

	rest, err := c.syn.consume(buf)
	if err != nil {
		return nil, err
	}

	rest, err = c.id.consume(rest)
	if err != nil {
		return nil, err
	}

	rest, err = c.kind.consume(rest)
	if err != nil {
		if IsProtocolError(err, ErrUnknownKind) {
			c.Reset()
		}
		return nil, err
	}

	rest, err = c.size.consume(rest, c.maxFrameSize)
	if err != nil {
		if IsProtocolError(err, ErrOversized) {
			c.Reset()
		}
		return nil, err
	}

	payload, rest, err := c.data.consume(rest, c.size.value)
	if err != nil {
		return nil, err
	}

	frame := &Frame{Id: c.id.value, Kind: c.kind.value, Size: c.size.value, Data: payload}
	c.resetFrameState()
	c.pending = rest
	return frame, nil
}

// resetFrameState resets per-field latches/buffers after a successful
// emission, without touching c.pending (which carries bytes into the
// next frame).
func (c *Chain) resetFrameState() {
	c.syn.reset()
	c.id.reset()
	c.kind.reset()
	c.size.reset()
	c.data.reset()
}

// Reset discards all carry-over and latched values, including any
// pending trailing bytes, restoring the chain to Awaiting-Syn. Used on
// frame-fatal errors so the next Syn search starts fresh.
func (c *Chain) Reset() {
	c.resetFrameState()
	c.pending = nil
}
