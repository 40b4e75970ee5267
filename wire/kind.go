// Package wire implements the length-prefixed, typed binary framing
// protocol: the kind codec, the chained incremental parser, the frame
// builder and the Message object that binds them together.
package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind identifies the semantic type of a frame's Data payload. The tag
// values are wire-significant and fixed.
type Kind byte

const (
	KindAny       Kind = 0
	KindEmpty     Kind = 1
	KindBytes     Kind = 2
	KindBool      Kind = 8
	KindU16       Kind = 16
	KindU32       Kind = 17
	KindU64       Kind = 18
	KindI16       Kind = 24
	KindI32       Kind = 25
	KindI64       Kind = 26
	KindF32       Kind = 32
	KindF64       Kind = 33
	KindString    Kind = 40
	KindTimestamp Kind = 48
	KindDuration  Kind = 49
)

var kindNames = map[Kind]string{
	KindAny:       "any",
	KindEmpty:     "empty",
	KindBytes:     "bytes",
	KindBool:      "bool",
	KindU16:       "u16",
	KindU32:       "u32",
	KindU64:       "u64",
	KindI16:       "i16",
	KindI32:       "i32",
	KindI64:       "i64",
	KindF32:       "f32",
	KindF64:       "f64",
	KindString:    "string",
	KindTimestamp: "timestamp",
	KindDuration:  "duration",
}

// String returns the kind's label, or "unknown(N)" for an undecodable tag.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", byte(k))
}

// Valid reports whether k is one of the fifteen defined tags.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// EncodeKind returns the one-byte tag for k. Total, infallible: callers
// are expected to only ever pass one of the defined constants.
func EncodeKind(k Kind) byte {
	return byte(k)
}

// DecodeKind maps a wire tag byte back to a Kind, failing with
// ErrUnknownKind if the byte is not one of the fifteen defined tags.
func DecodeKind(b byte) (Kind, error) {
	k := Kind(b)
	if !k.Valid() {
		return 0, &ProtocolError{Op: ErrUnknownKind, Detail: fmt.Sprintf("tag byte %d", b)}
	}
	return k, nil
}

// Value is a kind-tagged decoded payload value.
type Value struct {
	Kind Kind
	// Exactly one of the following is meaningful, selected by Kind.
	Bytes     []byte
	Bool      bool
	U16       uint16
	U32       uint32
	U64       uint64
	I16       int16
	I32       int32
	I64       int64
	F32       float32
	F64       float64
	String    string
	Timestamp int64   // microseconds since Unix epoch
	Duration  float64 // seconds
}

// PayloadToBytes encodes v's value per its Kind into wire bytes.
// Numeric kinds are big-endian; String is UTF-8; Timestamp is a
// big-endian i64 of microseconds; Duration is a big-endian f64 of
// seconds; Any/Bytes are passed through raw; Empty is empty; Bool is a
// single 0/1 byte.
func PayloadToBytes(v Value) ([]byte, error) {
	switch v.Kind {
	case KindAny, KindBytes:
		return v.Bytes, nil
	case KindEmpty:
		return nil, nil
	case KindBool:
		if v.Bool {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case KindU16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, v.U16)
		return b, nil
	case KindU32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, v.U32)
		return b, nil
	case KindU64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, v.U64)
		return b, nil
	case KindI16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(v.I16))
		return b, nil
	case KindI32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(v.I32))
		return b, nil
	case KindI64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(v.I64))
		return b, nil
	case KindF32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, math.Float32bits(v.F32))
		return b, nil
	case KindF64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, math.Float64bits(v.F64))
		return b, nil
	case KindString:
		return []byte(v.String), nil
	case KindTimestamp:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(v.Timestamp))
		return b, nil
	case KindDuration:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, math.Float64bits(v.Duration))
		return b, nil
	default:
		return nil, &ProtocolError{Op: ErrUnknownKind, Detail: k2s(v.Kind)}
	}
}

func k2s(k Kind) string {
	return fmt.Sprintf("kind %d", byte(k))
}

// BytesToValue decodes raw Data per kind into a tagged Value. It is the
// inverse of PayloadToBytes, used on the socket receive path so every
// defined kind (not only Bytes/Any/String) is actually decoded.
func BytesToValue(k Kind, data []byte) (Value, error) {
	switch k {
	case KindAny, KindBytes:
		return Value{Kind: k, Bytes: data}, nil
	case KindEmpty:
		return Value{Kind: k}, nil
	case KindBool:
		if len(data) != 1 {
			return Value{}, fmt.Errorf("wire: bool payload must be 1 byte, got %d", len(data))
		}
		return Value{Kind: k, Bool: data[0] != 0}, nil
	case KindU16:
		if len(data) != 2 {
			return Value{}, fmt.Errorf("wire: u16 payload must be 2 bytes, got %d", len(data))
		}
		return Value{Kind: k, U16: binary.BigEndian.Uint16(data)}, nil
	case KindU32:
		if len(data) != 4 {
			return Value{}, fmt.Errorf("wire: u32 payload must be 4 bytes, got %d", len(data))
		}
		return Value{Kind: k, U32: binary.BigEndian.Uint32(data)}, nil
	case KindU64:
		if len(data) != 8 {
			return Value{}, fmt.Errorf("wire: u64 payload must be 8 bytes, got %d", len(data))
		}
		return Value{Kind: k, U64: binary.BigEndian.Uint64(data)}, nil
	case KindI16:
		if len(data) != 2 {
			return Value{}, fmt.Errorf("wire: i16 payload must be 2 bytes, got %d", len(data))
		}
		return Value{Kind: k, I16: int16(binary.BigEndian.Uint16(data))}, nil
	case KindI32:
		if len(data) != 4 {
			return Value{}, fmt.Errorf("wire: i32 payload must be 4 bytes, got %d", len(data))
		}
		return Value{Kind: k, I32: int32(binary.BigEndian.Uint32(data))}, nil
	case KindI64:
		if len(data) != 8 {
			return Value{}, fmt.Errorf("wire: i64 payload must be 8 bytes, got %d", len(data))
		}
		return Value{Kind: k, I64: int64(binary.BigEndian.Uint64(data))}, nil
	case KindF32:
		if len(data) != 4 {
			return Value{}, fmt.Errorf("wire: f32 payload must be 4 bytes, got %d", len(data))
		}
		return Value{Kind: k, F32: math.Float32frombits(binary.BigEndian.Uint32(data))}, nil
	case KindF64:
		if len(data) != 8 {
			return Value{}, fmt.Errorf("wire: f64 payload must be 8 bytes, got %d", len(data))
		}
		return Value{Kind: k, F64: math.Float64frombits(binary.BigEndian.Uint64(data))}, nil
	case KindString:
		if !isValidUTF8(data) {
			return Value{}, &ProtocolError{Op: ErrBadUTF8, Detail: "string payload is not valid UTF-8"}
		}
		return Value{Kind: k, String: string(data)}, nil
	case KindTimestamp:
		if len(data) != 8 {
			return Value{}, fmt.Errorf("wire: timestamp payload must be 8 bytes, got %d", len(data))
		}
		return Value{Kind: k, Timestamp: int64(binary.BigEndian.Uint64(data))}, nil
	case KindDuration:
		if len(data) != 8 {
			return Value{}, fmt.Errorf("wire: duration payload must be 8 bytes, got %d", len(data))
		}
		return Value{Kind: k, Duration: math.Float64frombits(binary.BigEndian.Uint64(data))}, nil
	default:
		return Value{}, &ProtocolError{Op: ErrUnknownKind, Detail: k2s(k)}
	}
}
