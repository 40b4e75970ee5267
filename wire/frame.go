package wire

import "encoding/binary"

// DefaultSyn is the default sentinel byte marking the start of every
// frame (22 decimal / 0x16).
const DefaultSyn byte = 0x16

// FrameHeaderWidth is the fixed width, in bytes, of everything in a
// frame but Data: Syn(1) + Id(4) + Kind(1) + Size(4).
const FrameHeaderWidth = 1 + 4 + 1 + 4

// Build emits the wire bytes of one frame: sentinel, big-endian id,
// kind tag, big-endian payload length, payload. Pure and stateless —
// it does not retain or mutate anything between calls.
func Build(syn byte, id uint32, kind Kind, payload []byte) []byte {
	out := make([]byte, FrameHeaderWidth+len(payload))
	out[0] = syn
	binary.BigEndian.PutUint32(out[1:5], id)
	out[5] = EncodeKind(kind)
	binary.BigEndian.PutUint32(out[6:10], uint32(len(payload)))
	copy(out[10:], payload)
	return out
}

// BuildValue is a convenience wrapper around Build that encodes a
// tagged Value via PayloadToBytes first.
func BuildValue(syn byte, id uint32, v Value) ([]byte, error) {
	payload, err := PayloadToBytes(v)
	if err != nil {
		return nil, err
	}
	return Build(syn, id, v.Kind, payload), nil
}
