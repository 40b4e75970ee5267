package wire

// Message binds the frame template used for building outgoing frames
// to the parser chain used for consuming incoming bytes, giving a
// single abstraction the socket drives on send and receive.
type Message struct {
	Syn          byte
	MaxFrameSize uint32
	chain        *Chain
}

// NewMessage constructs a Message with its own parser chain.
func NewMessage(syn byte, maxFrameSize uint32) *Message {
	return &Message{
		Syn:          syn,
		MaxFrameSize: maxFrameSize,
		chain:        NewChain(syn, maxFrameSize),
	}
}

// Build emits the wire bytes of one frame carrying v, tagged with id.
func (m *Message) Build(id uint32, v Value) ([]byte, error) {
	return BuildValue(m.Syn, id, v)
}

// BuildRaw emits the wire bytes of one frame for a kind/payload pair
// that the caller has already encoded.
func (m *Message) BuildRaw(id uint32, kind Kind, payload []byte) []byte {
	return Build(m.Syn, id, kind, payload)
}

// Parse feeds bytes to the underlying parser chain. See Chain.Parse.
func (m *Message) Parse(in []byte) (*Frame, error) {
	return m.chain.Parse(in)
}

// Reset discards the parser chain's carry-over and latched state.
func (m *Message) Reset() {
	m.chain.Reset()
}
