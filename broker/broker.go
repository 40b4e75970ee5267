// Package broker implements a small in-process pub/sub broker that
// rebroadcasts every façade request/reply exchange as an Activity
// event, for the benefit of the web inspector and TUI watcher. It is
// purely additive: Publish never blocks, and nothing in the core
// (wire/socket/envelope/client) depends on it.
//
// The shape mirrors the teacher's own broker package, referenced by
// web/web.go and server/server.go but not present in the retrieved
// pack — this is a fresh implementation matching the observed
// Subscribe()/Publish() usage contract at those call sites.
package broker

import (
	"sync"
	"time"
)

// Activity is one record of a façade Fetch call, broadcast in-memory
// to subscribers while the process is alive. It is never persisted and
// is not part of the wire protocol.
type Activity struct {
	QueryID   uint64
	MsgID     uint32
	Kind      string // "sql", "python", or "executable"
	Query     string // best-effort echo of the query payload
	StartTime time.Time
	Duration  time.Duration
	Error     string
	KeepAlive bool
}

// Broker fans out published Activity events to any number of
// subscribers.
type Broker struct {
	buffer int

	mu   sync.Mutex
	subs map[chan Activity]struct{}
}

// New constructs a Broker whose per-subscriber channels have the given
// buffer size.
func New(buffer int) *Broker {
	if buffer < 1 {
		buffer = 1
	}
	return &Broker{
		buffer: buffer,
		subs:   make(map[chan Activity]struct{}),
	}
}

// Subscribe registers a new subscriber and returns its channel along
// with an unsubscribe function. The unsubscribe function must be
// called exactly once (typically via defer) when the subscriber is
// done listening.
func (b *Broker) Subscribe() (<-chan Activity, func()) {
	ch := make(chan Activity, b.buffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, unsub
}

// Publish broadcasts a to every current subscriber. It never blocks: a
// subscriber whose channel is full simply misses the event.
func (b *Broker) Publish(a Activity) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- a:
		default:
		}
	}
}

// SubscriberCount reports the number of currently active subscribers,
// mainly useful for tests.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
