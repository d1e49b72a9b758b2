// Package events carries state changes from a visitor session to its
// stream subscribers.
package events

import (
	"sync"
	"time"
)

// Event is one state change. Type is dotted, e.g. "window.opened".
type Event struct {
	Type    string    `json:"type"`
	Seq     uint64    `json:"seq"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

// DropFunc is told about every event a subscriber missed.
type DropFunc func(e Event)

// Subscription receives events until closed.
type Subscription struct {
	C <-chan Event

	bus  *Bus
	ch   chan Event
	once sync.Once
}

// Close detaches the subscription and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() { s.bus.remove(s) })
}

// Bus fans events out to subscribers without blocking the publisher. A
// subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	seq    uint64
	closed bool
	onDrop DropFunc
	now    func() time.Time
}

// NewBus creates a bus. onDrop may be nil.
func NewBus(onDrop DropFunc) *Bus {
	return &Bus{
		subs:   make(map[*Subscription]struct{}),
		onDrop: onDrop,
		now:    time.Now,
	}
}

// Subscribe registers a subscriber with the given buffer (minimum 1). On a
// closed bus the returned subscription's channel is already closed.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	s := &Subscription{C: ch, bus: b, ch: ch}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		s.once.Do(func() {})
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

// Publish stamps and delivers an event. It returns the stamped event.
func (b *Bus) Publish(typ string, payload any) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	e := Event{Type: typ, Seq: b.seq, Time: b.now(), Payload: payload}
	if b.closed {
		return e
	}
	for s := range b.subs {
		select {
		case s.ch <- e:
		default:
			if b.onDrop != nil {
				b.onDrop(e)
			}
		}
	}
	return e
}

// Subscribers returns the number of attached subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscription. Later publishes are discarded.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		close(s.ch)
		delete(b.subs, s)
	}
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
	}
}
