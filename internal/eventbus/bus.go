package eventbus

import (
	"sync"
	"time"
)

// Event is a lightweight, in-memory signal used to decouple components.
//
// Contract:
//   - Publish runs listeners synchronously, in registration order.
//   - A panicking listener MUST NOT prevent later listeners from
//     running, nor surface to the publisher.
//   - Unsubscribing (even from inside a callback) is safe.
//
// Data should be small and ideally JSON-serializable.
type Event struct {
	Type string
	Time time.Time
	Data any
}

// Bus is a simple ordered observer registry.
type Bus struct {
	mu   sync.Mutex
	seq  uint64
	subs []subscriber
}

type subscriber struct {
	id uint64
	fn func(Event)
}

func New() *Bus {
	return &Bus{}
}

// Subscribe registers a listener and returns its unsubscribe func.
// Calling unsubscribe more than once is harmless.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	b.seq++
	id := b.seq
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers e to every listener registered at call time.
func (b *Bus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	// Snapshot subscribers so callbacks can subscribe/unsubscribe
	// without holding the bus lock while they run.
	b.mu.Lock()
	snapshot := make([]subscriber, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, s := range snapshot {
		deliver(s.fn, e)
	}
}

func deliver(fn func(Event), e Event) {
	defer func() { _ = recover() }()
	fn(e)
}

// Len reports the number of registered listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
