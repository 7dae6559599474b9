package events

import (
	"context"
	"sync"
)

// MemBus delivers events within the current process. Handlers run
// synchronously on the publishing goroutine, outside of the bus lock.
type MemBus struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]Handler
	nextID uint64
	closed bool
}

func NewMemBus() *MemBus {
	return &MemBus{
		subs: make(map[string]map[uint64]Handler),
	}
}

func (b *MemBus) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}

	registered := b.subs[subscriptionKey(event.Name, event.ClientID)]
	handlers := make([]Handler, 0, len(registered))
	for _, h := range registered {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}

	return nil
}

func (b *MemBus) Subscribe(name, clientID string, h Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	key := subscriptionKey(name, clientID)
	if b.subs[key] == nil {
		b.subs[key] = make(map[uint64]Handler)
	}

	b.nextID++
	id := b.nextID
	b.subs[key][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			delete(b.subs[key], id)
			if len(b.subs[key]) == 0 {
				delete(b.subs, key)
			}
		})
	}, nil
}

// Subscribers returns the number of handlers registered for name and clientID.
func (b *MemBus) Subscribers(name, clientID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs[subscriptionKey(name, clientID)])
}

func (b *MemBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.subs = make(map[string]map[uint64]Handler)
	return nil
}
