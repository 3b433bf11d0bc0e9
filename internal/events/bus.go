package events

import (
	"log"
	"sync"
)

// Handler processes one published event payload.
type Handler func(payload interface{})

// Bus is an in-process publish/subscribe registry. Publish never waits for
// handlers: each handler runs in its own goroutine, and a panicking handler
// is recovered and logged so it cannot unwind into the publisher.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for an event name.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish dispatches payload to every handler registered for name and
// returns immediately.
func (b *Bus) Publish(name string, payload interface{}) {
	b.mu.RLock()
	handlers := b.handlers[name]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("event handler panic on %s: %v", name, r)
				}
			}()
			h(payload)
		}(h)
	}
}

// Wait blocks until all in-flight handlers have returned. Used on shutdown
// and by tests that need to observe handler side effects.
func (b *Bus) Wait() {
	b.wg.Wait()
}
