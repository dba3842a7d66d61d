package limiter

import (
	"sync"
)

// EventBus fans limiter events out to subscribers without blocking the
// request path.
type EventBus interface {
	Subscribe(listener EventListener)
	Publish(event Event)
	Close()
}

type eventBus struct {
	listeners []EventListener
	eventChan chan Event
	closed    bool
	mu        sync.RWMutex
	wg        sync.WaitGroup
}

// NewEventBus creates a bus with the given buffer; when the buffer is
// full, events are dropped rather than blocking a request.
func NewEventBus(bufferSize int) EventBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}

	bus := &eventBus{
		eventChan: make(chan Event, bufferSize),
	}

	bus.wg.Add(1)
	go bus.dispatch()

	return bus
}

// Subscribe registers a listener for all future events.
func (b *eventBus) Subscribe(listener EventListener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.listeners = append(b.listeners, listener)
}

// Publish enqueues the event, dropping it when the buffer is full.
func (b *eventBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	select {
	case b.eventChan <- event:
	default:
	}
}

// Close stops dispatching after draining the buffer.
func (b *eventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.eventChan)
	b.mu.Unlock()

	b.wg.Wait()
}

func (b *eventBus) dispatch() {
	defer b.wg.Done()

	for event := range b.eventChan {
		b.mu.RLock()
		listeners := make([]EventListener, len(b.listeners))
		copy(listeners, b.listeners)
		b.mu.RUnlock()

		for _, listener := range listeners {
			b.safeNotify(listener, event)
		}
	}
}

// safeNotify keeps one panicking listener from breaking the others.
func (b *eventBus) safeNotify(listener EventListener, event Event) {
	defer func() {
		_ = recover()
	}()
	listener.OnEvent(event)
}
