package limiter

import (
	"time"
)

// EventType classifies limiter events.
type EventType string

const (
	// EventAllowed a request consumed quota and passed.
	EventAllowed EventType = "allowed"

	// EventRejected a request was over quota.
	EventRejected EventType = "rejected"

	// EventStoreFailure the shared store errored and the limiter failed
	// open.
	EventStoreFailure EventType = "store_failure"
)

// Event is one limiter occurrence published on the bus. Subscribers get a
// copy; the decision pointer must be treated as read-only.
type Event struct {
	Type      EventType
	Tier      string
	Key       string
	Decision  *Decision
	Err       error
	Timestamp time.Time
}

// EventListener receives published events.
type EventListener interface {
	OnEvent(event Event)
}

// EventListenerFunc adapts a function to EventListener.
type EventListenerFunc func(event Event)

// OnEvent implements EventListener.
func (f EventListenerFunc) OnEvent(event Event) {
	f(event)
}
