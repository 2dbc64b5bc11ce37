package console

import (
	"github.com/neekaru/washgate/internal/events"
	"github.com/neekaru/washgate/internal/scanner"
)

// EventMsg wraps an event from the bus.
type EventMsg struct {
	Event events.Event
}

// StatusMsg carries a fresh controller snapshot.
type StatusMsg struct {
	Status scanner.Status
}

// ActionErrorMsg is sent when an operator action fails.
type ActionErrorMsg struct {
	Err error
}

// ClearErrorMsg clears a shown action error after a timeout.
type ClearErrorMsg struct {
	seq int
}

// eventsClosedMsg is sent when the event channel is closed.
type eventsClosedMsg struct{}
