package events

import "time"

// Event types
const (
	EventTypeState    = "state"
	EventTypeOutcome  = "outcome"
	EventTypeError    = "error"
	EventTypeCameras  = "cameras"
	EventTypeLocation = "location"
)

// AllTypes lists every event type, for observers that want everything.
var AllTypes = []string{
	EventTypeState,
	EventTypeOutcome,
	EventTypeError,
	EventTypeCameras,
	EventTypeLocation,
}

// Event is something the scanner wants observers to know about.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

// New stamps an event with the current time.
func New(eventType string, data interface{}) Event {
	return Event{Type: eventType, Data: data, At: time.Now()}
}
