package events

import "github.com/rs/zerolog"

// Observer is the interface for event observers
type Observer interface {
	OnEvent(event Event)
}

// ObserverFunc is a function that implements the Observer interface
type ObserverFunc func(event Event)

// OnEvent calls the observer function
func (f ObserverFunc) OnEvent(event Event) {
	f(event)
}

// LoggingObserver writes every event it receives to the logger.
type LoggingObserver struct {
	logger zerolog.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger zerolog.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

// OnEvent logs the event
func (o *LoggingObserver) OnEvent(event Event) {
	o.logger.Debug().Str("type", event.Type).Interface("data", event.Data).Msg("event")
}

// ChannelObserver forwards events into a buffered channel, dropping them when
// the reader falls behind.
type ChannelObserver struct {
	C chan Event
}

// NewChannelObserver creates a channel observer with the given buffer.
func NewChannelObserver(buffer int) *ChannelObserver {
	return &ChannelObserver{C: make(chan Event, buffer)}
}

// OnEvent enqueues the event without blocking.
func (o *ChannelObserver) OnEvent(event Event) {
	select {
	case o.C <- event:
	default:
	}
}
