// Package events fans scanner notifications out to observers (logs, the
// WebSocket hub, the operator console).
package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// Bus dispatches events to observers registered per event type. A single
// worker drains the queue so observers see events in publish order.
type Bus struct {
	observers     map[string][]Observer
	observersLock sync.RWMutex
	queue         chan func()
	logger        zerolog.Logger
	closeOnce     sync.Once
	done          chan struct{}
}

// NewBus starts a bus with the given queue size.
func NewBus(queueSize int, logger zerolog.Logger) *Bus {
	b := &Bus{
		observers: make(map[string][]Observer),
		queue:     make(chan func(), queueSize),
		logger:    logger,
		done:      make(chan struct{}),
	}
	go b.worker()
	return b
}

func (b *Bus) worker() {
	defer close(b.done)
	for task := range b.queue {
		task()
	}
}

// Subscribe registers an observer for one or more event types.
func (b *Bus) Subscribe(observer Observer, eventTypes ...string) {
	b.observersLock.Lock()
	defer b.observersLock.Unlock()

	for _, t := range eventTypes {
		b.observers[t] = append(b.observers[t], observer)
	}
}

// Unsubscribe removes an observer from every event type. Observers are
// compared by identity, so pass the same pointer given to Subscribe.
func (b *Bus) Unsubscribe(observer Observer) {
	b.observersLock.Lock()
	defer b.observersLock.Unlock()

	for t, list := range b.observers {
		kept := list[:0]
		for _, obs := range list {
			if obs != observer {
				kept = append(kept, obs)
			}
		}
		b.observers[t] = kept
	}
}

// Publish queues an event. A nil bus is a no-op. When the queue is full the
// event is dropped and logged rather than blocking the scanner.
func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}

	b.observersLock.RLock()
	observers := append([]Observer(nil), b.observers[event.Type]...)
	b.observersLock.RUnlock()

	if len(observers) == 0 {
		return
	}

	task := func() {
		for _, observer := range observers {
			observer.OnEvent(event)
		}
	}

	defer func() {
		// Publish after Close.
		if recover() != nil {
			b.logger.Debug().Str("type", event.Type).Msg("bus closed, event dropped")
		}
	}()

	select {
	case b.queue <- task:
	default:
		b.logger.Warn().Str("type", event.Type).Msg("event queue full, dropping event")
	}
}

// Close stops the worker after draining queued events.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.queue)
		<-b.done
	})
}
