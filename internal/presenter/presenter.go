// Package presenter holds the scan result currently on screen.
package presenter

import (
	"sync"

	"github.com/neekaru/washgate/internal/access"
	"github.com/neekaru/washgate/internal/events"
)

// Presenter holds at most one outcome. It performs no I/O; dismissing a
// result notifies the registered hooks so scanning can resume.
type Presenter struct {
	mu        sync.RWMutex
	outcome   *access.Outcome
	onDismiss []func()
	bus       *events.Bus
}

// New creates an empty presenter. bus may be nil.
func New(bus *events.Bus) *Presenter {
	return &Presenter{bus: bus}
}

// OnDismiss registers fn to run after every successful Dismiss.
func (p *Presenter) OnDismiss(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDismiss = append(p.onDismiss, fn)
}

// Show replaces the current outcome.
func (p *Presenter) Show(o access.Outcome) {
	p.mu.Lock()
	p.outcome = &o
	p.mu.Unlock()

	p.bus.Publish(events.New(events.EventTypeOutcome, View{Visible: true, Outcome: &o}))
}

// Current returns the outcome on screen, if any.
func (p *Presenter) Current() (access.Outcome, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.outcome == nil {
		return access.Outcome{}, false
	}
	return *p.outcome, true
}

// Visible reports whether a result is showing.
func (p *Presenter) Visible() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.outcome != nil
}

// Dismiss clears the result and runs the dismiss hooks. It reports false when
// nothing was showing, in which case no hook runs.
func (p *Presenter) Dismiss() bool {
	p.mu.Lock()
	if p.outcome == nil {
		p.mu.Unlock()
		return false
	}
	p.outcome = nil
	hooks := append([]func(){}, p.onDismiss...)
	p.mu.Unlock()

	p.bus.Publish(events.New(events.EventTypeOutcome, View{Visible: false}))

	for _, fn := range hooks {
		fn()
	}
	return true
}

// View is the presenter state as published to observers and the API.
type View struct {
	Visible bool            `json:"visible"`
	Outcome *access.Outcome `json:"outcome,omitempty"`
}

// Snapshot returns the current view.
func (p *Presenter) Snapshot() View {
	o, ok := p.Current()
	if !ok {
		return View{}
	}
	return View{Visible: true, Outcome: &o}
}
