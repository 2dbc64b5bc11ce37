// Package location keeps the wash locations known to the backend and which
// one this scanner is bound to. Selection lives for the process only.
package location

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/neekaru/washgate/internal/access"
)

// ErrUnknownLocation is returned when selecting an id the backend did not list.
var ErrUnknownLocation = errors.New("unknown location")

// Source fetches locations, normally *access.Client.
type Source interface {
	Locations(ctx context.Context) ([]access.Location, error)
}

// Store caches the location list and the current selection.
type Store struct {
	source Source

	mu        sync.RWMutex
	locations []access.Location
	selected  string
}

// NewStore creates a store backed by source.
func NewStore(source Source) *Store {
	return &Store{source: source}
}

// Refresh reloads the list. A selection that disappeared is cleared.
func (s *Store) Refresh(ctx context.Context) ([]access.Location, error) {
	locs, err := s.source.Locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh locations: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = locs
	if s.selected != "" && indexOf(locs, s.selected) < 0 {
		s.selected = ""
	}
	return append([]access.Location(nil), locs...), nil
}

// List returns the cached locations.
func (s *Store) List() []access.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]access.Location(nil), s.locations...)
}

// Select binds the scanner to id. An empty id clears the selection.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" && indexOf(s.locations, id) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLocation, id)
	}
	s.selected = id
	return nil
}

// SelectedID returns the bound location id, or "".
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Selected returns the bound location.
func (s *Store) Selected() (access.Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.locations, s.selected); i >= 0 {
		return s.locations[i], true
	}
	return access.Location{}, false
}

func indexOf(locs []access.Location, id string) int {
	for i, l := range locs {
		if l.ID == id {
			return i
		}
	}
	return -1
}
