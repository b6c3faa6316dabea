// Package favorites tracks the photos a user has marked during a session.
package favorites

import (
	"sync"

	"github.com/timmy/fotoflix/internal/domain"
)

// ToggleEvent is emitted after every Toggle.
type ToggleEvent struct {
	Photo    domain.Photo `json:"photo"`
	Favorite bool         `json:"favorite"`
}

// Set is keyed by photo id. It keeps the full record of each member, in the
// order they were added, so a favorites view can render without refetching.
// Nothing is persisted.
type Set struct {
	mu       sync.RWMutex
	order    []string
	records  map[string]domain.Photo
	onToggle func(ToggleEvent)
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{records: make(map[string]domain.Photo)}
}

// OnToggle registers fn to be called after each toggle, outside the lock.
func (s *Set) OnToggle(fn func(ToggleEvent)) {
	s.mu.Lock()
	s.onToggle = fn
	s.mu.Unlock()
}

// Toggle removes photo if its id is a member and adds it otherwise. It
// returns the new membership.
func (s *Set) Toggle(photo domain.Photo) bool {
	s.mu.Lock()
	_, member := s.records[photo.ID]
	if member {
		delete(s.records, photo.ID)
		for i, id := range s.order {
			if id == photo.ID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	} else {
		s.records[photo.ID] = photo
		s.order = append(s.order, photo.ID)
	}
	fn := s.onToggle
	s.mu.Unlock()

	if fn != nil {
		fn(ToggleEvent{Photo: photo, Favorite: !member})
	}
	return !member
}

// IsFavorite reports whether id is a member.
func (s *Set) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok
}

// Get returns the retained record for id.
func (s *Set) Get(id string) (domain.Photo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.records[id]
	return p, ok
}

// List returns the retained records in insertion order.
func (s *Set) List() []domain.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Photo, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

// Len returns the number of members.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
