// Package eventstore holds the ordered events of the active session.
package eventstore

import (
	"github.com/samber/lo"

	"github.com/vburojevic/trk/internal/domain"
)

// Store is an append-only ordered event sequence. It is not safe for
// concurrent use; the session manager serializes access.
type Store struct {
	events []domain.Event
}

// New creates an empty Store
func New() *Store {
	return &Store{}
}

// Append adds event to the end of the sequence
func (s *Store) Append(event domain.Event) {
	s.events = append(s.events, event.Clone())
}

// Clear empties the sequence
func (s *Store) Clear() {
	s.events = nil
}

// Replace swaps the sequence for events, used when restoring persisted state
func (s *Store) Replace(events []domain.Event) {
	s.Clear()
	for _, e := range events {
		s.Append(e)
	}
}

// Snapshot returns a deep copy in insertion order
func (s *Store) Snapshot() []domain.Event {
	return lo.Map(s.events, func(e domain.Event, _ int) domain.Event { return e.Clone() })
}

// Len returns the number of stored events
func (s *Store) Len() int {
	return len(s.events)
}
