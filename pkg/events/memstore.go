package events

import (
	"context"
	"sync"
	"time"
)

// MemoryEventStore is a mutex-guarded in-memory implementation of EventStore.
// Used by tests and available as a single-process fallback; it provides no
// durability.
type MemoryEventStore struct {
	mu     sync.Mutex
	events []Event
	nextID int64
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{nextID: 1}
}

func (s *MemoryEventStore) Append(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.At.IsZero() {
		e.At = time.Now()
	}
	e.ID = s.nextID
	s.nextID++
	s.events = append(s.events, e)
	return nil
}

func (s *MemoryEventStore) CountSince(_ context.Context, identifier, action string, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.Identifier == identifier && e.Action == action && !e.At.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryEventStore) PurgeBefore(_ context.Context, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.events[:0]
	for _, e := range s.events {
		if !e.At.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	s.events = kept
	return nil
}

// Len reports the number of retained events. Test helper.
func (s *MemoryEventStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
