package memory

import (
	"context"
	"sort"
	"sync"

	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	audit "github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.FormID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.FormID][]audit.Event)}
}

func (s *InMemoryStore) Name() string { return "memory" }

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.FormID] = append(s.events[event.FormID], event)
	return nil
}

func (s *InMemoryStore) ListByForm(_ context.Context, formID id.FormID, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	out := append([]audit.Event{}, s.events[formID]...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.FormID][]audit.Event)
}
