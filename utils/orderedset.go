package utils

import "sync"

// OrderedSet is a thread-safe string set that remembers insertion order.
// It backs both source-URL deduplication (configured order preserved) and
// per-page listing-id deduplication (document order preserved).
type OrderedSet struct {
	mu    sync.RWMutex
	seen  map[string]struct{}
	order []string
}

// NewOrderedSet creates an empty OrderedSet.
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{seen: make(map[string]struct{})}
}

// Add returns true if the value was newly added, false if already present.
func (s *OrderedSet) Add(v string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[v]; exists {
		return false
	}
	s.seen[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

// Contains returns true if the value has already been added.
func (s *OrderedSet) Contains(v string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[v]
	return exists
}

// Size returns the number of unique values tracked.
func (s *OrderedSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

// Values returns the tracked values in first-seen order.
func (s *OrderedSet) Values() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
