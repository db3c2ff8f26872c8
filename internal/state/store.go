// Package state provides the observable key/value store shared by passage
// templates and user scripts.
//
// Every Set notifies subscribers synchronously with the key and new value.
// Observation is shallow: mutating the inside of a stored list or dict does
// not notify anyone.
//
// A Store is not safe for concurrent use. The runtime is single-threaded; any
// multi-request surface must serialise access itself.
package state

import (
	"maps"
	"slices"
)

// Listener is called after every Set with the written key and value.
type Listener func(key string, value any)

type subscription struct {
	id int
	fn Listener
}

// Store is a mutable bag of named values with change notification.
type Store struct {
	values    map[string]any
	listeners []subscription
	nextID    int
}

// New creates an empty store.
func New() *Store {
	return &Store{values: make(map[string]any)}
}

// NewFrom creates a store seeded with initial values.
// Seeding does not notify anyone; there are no subscribers yet.
func NewFrom(initial map[string]any) *Store {
	s := New()
	maps.Copy(s.values, initial)
	return s
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key and notifies subscribers.
//
// The subscriber list is snapshotted first, so a listener may subscribe or
// unsubscribe without affecting the current notification pass.
func (s *Store) Set(key string, value any) {
	s.values[key] = value

	snapshot := slices.Clone(s.listeners)
	for _, sub := range snapshot {
		sub.fn(key, value)
	}
}

// Subscribe registers fn for every subsequent Set.
// The returned function removes the subscription; calling it twice is a no-op.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	return func() {
		s.listeners = slices.DeleteFunc(s.listeners, func(sub subscription) bool {
			return sub.id == id
		})
	}
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Snapshot returns a shallow copy of the stored values.
func (s *Store) Snapshot() map[string]any {
	return maps.Clone(s.values)
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	return len(s.values)
}
