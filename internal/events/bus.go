package events

import (
	"errors"
	"fmt"
	"slices"
)

// Listener handles one event.
type Listener func(Event) error

type subscription struct {
	id int
	fn Listener
}

// Bus dispatches events to subscribers synchronously.
type Bus struct {
	subs   map[Kind][]subscription
	nextID int
}

// NewBus creates a bus with no subscribers.
func NewBus() *Bus {
	return &Bus{subs: make(map[Kind][]subscription)}
}

// Subscribe appends fn to the subscribers of kind.
// The returned function removes the subscription; calling it twice is a no-op.
func (b *Bus) Subscribe(kind Kind, fn Listener) (unsubscribe func()) {
	b.nextID++
	id := b.nextID
	b.subs[kind] = append(b.subs[kind], subscription{id: id, fn: fn})

	return func() {
		b.subs[kind] = slices.DeleteFunc(b.subs[kind], func(s subscription) bool {
			return s.id == id
		})
	}
}

// OnNavigation subscribes a typed navigation handler.
func (b *Bus) OnNavigation(fn func(Navigation) error) (unsubscribe func()) {
	return b.Subscribe(KindNavigation, func(ev Event) error {
		return fn(ev.(Navigation))
	})
}

// OnUndo subscribes a typed undo handler.
func (b *Bus) OnUndo(fn func(Undo) error) (unsubscribe func()) {
	return b.Subscribe(KindUndo, func(ev Event) error {
		return fn(ev.(Undo))
	})
}

// Emit delivers ev to every subscriber of its kind, in registration order.
//
// The subscriber list is snapshotted before dispatch. Every subscriber runs
// even if an earlier one fails; the failures are joined into the returned
// error. Pointer events are delivered as values.
func (b *Bus) Emit(ev Event) error {
	switch e := ev.(type) {
	case nil:
		return errors.New("emit: nil event")
	case *Navigation:
		if e == nil {
			return errors.New("emit: nil event")
		}
		ev = *e
	case *Undo:
		if e == nil {
			return errors.New("emit: nil event")
		}
		ev = *e
	}

	snapshot := slices.Clone(b.subs[ev.Kind()])
	var errs []error
	for _, s := range snapshot {
		if err := s.fn(ev); err != nil {
			errs = append(errs, fmt.Errorf("%s subscriber: %w", ev.Kind(), err))
		}
	}
	return errors.Join(errs...)
}

// SubscriberCount returns the number of subscribers for kind.
func (b *Bus) SubscriberCount(kind Kind) int {
	return len(b.subs[kind])
}
