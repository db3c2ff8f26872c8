package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type write struct {
	key   string
	value any
}

func TestStore_GetSet(t *testing.T) {
	s := New()

	_, ok := s.Get("gold")
	assert.False(t, ok)

	s.Set("gold", 3)
	v, ok := s.Get("gold")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	s.Set("gold", nil)
	v, ok = s.Get("gold")
	assert.True(t, ok, "nil is a stored value")
	assert.Nil(t, v)
}

func TestStore_NewFromCopiesInitial(t *testing.T) {
	initial := map[string]any{"a": 1}
	s := NewFrom(initial)
	initial["a"] = 2

	v, _ := s.Get("a")
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, s.Len())
}

func TestStore_SubscribeNotifiesEveryWriteInOrder(t *testing.T) {
	s := New()
	var got []write
	s.Subscribe(func(key string, value any) {
		got = append(got, write{key, value})
	})

	s.Set("a", 1)
	s.Set("b", "two")
	s.Set("a", 3)

	assert.Equal(t, []write{{"a", 1}, {"b", "two"}, {"a", 3}}, got)
}

func TestStore_ListenersRunInSubscriptionOrder(t *testing.T) {
	s := New()
	var order []string
	s.Subscribe(func(string, any) { order = append(order, "first") })
	s.Subscribe(func(string, any) { order = append(order, "second") })

	s.Set("k", true)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestStore_ValueVisibleDuringNotification(t *testing.T) {
	s := New()
	var seen any
	s.Subscribe(func(key string, _ any) {
		seen, _ = s.Get(key)
	})

	s.Set("k", "v")
	assert.Equal(t, "v", seen)
}

func TestStore_Unsubscribe(t *testing.T) {
	s := New()
	calls := 0
	unsubscribe := s.Subscribe(func(string, any) { calls++ })

	s.Set("a", 1)
	unsubscribe()
	unsubscribe()
	s.Set("a", 2)

	assert.Equal(t, 1, calls)
}

func TestStore_SubscribeDuringNotificationUsesSnapshot(t *testing.T) {
	s := New()
	lateCalls := 0
	subscribed := false
	s.Subscribe(func(string, any) {
		if !subscribed {
			subscribed = true
			s.Subscribe(func(string, any) { lateCalls++ })
		}
	})

	s.Set("a", 1)
	assert.Equal(t, 0, lateCalls, "listener added mid-pass must not see the in-flight write")

	s.Set("a", 2)
	assert.Equal(t, 1, lateCalls)
}

func TestStore_UnsubscribeDuringNotificationUsesSnapshot(t *testing.T) {
	s := New()
	var order []string
	var unsubscribeSecond func()
	s.Subscribe(func(string, any) {
		order = append(order, "first")
		unsubscribeSecond()
	})
	unsubscribeSecond = s.Subscribe(func(string, any) { order = append(order, "second") })

	s.Set("a", 1)
	assert.Equal(t, []string{"first", "second"}, order, "removal takes effect after the current pass")

	order = nil
	s.Set("a", 2)
	assert.Equal(t, []string{"first"}, order)
}

func TestStore_SetFromListenerNests(t *testing.T) {
	s := New()
	var got []write
	s.Subscribe(func(key string, value any) {
		got = append(got, write{key, value})
		if key == "a" {
			s.Set("derived", value.(int)*2)
		}
	})

	s.Set("a", 2)
	assert.Equal(t, []write{{"a", 2}, {"derived", 4}}, got)
	v, _ := s.Get("derived")
	assert.Equal(t, 4, v)
}

func TestStore_ObservationIsShallow(t *testing.T) {
	s := New()
	calls := 0
	s.Subscribe(func(string, any) { calls++ })

	items := []any{"lamp"}
	inventory := map[string]any{"items": items}
	s.Set("inventory", inventory)
	require.Equal(t, 1, calls)

	inventory["items"] = append(items, "key")
	assert.Equal(t, 1, calls, "inner mutation is not observed")

	v, _ := s.Get("inventory")
	assert.Len(t, v.(map[string]any)["items"], 2, "reads pass through to the same value")
}

func TestStore_KeysAndSnapshot(t *testing.T) {
	s := New()
	s.Set("b", 2)
	s.Set("a", 1)

	assert.Equal(t, []string{"a", "b"}, s.Keys())

	snap := s.Snapshot()
	snap["c"] = 3
	assert.Equal(t, 2, s.Len(), "snapshot is a copy")
}
