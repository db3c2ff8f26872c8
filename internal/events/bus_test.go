package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "navigation", KindNavigation.String())
	assert.Equal(t, "undo", KindUndo.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())

	for _, k := range []Kind{KindNavigation, KindUndo} {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, parsed)
	}
	_, ok := ParseKind("navigaton")
	assert.False(t, ok)
}

func TestBus_EmitInRegistrationOrder(t *testing.T) {
	b := NewBus()
	var order []string
	b.OnNavigation(func(ev Navigation) error {
		order = append(order, "a:"+ev.Passage)
		return nil
	})
	b.OnNavigation(func(ev Navigation) error {
		order = append(order, "b:"+ev.Passage)
		return nil
	})

	require.NoError(t, b.Emit(Navigation{Passage: "Next"}))
	assert.Equal(t, []string{"a:Next", "b:Next"}, order)
}

func TestBus_KindsAreIsolated(t *testing.T) {
	b := NewBus()
	nav, undo := 0, 0
	b.OnNavigation(func(Navigation) error { nav++; return nil })
	b.OnUndo(func(Undo) error { undo++; return nil })

	require.NoError(t, b.Emit(Undo{}))
	require.NoError(t, b.Emit(Undo{}))
	require.NoError(t, b.Emit(Navigation{Passage: "x"}))

	assert.Equal(t, 1, nav)
	assert.Equal(t, 2, undo)
}

func TestBus_EmitWithoutSubscribers(t *testing.T) {
	b := NewBus()
	assert.NoError(t, b.Emit(Undo{}))
	assert.Error(t, b.Emit(nil))
}

func TestBus_PointerEventsDeliveredAsValues(t *testing.T) {
	b := NewBus()
	var got []string
	b.OnNavigation(func(ev Navigation) error {
		got = append(got, ev.Passage)
		return nil
	})
	b.OnUndo(func(Undo) error {
		got = append(got, "undo")
		return nil
	})
	b.Subscribe(KindNavigation, func(ev Event) error {
		_, ok := ev.(Navigation)
		assert.True(t, ok, "got %T", ev)
		return nil
	})

	require.NoError(t, b.Emit(&Navigation{Passage: "Next"}))
	require.NoError(t, b.Emit(&Undo{}))
	assert.Equal(t, []string{"Next", "undo"}, got)

	assert.Error(t, b.Emit((*Navigation)(nil)))
	assert.Error(t, b.Emit((*Undo)(nil)))
}

func TestBus_ReentrantEmitNestsOnCallStack(t *testing.T) {
	b := NewBus()
	var order []string

	b.OnNavigation(func(ev Navigation) error {
		order = append(order, "nav1:"+ev.Passage)
		if ev.Passage == "outer" {
			return b.Emit(Navigation{Passage: "inner"})
		}
		return nil
	})
	b.OnNavigation(func(ev Navigation) error {
		order = append(order, "nav2:"+ev.Passage)
		return nil
	})

	require.NoError(t, b.Emit(Navigation{Passage: "outer"}))
	assert.Equal(t, []string{
		"nav1:outer",
		"nav1:inner",
		"nav2:inner",
		"nav2:outer",
	}, order)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	unsubscribe := b.OnUndo(func(Undo) error { calls++; return nil })
	assert.Equal(t, 1, b.SubscriberCount(KindUndo))

	require.NoError(t, b.Emit(Undo{}))
	unsubscribe()
	unsubscribe()
	require.NoError(t, b.Emit(Undo{}))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, b.SubscriberCount(KindUndo))
}

func TestBus_SubscribeDuringEmitUsesSnapshot(t *testing.T) {
	b := NewBus()
	late := 0
	b.OnUndo(func(Undo) error {
		if late == 0 {
			b.OnUndo(func(Undo) error { late++; return nil })
		}
		return nil
	})

	require.NoError(t, b.Emit(Undo{}))
	assert.Equal(t, 0, late)

	require.NoError(t, b.Emit(Undo{}))
	assert.Equal(t, 1, late)
}

func TestBus_AllSubscribersRunAndErrorsJoin(t *testing.T) {
	b := NewBus()
	errFirst := errors.New("first failed")
	errThird := errors.New("third failed")
	ran := 0

	b.OnUndo(func(Undo) error { ran++; return errFirst })
	b.OnUndo(func(Undo) error { ran++; return nil })
	b.OnUndo(func(Undo) error { ran++; return errThird })

	err := b.Emit(Undo{})
	require.Error(t, err)
	assert.Equal(t, 3, ran)
	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errThird)
	assert.Contains(t, err.Error(), "undo subscriber: first failed")
}
