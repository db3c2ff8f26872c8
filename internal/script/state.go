package script

import (
	"fmt"
	"slices"

	"go.starlark.net/starlark"

	"github.com/roach88/taleweave/internal/state"
)

// stateValue exposes a state.Store to Starlark.
// It is never frozen: the store stays writable after a module's globals freeze.
type stateValue struct {
	store *state.Store
}

var (
	_ starlark.HasSetField = (*stateValue)(nil)
	_ starlark.HasSetKey   = (*stateValue)(nil)
)

func (v *stateValue) String() string        { return fmt.Sprintf("<state %d keys>", v.store.Len()) }
func (v *stateValue) Type() string          { return "state" }
func (v *stateValue) Freeze()               {}
func (v *stateValue) Truth() starlark.Bool  { return v.store.Len() > 0 }
func (v *stateValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: state") }

// Attr returns the stored value, or None for a missing key.
// "get" is reserved for the method; use s["get"] for a key of that name.
func (v *stateValue) Attr(name string) (starlark.Value, error) {
	if name == "get" {
		return starlark.NewBuiltin("get", v.get), nil
	}
	val, ok := v.store.Get(name)
	if !ok {
		return starlark.None, nil
	}
	return ToStarlark(val), nil
}

func (v *stateValue) AttrNames() []string {
	return slices.Sorted(slices.Values(append(v.store.Keys(), "get")))
}

func (v *stateValue) SetField(name string, val starlark.Value) error {
	v.store.Set(name, fromStarlark(val))
	return nil
}

// Get implements starlark.Mapping; a missing key is reported as not found so
// that s["missing"] raises and "missing" in s is False.
func (v *stateValue) Get(k starlark.Value) (starlark.Value, bool, error) {
	key, ok := starlark.AsString(k)
	if !ok {
		return nil, false, fmt.Errorf("state keys must be strings, got %s", k.Type())
	}
	val, found := v.store.Get(key)
	if !found {
		return nil, false, nil
	}
	return ToStarlark(val), true, nil
}

func (v *stateValue) SetKey(k, val starlark.Value) error {
	key, ok := starlark.AsString(k)
	if !ok {
		return fmt.Errorf("state keys must be strings, got %s", k.Type())
	}
	v.store.Set(key, fromStarlark(val))
	return nil
}

func (v *stateValue) get(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var key string
	var def starlark.Value = starlark.None
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &key, &def); err != nil {
		return nil, err
	}
	val, ok := v.store.Get(key)
	if !ok {
		return def, nil
	}
	return ToStarlark(val), nil
}
