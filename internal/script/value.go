package script

import (
	"fmt"
	"reflect"

	"go.starlark.net/starlark"
)

// ToStarlark converts a Go value into a Starlark value.
// Starlark values pass through unchanged.
func ToStarlark(v any) starlark.Value {
	switch v := v.(type) {

	case nil:
		return starlark.None

	case starlark.Value:
		return v

	case bool:
		return starlark.Bool(v)

	case string:
		return starlark.String(v)

	case int:
		return starlark.MakeInt(v)
	case int32:
		return starlark.MakeInt(int(v))
	case int64:
		return starlark.MakeInt64(v)
	case uint:
		return starlark.MakeUint(v)
	case uint64:
		return starlark.MakeUint64(v)

	case float32:
		return starlark.Float(v)
	case float64:
		return starlark.Float(v)

	case []string:
		elems := make([]starlark.Value, len(v))
		for i, e := range v {
			elems[i] = starlark.String(e)
		}
		return starlark.NewList(elems)

	case []any:
		elems := make([]starlark.Value, len(v))
		for i, e := range v {
			elems[i] = ToStarlark(e)
		}
		return starlark.NewList(elems)

	case map[string]any:
		d := starlark.NewDict(len(v))
		for k, val := range v {
			_ = d.SetKey(starlark.String(k), ToStarlark(val))
		}
		return d

	}

	value := reflect.ValueOf(v)
	switch value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16:
		return starlark.MakeInt64(value.Int())
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return starlark.MakeUint64(value.Uint())
	case reflect.Slice, reflect.Array:
		elems := make([]starlark.Value, value.Len())
		for i := range value.Len() {
			elems[i] = ToStarlark(value.Index(i).Interface())
		}
		return starlark.NewList(elems)
	}

	return starlark.String(fmt.Sprint(v))
}

// fromStarlark converts a value written by a script into what the store
// holds: scalars become Go values, everything else is kept as-is.
func fromStarlark(v starlark.Value) any {
	switch v := v.(type) {
	case starlark.NoneType:
		return nil
	case starlark.Bool:
		return bool(v)
	case starlark.String:
		return string(v)
	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return i
		}
		return v
	case starlark.Float:
		return float64(v)
	default:
		return v
	}
}

// ToGo converts a value deeply into plain Go data: lists and tuples become
// []any, dicts become map[string]any. Values with no plain form (functions,
// structs) become their Starlark string representation.
func ToGo(v any) any {
	sv, ok := v.(starlark.Value)
	if !ok {
		switch v := v.(type) {
		case []any:
			out := make([]any, len(v))
			for i, e := range v {
				out[i] = ToGo(e)
			}
			return out
		case map[string]any:
			out := make(map[string]any, len(v))
			for k, e := range v {
				out[k] = ToGo(e)
			}
			return out
		}
		return v
	}

	switch sv := sv.(type) {
	case starlark.NoneType, starlark.Bool, starlark.String, starlark.Int, starlark.Float:
		out := fromStarlark(sv)
		if i, ok := out.(starlark.Int); ok {
			return i.String()
		}
		return out
	case *starlark.List:
		out := make([]any, sv.Len())
		for i := range sv.Len() {
			out[i] = ToGo(sv.Index(i))
		}
		return out
	case starlark.Tuple:
		out := make([]any, len(sv))
		for i, e := range sv {
			out[i] = ToGo(e)
		}
		return out
	case *starlark.Dict:
		out := make(map[string]any, sv.Len())
		for _, item := range sv.Items() {
			key, ok := starlark.AsString(item[0])
			if !ok {
				key = item[0].String()
			}
			out[key] = ToGo(item[1])
		}
		return out
	}
	return sv.String()
}

// displayString is the text a value contributes to rendered output.
func displayString(v starlark.Value) string {
	switch v := v.(type) {
	case starlark.NoneType:
		return ""
	case starlark.String:
		return string(v)
	default:
		return v.String()
	}
}
