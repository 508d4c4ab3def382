// Package sanitize canonicalizes engine output into a tree encoding/json
// renders identically across backends: map[string]any, []any, float64, int,
// string, bool and nil.
package sanitize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Value returns a copy of v with every fixed-width numeric leaf converted to
// int or float64. Mappings keep all keys and sequences keep order and length.
// Value never fails and Value(Value(v)) equals Value(v).
func Value(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, bool, int:
		return t
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		return int(t)
	case uint8:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		return int(t)
	case uint64:
		return fromUint(t)
	case uint:
		return fromUint(uint64(t))
	case json.Number:
		return fromNumber(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Value(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Value(val)
		}
		return out
	}
	return reflected(reflect.ValueOf(v))
}

// Map sanitizes a mapping node and always returns a non-nil map
func Map(m map[string]any) map[string]any {
	out, _ := Value(m).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	return out
}

func reflected(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Value(rv.Elem().Interface())
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = Value(iter.Value().Interface())
		}
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Value(rv.Index(i).Interface())
		}
		return out
	case reflect.Float32, reflect.Float64:
		return finite(rv.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fromUint(rv.Uint())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Struct:
		// Structs go through their JSON form so tags and MarshalJSON apply
		data, err := json.Marshal(rv.Interface())
		if err != nil {
			return fmt.Sprint(rv.Interface())
		}
		var decoded any
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&decoded); err != nil {
			return fmt.Sprint(rv.Interface())
		}
		return Value(decoded)
	default:
		return fmt.Sprint(rv.Interface())
	}
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

// finite maps NaN and infinities, which JSON cannot carry, to nil
func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func fromUint(u uint64) any {
	if u > math.MaxInt {
		return float64(u)
	}
	return int(u)
}

func fromNumber(n json.Number) any {
	if i, err := strconv.ParseInt(string(n), 10, 0); err == nil {
		return int(i)
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil {
		return finite(f)
	}
	return string(n)
}
