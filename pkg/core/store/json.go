package store

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// encodeJSONB marshals v for a JSONB column. The metric structs use NaN as
// the missing-value sentinel, which encoding/json rejects, so every float
// is scrubbed to null first.
func encodeJSONB(v interface{}) ([]byte, error) {
	return json.Marshal(scrub(reflect.ValueOf(v)))
}

func scrub(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}

	// Types with their own marshaler (time.Time) pass through untouched.
	if v.CanInterface() {
		if m, ok := v.Interface().(json.Marshaler); ok {
			if b, err := m.MarshalJSON(); err == nil {
				return json.RawMessage(b)
			}
		}
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return scrub(v.Elem())
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		out := make([]interface{}, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = scrub(v.Index(i))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		out := make(map[string]interface{}, v.Len())
		for _, k := range v.MapKeys() {
			out[fmt.Sprint(k.Interface())] = scrub(v.MapIndex(k))
		}
		return out
	case reflect.Struct:
		t := v.Type()
		out := make(map[string]interface{}, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" {
				continue
			}
			name := f.Name
			if tag := f.Tag.Get("json"); tag != "" {
				parts := strings.SplitN(tag, ",", 2)
				if parts[0] == "-" {
					continue
				}
				if parts[0] != "" {
					name = parts[0]
				}
			}
			out[name] = scrub(v.Field(i))
		}
		return out
	default:
		if v.CanInterface() {
			return v.Interface()
		}
		return nil
	}
}
