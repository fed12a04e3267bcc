package snapshot

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"
)

// convertToTree converts an arbitrary Go value into the plain tree shape the
// engine operates on. Exported struct fields become mapping entries (json
// tags are honored), named basic types unfold to their underlying value,
// io.Reader values are drained to strings, and self-referential values are
// omitted to avoid infinite recursion.
func convertToTree(obj any) any {
	return convertValue(reflect.ValueOf(obj), map[uintptr]struct{}{})
}

func convertValue(v reflect.Value, visiting map[uintptr]struct{}) any {
	if !v.IsValid() {
		return nil
	}

	if v.CanInterface() {
		switch iv := v.Interface().(type) {
		case time.Time:
			return iv
		case time.Duration:
			return iv.String()
		case io.Reader:
			data, err := io.ReadAll(iv)
			if err != nil {
				logger.Warn("could not read stream value during conversion", "error", err)
				return nil
			}
			return string(data)
		}
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if _, seen := visiting[ptr]; seen {
			return nil
		}
		visiting[ptr] = struct{}{}
		defer delete(visiting, ptr)
		return convertValue(v.Elem(), visiting)

	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return convertValue(v.Elem(), visiting)

	case reflect.Struct:
		out := map[string]any{}
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() || field.Type.Kind() == reflect.Func {
				continue
			}
			name := field.Name
			if tag, ok := field.Tag.Lookup("json"); ok {
				tagName, _, _ := strings.Cut(tag, ",")
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					name = tagName
				}
			}
			out[name] = convertValue(v.Field(i), visiting)
		}
		return out

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if _, seen := visiting[ptr]; seen {
			return nil
		}
		visiting[ptr] = struct{}{}
		defer delete(visiting, ptr)
		out := map[string]any{}
		iter := v.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = convertValue(iter.Value(), visiting)
		}
		return out

	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return string(v.Bytes())
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = convertValue(v.Index(i), visiting)
		}
		return out

	case reflect.Array:
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = convertValue(v.Index(i), visiting)
		}
		return out

	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	// Channels, funcs and unsafe pointers have no tree representation.
	return nil
}
