package relay

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strings"
)

// CircularSentinel replaces the second visit to any object so cyclic
// values serialize instead of recursing forever.
const CircularSentinel = "[Circular]"

var (
	errType    = reflect.TypeOf((*error)(nil)).Elem()
	bigIntType = reflect.TypeOf(big.Int{})
	rawMsgType = reflect.TypeOf(json.RawMessage(nil))
)

// Serialize converts value into its JSON text form. It is a total
// function: cycles become the sentinel string, big integers render as
// decimal strings, errors render as {name, message, stack} and any
// other failure yields a serialized fallback object instead of a panic.
func Serialize(value any) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			out = fallbackJSON("Failed to stringify data", fmt.Sprintf("%v", rec))
		}
	}()

	seen := map[visit]bool{}

	b, err := json.Marshal(sanitize(reflect.ValueOf(value), seen))
	if err != nil {
		return fallbackJSON("Failed to stringify data", err.Error())
	}

	return string(b)
}

func fallbackJSON(errText, message string) string {
	b, _ := json.Marshal(map[string]string{
		"error":   errText,
		"message": message,
	})

	return string(b)
}

// visit identifies one pointer, map or slice for cycle tracking. The
// address alone is not an identity: every zero-length slice shares the
// runtime's zero base and subslices of one array share a base pointer,
// so slices carry their length too.
type visit struct {
	ptr uintptr
	len int
}

// sanitize walks value into a tree json.Marshal can always encode.
// seen holds the identities of every pointer, map and slice visited
// during this call; it is add-only, a second visit yields the sentinel.
func sanitize(v reflect.Value, seen map[visit]bool) any {
	if !v.IsValid() {
		return nil
	}

	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		return sanitize(v.Elem(), seen)
	}

	if v.Type().Implements(errType) && v.Kind() != reflect.Ptr {
		return errorObject(v.Interface().(error))
	}

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem() == bigIntType {
			return v.Interface().(*big.Int).String()
		}
		if v.Type().Implements(errType) {
			return errorObject(v.Interface().(error))
		}
		// distinct pointers to zero-size values share an address
		// and can never reach themselves
		if v.Type().Elem().Size() > 0 {
			id := visit{v.Pointer(), -1}
			if seen[id] {
				return CircularSentinel
			}
			seen[id] = true
		}
		return sanitize(v.Elem(), seen)

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		id := visit{v.Pointer(), -1}
		if seen[id] {
			return CircularSentinel
		}
		seen[id] = true

		m := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = sanitize(iter.Value(), seen)
		}
		return m

	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type() == rawMsgType {
			return v.Interface().(json.RawMessage)
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			// keep encoding/json base64 semantics for byte slices
			return v.Bytes()
		}
		// an empty slice cannot participate in a cycle
		if v.Len() > 0 {
			id := visit{v.Pointer(), v.Len()}
			if seen[id] {
				return CircularSentinel
			}
			seen[id] = true
		}
		return sanitizeList(v, seen)

	case reflect.Array:
		return sanitizeList(v, seen)

	case reflect.Struct:
		if v.Type() == bigIntType {
			i := v.Interface().(big.Int)
			return i.String()
		}
		return sanitizeStruct(v, seen)

	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil

	default:
		// primitives: bool, ints, uints, floats, string
		return v.Interface()
	}
}

func sanitizeList(v reflect.Value, seen map[visit]bool) []any {
	list := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		list[i] = sanitize(v.Index(i), seen)
	}

	return list
}

func sanitizeStruct(v reflect.Value, seen map[visit]bool) map[string]any {
	t := v.Type()

	m := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			// unexported
			continue
		}

		name := f.Name
		omitempty := false
		if tag, ok := f.Tag.Lookup("json"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" && len(parts) == 1 {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, p := range parts[1:] {
				if p == "omitempty" {
					omitempty = true
				}
			}
		}

		fv := v.Field(i)
		if omitempty && fv.IsZero() {
			continue
		}

		m[name] = sanitize(fv, seen)
	}

	return m
}

func errorObject(err error) map[string]string {
	if err == nil {
		return nil
	}

	return map[string]string{
		"name":    reflect.TypeOf(err).String(),
		"message": err.Error(),
		"stack":   fmt.Sprintf("%+v", err),
	}
}
