// Package raw defines the closed set of untyped values a request can carry.
//
// A Value is one of Null, Bool, Number, String, Array or Object. Numbers keep
// their lexical form so that an integer literal and a float literal remain
// distinguishable after decoding.
package raw

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is an untyped request value. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	s    string // string contents or number text
	arr  []Value
	obj  map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number returns a number value from its textual form. The text is not
// validated; use ParseNumber for untrusted input.
func Number(text string) Value { return Value{kind: KindNumber, s: text} }

// Int returns an integer number value.
func Int(i int64) Value { return Number(strconv.FormatInt(i, 10)) }

// Uint returns an unsigned integer number value.
func Uint(u uint64) Value { return Number(strconv.FormatUint(u, 10)) }

// Float returns a number value for f. Integral floats keep a decimal point so
// they are not mistaken for integers.
func Float(f float64) Value {
	text := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(text, ".eEnN") {
		text += ".0"
	}
	return Number(text)
}

// ParseNumber validates text as a JSON number literal. Literals outside the
// float64 range are kept as text; serializers reject them on load.
func ParseNumber(text string) (Value, error) {
	if !json.Valid([]byte(text)) {
		return Value{}, fmt.Errorf("invalid number %q", text)
	}
	if _, err := strconv.ParseFloat(text, 64); err != nil && !errors.Is(err, strconv.ErrRange) {
		return Value{}, fmt.Errorf("invalid number %q", text)
	}
	return Number(text), nil
}

// Array returns an array value holding elems.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, arr: elems}
}

// Object returns an object value holding entries.
func Object(entries map[string]Value) Value {
	if entries == nil {
		entries = map[string]Value{}
	}
	return Value{kind: KindObject, obj: entries}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsNumber returns the textual form of the number held by v.
func (v Value) AsNumber() (string, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return v.s, true
}

// AsArray returns the elements of an array value.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsObject returns the entries of an object value.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// Clone returns a copy of v that shares no storage with it.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		elems := make([]Value, len(v.arr))
		for i, e := range v.arr {
			elems[i] = e.Clone()
		}
		return Value{kind: KindArray, arr: elems}
	case KindObject:
		entries := make(map[string]Value, len(v.obj))
		for k, e := range v.obj {
			entries[k] = e.Clone()
		}
		return Value{kind: KindObject, obj: entries}
	}
	return v
}

// Equal reports whether v and o hold the same value. Numbers compare by
// numeric value, not by text.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindNumber:
		if v.s == o.s {
			return true
		}
		a, errA := strconv.ParseFloat(v.s, 64)
		b, errB := strconv.ParseFloat(o.s, 64)
		return errA == nil && errB == nil && a == b
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, a := range v.obj {
			b, ok := o.obj[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	}
	return false
}

// Any converts v to plain Go values: nil, bool, json.Number, string, []any
// and map[string]any.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return json.Number(v.s)
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Any()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Any()
		}
		return out
	default:
		return nil
	}
}

// String renders v as compact JSON. It is used in diagnostics.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(data)
}

// Text renders strings verbatim and every other kind as JSON.
// It is used in caller-facing messages.
func (v Value) Text() string {
	if v.kind == KindString {
		return v.s
	}
	return v.String()
}

// MarshalJSON implements json.Marshaler. Object keys are emitted in sorted order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		buf.WriteString(v.s)
	case KindString:
		data, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(data)
			buf.WriteByte(':')
			if err := v.obj[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown kind %d", v.kind)
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler, preserving number text.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return err
	}
	out, err := From(decoded)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// From converts a decoded Go value into a Value. It accepts the shapes the
// supported codecs produce: nil, bool, strings, json.Number, every integer and
// float kind, slices and arrays, and maps keyed by strings (or by any value
// whose dynamic type is string).
func From(in any) (Value, error) {
	switch x := in.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case json.Number:
		return ParseNumber(string(x))
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case []byte:
		return String(string(x)), nil
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			ev, err := From(e)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = ev
		}
		return Array(elems...), nil
	case map[string]any:
		entries := make(map[string]Value, len(x))
		for k, e := range x {
			ev, err := From(e)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			entries[k] = ev
		}
		return Object(entries), nil
	}
	return fromReflect(reflect.ValueOf(in))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return From(rv.Elem().Interface())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Uint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("non-finite number %v", f)
		}
		return Float(f), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		elems := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := From(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = ev
		}
		return Array(elems...), nil
	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}
		entries := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, ok := iter.Key().Interface().(string)
			if !ok {
				return Value{}, fmt.Errorf("unsupported map key %v", iter.Key().Interface())
			}
			ev, err := From(iter.Value().Interface())
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", key, err)
			}
			entries[key] = ev
		}
		return Object(entries), nil
	case reflect.Invalid:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("unsupported type %s", rv.Type())
}
