package param

import (
	"reflect"

	"github.com/zoobzio/param/raw"
)

// Field declares how one request field is parsed.
type Field struct {
	// Name is the request key.
	Name string

	// With is the serializer used to load the value. A nil serializer passes
	// the raw value through untyped.
	With Serializer

	// Optionality controls absent fields. The zero value is Required.
	Optionality Optionality

	// Canonicalize re-dumps the loaded value to its canonical external form.
	Canonicalize bool

	// Mode selects the canonical form when Canonicalize is set.
	Mode DumpMode
}

// Parse extracts and validates a scalar field.
//
// An absent field yields ErrRequiredMissing if required, otherwise the
// declared fallback without invoking the serializer. A present field is
// loaded with f.With (or returned as a raw.Value when f.With is nil). When
// f.Canonicalize is set, a non-Blank result is dumped back to a raw.Value.
func (p Params) Parse(f Field) (any, error) {
	val, present := p[f.Name]

	var out any
	switch {
	case !present:
		fallback, ok := f.Optionality.Fallback()
		if !ok {
			return nil, missing(f.Name)
		}
		out = fallback
	case f.With == nil:
		out = val
	default:
		loaded, err := f.With.Load(val)
		if err != nil {
			return nil, newParseError(ErrLoadFailed, f.Name, &val, -1, err,
				"Invalid parameter '%s': '%s' - %s", f.Name, val, err)
		}
		out = loaded
	}

	if !f.Canonicalize || IsBlank(out) {
		return out, nil
	}

	var rawPtr *raw.Value
	if present {
		rawPtr = &val
	}
	return canonicalize(f, out, rawPtr, -1)
}

// ParseSequence extracts and validates an array field element by element.
//
// A missing or null field yields ErrRequiredMissing if required, otherwise
// the declared fallback. A present value that is not an array yields
// ErrTypeMismatch regardless of serializer. The first element that fails to
// load aborts the parse. Loaded sequences are returned as []any.
func (p Params) ParseSequence(f Field) (any, error) {
	val, present := p[f.Name]

	var out any
	if !present || val.IsNull() {
		fallback, ok := f.Optionality.Fallback()
		if !ok {
			return nil, missing(f.Name)
		}
		out = fallback
	} else {
		elems, ok := val.AsArray()
		if !ok {
			return nil, newParseError(ErrTypeMismatch, f.Name, &val, -1, nil,
				"Invalid type for parameter '%s': '%s'", f.Name, val.Kind())
		}

		loaded := make([]any, len(elems))
		for i, elem := range elems {
			if f.With == nil {
				loaded[i] = elem
				continue
			}
			v, err := f.With.Load(elem)
			if err != nil {
				return nil, newParseError(ErrLoadFailed, f.Name, &elem, i, err,
					"Invalid member in array parameter '%s': '%s' - %s", f.Name, elem, err)
			}
			loaded[i] = v
		}
		out = loaded
	}

	if !f.Canonicalize || IsBlank(out) {
		return out, nil
	}

	elems, ok := toSlice(out)
	if !ok {
		return nil, newParseError(ErrDumpFailed, f.Name, nil, -1, nil,
			"Can't dump param '%s': %T is not a sequence", f.Name, out)
	}
	dumped := make([]any, len(elems))
	for i, e := range elems {
		d, err := canonicalize(f, e, nil, i)
		if err != nil {
			return nil, err
		}
		dumped[i] = d
	}
	return dumped, nil
}

// canonicalize dumps v with the field's serializer.
func canonicalize(f Field, v any, value *raw.Value, index int) (any, error) {
	if f.With == nil {
		return nil, newParseError(ErrDumpFailed, f.Name, value, index, nil,
			"Can't dump param '%s' without a serializer", f.Name)
	}
	if !f.With.CanDump() {
		return nil, newParseError(ErrDumpFailed, f.Name, value, index, nil,
			"Serializer '%s' can't dump param '%s'", f.With.Name(), f.Name)
	}
	dumped, err := dumpAs(f.With, v, f.Mode)
	if err != nil {
		return nil, newParseError(ErrDumpFailed, f.Name, value, index, err,
			"Serializer '%s' can't dump param '%s' - %s", f.With.Name(), f.Name, err)
	}
	return dumped, nil
}

func missing(name string) error {
	return newParseError(ErrRequiredMissing, name, nil, -1, nil,
		"Required parameter '%s' missing", name)
}

// toSlice views any slice value as []any.
func toSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
