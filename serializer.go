package param

import (
	"errors"

	"github.com/zoobzio/param/raw"
)

// Serializer converts between raw request values and typed domain values.
//
// Serializers are immutable once constructed and safe for concurrent use.
type Serializer interface {
	// Name returns the registry name of the serializer.
	Name() SerializerName

	// Load converts a raw value into a domain value.
	// Malformed input yields a *LoadError.
	Load(v raw.Value) (any, error)

	// Dump converts a domain value into its canonical external string form.
	// Values the serializer cannot represent yield a *DumpError.
	Dump(v any) (raw.Value, error)

	// MatchesType reports whether v is a domain value of this serializer.
	MatchesType(v any) bool

	// CanDump reports whether the serializer supports Dump at all.
	CanDump() bool
}

// NativeDumper is implemented by serializers whose domain values have a
// JSON-native representation (numbers, booleans). DumpNative returns that
// representation instead of the string form produced by Dump.
type NativeDumper interface {
	DumpNative(v any) (raw.Value, error)
}

// DumpMode selects the external form produced by canonicalization.
type DumpMode uint8

const (
	// DumpString re-encodes values in their canonical string form.
	DumpString DumpMode = iota

	// DumpNative re-encodes values as JSON-native raw values where the
	// serializer supports it, falling back to the string form.
	DumpNative
)

// LoadFunc loads a raw value.
type LoadFunc func(v raw.Value) (any, error)

// DumpFunc dumps a domain value.
type DumpFunc func(v any) (raw.Value, error)

// MatchFunc checks a domain value.
type MatchFunc func(v any) bool

// funcSerializer adapts plain functions to Serializer.
type funcSerializer struct {
	name    SerializerName
	load    LoadFunc
	dump    DumpFunc
	matches MatchFunc
}

// NewSerializer returns a Serializer built from functions.
// A nil dump function produces a load-only serializer whose CanDump is false.
// A nil matches function accepts every value.
func NewSerializer(name SerializerName, load LoadFunc, dump DumpFunc, matches MatchFunc) Serializer {
	return &funcSerializer{name: name, load: load, dump: dump, matches: matches}
}

func (s *funcSerializer) Name() SerializerName { return s.name }

func (s *funcSerializer) Load(v raw.Value) (any, error) {
	out, err := s.load(v)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, &LoadError{Serializer: s.name, Reason: err.Error()}
	}
	return out, nil
}

func (s *funcSerializer) Dump(v any) (raw.Value, error) {
	if s.dump == nil {
		return raw.Value{}, dumpErrorf(s.name, "serializer %q does not support dump", s.name)
	}
	if !s.MatchesType(v) {
		return raw.Value{}, mismatch(s.name, v)
	}
	return s.dump(v)
}

func (s *funcSerializer) MatchesType(v any) bool {
	if s.matches == nil {
		return true
	}
	return s.matches(v)
}

func (s *funcSerializer) CanDump() bool { return s.dump != nil }

// dumpAs dumps v with s using the requested mode.
func dumpAs(s Serializer, v any, mode DumpMode) (raw.Value, error) {
	if mode == DumpNative {
		if nd, ok := s.(NativeDumper); ok {
			return nd.DumpNative(v)
		}
	}
	return s.Dump(v)
}

func mismatch(name SerializerName, v any) error {
	return dumpErrorf(name, "Incorrect type for %s: %#v:%T", name, v, v)
}
