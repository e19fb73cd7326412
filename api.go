// Package param provides typed decoding and canonicalization of untyped
// request parameters.
//
// A request arrives as a string-keyed mapping of raw values (see package raw).
// Each expected field is validated against a declared Serializer, converted to
// a domain value and, optionally, re-serialized to a canonical external form.
// Malformed input is rejected uniformly with a *ParseError naming the field.
//
// # Serializers
//
// The default registry holds the builtin serializers:
//
//	string    - strings, unchanged
//	integer   - int64 from strings (0x/0o/0b prefixes, underscores) or integral numbers
//	float     - finite float64 from strings or numbers
//	numeric   - float64 on load, any Go number on dump
//	boolean   - true/yes/on/1 and false/no/off/0, case-insensitive
//	date      - ISO-8601 dates as time.Time at midnight UTC
//	time      - ISO-8601 timestamps as time.Time
//	uuid      - hyphenated UUIDs as uuid.UUID
//	base64    - strict standard base64 as []byte
//
// Enumerations are built with EnumSerializer and CaseSensitiveEnumSerializer
// and added to a registry with Registry.Extend.
//
// # Field Parsing
//
//	params, _ := param.Decode(json.New(), body)
//
//	board, err := params.Parse(param.Field{
//	    Name:        "board",
//	    With:        param.StringSerializer(),
//	    Optionality: param.Default("glove80"),
//	})
//
//	snippets, err := params.ParseSequence(param.Field{
//	    Name:        "snippets",
//	    With:        param.StringSerializer(),
//	    Optionality: param.Default([]any{}),
//	})
//
// # Optionality
//
// Absent fields are governed by Optionality:
//
//   - Required(): absence is an ErrRequiredMissing error (the zero value)
//   - Default(v): absence yields v, never passed through the serializer
//   - Optional(): absence yields Blank, pruned later by RemoveBlanks
//
// # Binding
//
// Bind fills a struct from tagged fields:
//
//	type Request struct {
//	    Board    string   `param:"board" with:"string" default:"glove80"`
//	    Keymap   []byte   `param:"keymap" with:"base64"`
//	    Snippets []string `param:"snippets,array" with:"string" default:"[]"`
//	    Kconfig  []byte   `param:"kconfig" with:"base64" default:"-"`
//	}
//
//	req, err := param.Bind[Request](ctx, params)
//
// # Errors
//
// Parse failures are *ParseError values wrapping one of ErrRequiredMissing,
// ErrLoadFailed, ErrTypeMismatch or ErrDumpFailed. Configuration failures
// (unknown serializer names, invalid tags) are *ConfigError values and are
// reported when a field declaration is first resolved.
package param

import (
	"fmt"

	"github.com/zoobzio/param/raw"
)

// Params is an untyped request: field names mapped to raw values.
type Params map[string]raw.Value

// NewParams converts decoded Go values into Params.
func NewParams(in map[string]any) (Params, error) {
	p := make(Params, len(in))
	for k, v := range in {
		rv, err := raw.From(v)
		if err != nil {
			return nil, newCodecError(ErrUnmarshal, fmt.Errorf("%s: %w", k, err))
		}
		p[k] = rv
	}
	return p, nil
}

// Decode unmarshals a request body with c and converts it into Params.
// The body must decode to an object.
func Decode(c Codec, data []byte) (Params, error) {
	var decoded map[string]any
	if err := c.Unmarshal(data, &decoded); err != nil {
		return nil, newCodecError(ErrUnmarshal, err)
	}
	return NewParams(decoded)
}

// Has reports whether name is present in the request.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Value returns the request as a raw object value.
func (p Params) Value() raw.Value {
	return raw.Object(map[string]raw.Value(p))
}
