package param

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/zoobzio/param/raw"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrRequiredMissing indicates a required field was absent from the request.
	ErrRequiredMissing = errors.New("required parameter missing")

	// ErrLoadFailed indicates a serializer rejected a present field value.
	ErrLoadFailed = errors.New("load failed")

	// ErrTypeMismatch indicates a field had the wrong shape, such as a scalar
	// where an array was expected.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrDumpFailed indicates a value could not be re-serialized to its
	// canonical external form.
	ErrDumpFailed = errors.New("dump failed")

	// ErrUnknownSerializer indicates a lookup of a name that is not registered.
	ErrUnknownSerializer = errors.New("unknown serializer")

	// ErrDuplicateSerializer indicates two serializers share a name.
	ErrDuplicateSerializer = errors.New("duplicate serializer")

	// ErrInvalidTag indicates a struct tag has an invalid format or value.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")
)

// ParseError describes a field that could not be parsed.
// It unwraps to one of ErrRequiredMissing, ErrLoadFailed, ErrTypeMismatch or
// ErrDumpFailed.
type ParseError struct {
	Kind    error      // Underlying sentinel error
	Field   string     // Request field name
	Raw     *raw.Value // Offending raw value, nil when the field was absent
	Index   int        // Offending element of a sequence field, -1 otherwise
	Message string     // Caller-facing description
	Cause   error      // Serializer error, if any
}

func (e *ParseError) Error() string {
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

// KindName returns a stable name for the error kind, suitable for logs.
func (e *ParseError) KindName() string {
	switch e.Kind {
	case ErrRequiredMissing:
		return "RequiredMissing"
	case ErrLoadFailed:
		return "LoadFailed"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrDumpFailed:
		return "DumpFailed"
	}
	return "Unknown"
}

// LoadError is returned by serializers when input cannot be loaded.
type LoadError struct {
	Serializer SerializerName
	Reason     string
}

func (e *LoadError) Error() string {
	return e.Reason
}

// DumpError is returned by serializers when a value has no canonical
// external representation.
type DumpError struct {
	Serializer SerializerName
	Reason     string
}

func (e *DumpError) Error() string {
	return e.Reason
}

// ConfigError represents a serializer or binding configuration error.
// It wraps a sentinel error with additional context.
type ConfigError struct {
	Err        error          // Underlying sentinel error (ErrUnknownSerializer, etc.)
	Field      string         // Field that triggered the error
	Serializer SerializerName // Serializer name that was missing/invalid
	Detail     string         // Optional extra context
}

func (e *ConfigError) Error() string {
	msg := e.Err.Error()
	if e.Serializer != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Serializer)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %s)", msg, e.Field)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// newParseError creates a ParseError with a stack trace attached.
func newParseError(kind error, field string, value *raw.Value, index int, cause error, format string, args ...any) error {
	return pkgerrors.WithStack(&ParseError{
		Kind:    kind,
		Field:   field,
		Raw:     value,
		Index:   index,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	})
}

// newConfigError creates a ConfigError.
func newConfigError(sentinel error, name SerializerName, field, detail string) error {
	return &ConfigError{
		Err:        sentinel,
		Serializer: name,
		Field:      field,
		Detail:     detail,
	}
}

// newCodecError creates a CodecError for marshal/unmarshal failures.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}

func loadErrorf(name SerializerName, format string, args ...any) error {
	return &LoadError{Serializer: name, Reason: fmt.Sprintf(format, args...)}
}

func dumpErrorf(name SerializerName, format string, args ...any) error {
	return &DumpError{Serializer: name, Reason: fmt.Sprintf(format, args...)}
}
