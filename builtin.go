package param

import (
	"encoding/base64"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zoobzio/param/raw"
)

// stringSerializer accepts strings unchanged.
type stringSerializer struct{}

// StringSerializer returns the serializer for plain strings.
func StringSerializer() Serializer {
	return &stringSerializer{}
}

func (s *stringSerializer) Name() SerializerName { return SerializerString }
func (s *stringSerializer) CanDump() bool        { return true }

func (s *stringSerializer) Load(v raw.Value) (any, error) {
	str, ok := v.AsString()
	if !ok {
		return nil, loadErrorf(SerializerString, "Incorrect type for %s: %s", SerializerString, v.Kind())
	}
	return str, nil
}

func (s *stringSerializer) MatchesType(v any) bool {
	_, ok := v.(string)
	return ok
}

func (s *stringSerializer) Dump(v any) (raw.Value, error) {
	str, ok := v.(string)
	if !ok {
		return raw.Value{}, mismatch(SerializerString, v)
	}
	return raw.String(str), nil
}

func (s *stringSerializer) DumpNative(v any) (raw.Value, error) {
	return s.Dump(v)
}

// integerSerializer parses int64 values.
type integerSerializer struct{}

// IntegerSerializer returns the serializer for integers.
// Strings accept base prefixes (0x, 0o, 0b), a leading 0 for octal,
// underscores between digits and surrounding whitespace. Numbers must be
// integral literals.
func IntegerSerializer() Serializer {
	return &integerSerializer{}
}

func (s *integerSerializer) Name() SerializerName { return SerializerInteger }
func (s *integerSerializer) CanDump() bool        { return true }

func (s *integerSerializer) Load(v raw.Value) (any, error) {
	switch v.Kind() {
	case raw.KindString:
		str, _ := v.AsString()
		i, err := strconv.ParseInt(strings.TrimSpace(str), 0, 64)
		if err != nil {
			return nil, loadErrorf(SerializerInteger, "invalid value for Integer(): %q", str)
		}
		return i, nil
	case raw.KindNumber:
		text, _ := v.AsNumber()
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, loadErrorf(SerializerInteger, "Invalid integer: %s", text)
		}
		return i, nil
	}
	return nil, loadErrorf(SerializerInteger, "Invalid integer: %s", v.Text())
}

func (s *integerSerializer) MatchesType(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func (s *integerSerializer) Dump(v any) (raw.Value, error) {
	n, err := s.DumpNative(v)
	if err != nil {
		return raw.Value{}, err
	}
	text, _ := n.AsNumber()
	return raw.String(text), nil
}

func (s *integerSerializer) DumpNative(v any) (raw.Value, error) {
	if !s.MatchesType(v) {
		return raw.Value{}, mismatch(SerializerInteger, v)
	}
	rv := reflect.ValueOf(v)
	if rv.CanInt() {
		return raw.Int(rv.Int()), nil
	}
	return raw.Uint(rv.Uint()), nil
}

// floatSerializer parses float64 values. The numeric serializer shares its
// load behavior but accepts any Go number on dump.
type floatSerializer struct {
	name    SerializerName
	anyKind bool
}

// FloatSerializer returns the serializer for finite floats.
func FloatSerializer() Serializer {
	return &floatSerializer{name: SerializerFloat}
}

// NumericSerializer returns the serializer for numbers of any Go numeric type.
// Loaded values are float64.
func NumericSerializer() Serializer {
	return &floatSerializer{name: SerializerNumeric, anyKind: true}
}

func (s *floatSerializer) Name() SerializerName { return s.name }
func (s *floatSerializer) CanDump() bool        { return true }

func (s *floatSerializer) Load(v raw.Value) (any, error) {
	var text string
	switch v.Kind() {
	case raw.KindString:
		str, _ := v.AsString()
		text = strings.TrimSpace(str)
	case raw.KindNumber:
		text, _ = v.AsNumber()
	default:
		return nil, s.loadError()
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, s.loadError()
	}
	return f, nil
}

func (s *floatSerializer) loadError() error {
	if s.anyKind {
		return loadErrorf(s.name, "Invalid type for conversion to Numeric")
	}
	return loadErrorf(s.name, "Invalid type for conversion to Float")
}

func (s *floatSerializer) MatchesType(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Float32, reflect.Float64:
		return true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return s.anyKind
	}
	return false
}

func (s *floatSerializer) Dump(v any) (raw.Value, error) {
	if !s.MatchesType(v) {
		return raw.Value{}, mismatch(s.name, v)
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanFloat():
		return raw.String(strconv.FormatFloat(rv.Float(), 'g', -1, 64)), nil
	case rv.CanInt():
		return raw.String(strconv.FormatInt(rv.Int(), 10)), nil
	default:
		return raw.String(strconv.FormatUint(rv.Uint(), 10)), nil
	}
}

func (s *floatSerializer) DumpNative(v any) (raw.Value, error) {
	if !s.MatchesType(v) {
		return raw.Value{}, mismatch(s.name, v)
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanFloat():
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return raw.Value{}, dumpErrorf(s.name, "non-finite number %v", f)
		}
		return raw.Float(f), nil
	case rv.CanInt():
		return raw.Int(rv.Int()), nil
	default:
		return raw.Uint(rv.Uint()), nil
	}
}

// booleanSerializer parses boolean keywords.
type booleanSerializer struct{}

var (
	falseWords = map[string]bool{"false": true, "no": true, "off": true, "0": true}
	trueWords  = map[string]bool{"true": true, "yes": true, "on": true, "1": true}
)

// BooleanSerializer returns the serializer for booleans.
// Keywords are case-insensitive: false/no/off/0 and true/yes/on/1.
// Raw booleans and the numbers 0 and 1 are also accepted.
func BooleanSerializer() Serializer {
	return &booleanSerializer{}
}

func (s *booleanSerializer) Name() SerializerName { return SerializerBoolean }
func (s *booleanSerializer) CanDump() bool        { return true }

func (s *booleanSerializer) Load(v raw.Value) (any, error) {
	switch v.Kind() {
	case raw.KindBool:
		b, _ := v.AsBool()
		return b, nil
	case raw.KindString:
		str, _ := v.AsString()
		word := strings.ToLower(str)
		if falseWords[word] {
			return false, nil
		}
		if trueWords[word] {
			return true, nil
		}
	case raw.KindNumber:
		text, _ := v.AsNumber()
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			if f == 0 {
				return false, nil
			}
			if f == 1 {
				return true, nil
			}
		}
	}
	return nil, loadErrorf(SerializerBoolean, "Invalid boolean: %s", v.Text())
}

func (s *booleanSerializer) MatchesType(v any) bool {
	_, ok := v.(bool)
	return ok
}

func (s *booleanSerializer) Dump(v any) (raw.Value, error) {
	b, ok := v.(bool)
	if !ok {
		return raw.Value{}, mismatch(SerializerBoolean, v)
	}
	return raw.String(strconv.FormatBool(b)), nil
}

func (s *booleanSerializer) DumpNative(v any) (raw.Value, error) {
	b, ok := v.(bool)
	if !ok {
		return raw.Value{}, mismatch(SerializerBoolean, v)
	}
	return raw.Bool(b), nil
}

// iso8601Serializer parses dates and timestamps into time.Time.
type iso8601Serializer struct {
	name    SerializerName
	layouts []string
	format  string
	date    bool
}

// DateSerializer returns the serializer for ISO-8601 calendar dates.
// Loaded values are time.Time at midnight UTC; timestamps are truncated
// to their date.
func DateSerializer() Serializer {
	return &iso8601Serializer{
		name:    SerializerDate,
		layouts: []string{time.DateOnly, time.RFC3339Nano},
		format:  time.DateOnly,
		date:    true,
	}
}

// TimeSerializer returns the serializer for ISO-8601 timestamps.
// Timestamps without an offset and bare dates are interpreted as UTC.
func TimeSerializer() Serializer {
	return &iso8601Serializer{
		name:    SerializerTime,
		layouts: []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", time.DateOnly},
		format:  time.RFC3339Nano,
	}
}

func (s *iso8601Serializer) Name() SerializerName { return s.name }
func (s *iso8601Serializer) CanDump() bool        { return true }

func (s *iso8601Serializer) Load(v raw.Value) (any, error) {
	str, ok := v.AsString()
	if ok {
		for _, layout := range s.layouts {
			t, err := time.Parse(layout, strings.TrimSpace(str))
			if err != nil {
				continue
			}
			if s.date {
				t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
			return t, nil
		}
	}
	if s.date {
		return nil, loadErrorf(s.name, "Invalid type for conversion to Date")
	}
	return nil, loadErrorf(s.name, "Invalid type for conversion to Time")
}

func (s *iso8601Serializer) MatchesType(v any) bool {
	_, ok := v.(time.Time)
	return ok
}

func (s *iso8601Serializer) Dump(v any) (raw.Value, error) {
	t, ok := v.(time.Time)
	if !ok {
		return raw.Value{}, mismatch(s.name, v)
	}
	return raw.String(t.Format(s.format)), nil
}

// uuidPattern matches hyphenated UUIDs. Hex digits are case-insensitive.
var uuidPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-([0-9a-f]{4}-){3}[0-9a-f]{12}$`)

// uuidSerializer parses hyphenated UUIDs into uuid.UUID.
type uuidSerializer struct{}

// UUIDSerializer returns the serializer for UUIDs in 8-4-4-4-12 form.
// Dumped values are lowercase.
func UUIDSerializer() Serializer {
	return &uuidSerializer{}
}

func (s *uuidSerializer) Name() SerializerName { return SerializerUUID }
func (s *uuidSerializer) CanDump() bool        { return true }

func (s *uuidSerializer) Load(v raw.Value) (any, error) {
	str, ok := v.AsString()
	if !ok || !uuidPattern.MatchString(str) {
		return nil, loadErrorf(SerializerUUID, "Incorrect type for %s: %s", SerializerUUID, v.Text())
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return nil, loadErrorf(SerializerUUID, "Incorrect type for %s: %s", SerializerUUID, v.Text())
	}
	return id, nil
}

func (s *uuidSerializer) MatchesType(v any) bool {
	switch x := v.(type) {
	case uuid.UUID:
		return true
	case string:
		return uuidPattern.MatchString(x)
	}
	return false
}

func (s *uuidSerializer) Dump(v any) (raw.Value, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return raw.String(x.String()), nil
	case string:
		if uuidPattern.MatchString(x) {
			return raw.String(strings.ToLower(x)), nil
		}
	}
	return raw.Value{}, mismatch(SerializerUUID, v)
}

func (s *uuidSerializer) DumpNative(v any) (raw.Value, error) {
	return s.Dump(v)
}

// enumSerializer accepts members of a fixed set of strings.
type enumSerializer struct {
	name          SerializerName
	members       map[string]bool
	sorted        []string
	caseSensitive bool
}

// EnumSerializer returns a serializer for a closed set of strings.
// Input and members are lowercased before comparison.
func EnumSerializer(name SerializerName, members ...string) Serializer {
	return newEnumSerializer(name, false, members)
}

// CaseSensitiveEnumSerializer returns a serializer for a closed set of
// strings compared without case folding.
func CaseSensitiveEnumSerializer(name SerializerName, members ...string) Serializer {
	return newEnumSerializer(name, true, members)
}

func newEnumSerializer(name SerializerName, caseSensitive bool, members []string) *enumSerializer {
	s := &enumSerializer{
		name:          name,
		members:       make(map[string]bool, len(members)),
		caseSensitive: caseSensitive,
	}
	for _, m := range members {
		m = s.normalize(m)
		if !s.members[m] {
			s.members[m] = true
			s.sorted = append(s.sorted, m)
		}
	}
	sort.Strings(s.sorted)
	return s
}

func (s *enumSerializer) Name() SerializerName { return s.name }
func (s *enumSerializer) CanDump() bool        { return true }

// Members returns the normalized members in sorted order.
func (s *enumSerializer) Members() []string {
	return append([]string(nil), s.sorted...)
}

func (s *enumSerializer) normalize(str string) string {
	if s.caseSensitive {
		return str
	}
	return strings.ToLower(str)
}

func (s *enumSerializer) Load(v raw.Value) (any, error) {
	var str string
	switch v.Kind() {
	case raw.KindString:
		str, _ = v.AsString()
	case raw.KindNumber:
		str, _ = v.AsNumber()
	case raw.KindBool:
		b, _ := v.AsBool()
		str = strconv.FormatBool(b)
	case raw.KindNull:
		str = ""
	default:
		return nil, loadErrorf(s.name, "Incorrect type for %s: %s", s.name, v.Text())
	}
	str = s.normalize(str)
	if !s.members[str] {
		return nil, loadErrorf(s.name, "%q is not one of [%s]", str, strings.Join(s.sorted, ", "))
	}
	return str, nil
}

func (s *enumSerializer) MatchesType(v any) bool {
	str, ok := v.(string)
	return ok && s.members[str]
}

func (s *enumSerializer) Dump(v any) (raw.Value, error) {
	if !s.MatchesType(v) {
		return raw.Value{}, mismatch(s.name, v)
	}
	return raw.String(v.(string)), nil
}

func (s *enumSerializer) DumpNative(v any) (raw.Value, error) {
	return s.Dump(v)
}

// base64Serializer strictly decodes standard base64 into []byte.
type base64Serializer struct{}

// Base64Serializer returns the serializer for standard, padded base64.
// Line breaks, missing padding and non-zero trailing bits are rejected.
func Base64Serializer() Serializer {
	return &base64Serializer{}
}

func (s *base64Serializer) Name() SerializerName { return SerializerBase64 }
func (s *base64Serializer) CanDump() bool        { return true }

func (s *base64Serializer) Load(v raw.Value) (any, error) {
	str, ok := v.AsString()
	if !ok || strings.ContainsAny(str, "\r\n") {
		return nil, loadErrorf(SerializerBase64, "Invalid Base64")
	}
	data, err := base64.StdEncoding.Strict().DecodeString(str)
	if err != nil {
		return nil, loadErrorf(SerializerBase64, "Invalid Base64")
	}
	return data, nil
}

func (s *base64Serializer) MatchesType(v any) bool {
	switch v.(type) {
	case []byte, string:
		return true
	}
	return false
}

func (s *base64Serializer) Dump(v any) (raw.Value, error) {
	switch x := v.(type) {
	case []byte:
		return raw.String(base64.StdEncoding.EncodeToString(x)), nil
	case string:
		return raw.String(base64.StdEncoding.EncodeToString([]byte(x))), nil
	}
	return raw.Value{}, mismatch(SerializerBase64, v)
}

func (s *base64Serializer) DumpNative(v any) (raw.Value, error) {
	return s.Dump(v)
}

// builtinSerializers returns fresh instances of every builtin serializer.
func builtinSerializers() []Serializer {
	return []Serializer{
		StringSerializer(),
		IntegerSerializer(),
		FloatSerializer(),
		BooleanSerializer(),
		NumericSerializer(),
		DateSerializer(),
		TimeSerializer(),
		UUIDSerializer(),
		Base64Serializer(),
	}
}
