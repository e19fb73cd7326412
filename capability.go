package param

// SerializerName identifies a serializer in a Registry.
// Use these constants in struct tags: `with:"base64"`
type SerializerName string

const (
	// SerializerString accepts strings unchanged.
	SerializerString SerializerName = "string"

	// SerializerInteger parses integers from strings or integral numbers.
	SerializerInteger SerializerName = "integer"

	// SerializerFloat parses finite floats from strings or numbers.
	SerializerFloat SerializerName = "float"

	// SerializerBoolean parses boolean keywords (true/yes/on/1, false/no/off/0).
	SerializerBoolean SerializerName = "boolean"

	// SerializerNumeric parses like SerializerFloat but dumps any Go numeric.
	SerializerNumeric SerializerName = "numeric"

	// SerializerDate parses ISO-8601 calendar dates.
	SerializerDate SerializerName = "date"

	// SerializerTime parses ISO-8601 timestamps.
	SerializerTime SerializerName = "time"

	// SerializerUUID parses hyphenated UUIDs.
	SerializerUUID SerializerName = "uuid"

	// SerializerBase64 strictly decodes standard base64.
	SerializerBase64 SerializerName = "base64"
)

// builtinNames contains every serializer in the default registry.
var builtinNames = map[SerializerName]bool{
	SerializerString:  true,
	SerializerInteger: true,
	SerializerFloat:   true,
	SerializerBoolean: true,
	SerializerNumeric: true,
	SerializerDate:    true,
	SerializerTime:    true,
	SerializerUUID:    true,
	SerializerBase64:  true,
}

// IsBuiltin returns true if name refers to a serializer in the default registry.
func IsBuiltin(name SerializerName) bool {
	return builtinNames[name]
}
