package param

// BlankMarker is the type of Blank.
type BlankMarker struct{}

// Blank marks a field intentionally absent from canonical output.
// Parsers return it for absent Optional fields; RemoveBlanks prunes it.
var Blank = BlankMarker{}

func (BlankMarker) String() string { return "<blank>" }

// IsBlank reports whether v is the Blank marker.
func IsBlank(v any) bool {
	_, ok := v.(BlankMarker)
	return ok
}

// RemoveBlanks returns a copy of v with every Blank object entry and array
// element removed, recursing through map[string]any and []any. Other values
// are returned unchanged. The input is not modified.
func RemoveBlanks(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			if IsBlank(e) {
				continue
			}
			out[k] = RemoveBlanks(e)
		}
		return out
	case []any:
		out := make([]any, 0, len(x))
		for _, e := range x {
			if IsBlank(e) {
				continue
			}
			out = append(out, RemoveBlanks(e))
		}
		return out
	}
	return v
}
