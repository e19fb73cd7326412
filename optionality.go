package param

// optionalityMode enumerates how an absent field is treated.
type optionalityMode uint8

const (
	modeRequired optionalityMode = iota
	modeDefault
	modeBlank
)

// Optionality declares what happens when a field is absent from the request.
// The zero value is Required.
type Optionality struct {
	mode  optionalityMode
	value any
}

// Required makes an absent field a ErrRequiredMissing parse error.
func Required() Optionality {
	return Optionality{mode: modeRequired}
}

// Default makes an absent field yield value. The value is returned as is;
// it is never passed through a serializer.
func Default(value any) Optionality {
	return Optionality{mode: modeDefault, value: value}
}

// Optional makes an absent field yield Blank, to be pruned by RemoveBlanks.
func Optional() Optionality {
	return Optionality{mode: modeBlank}
}

// IsRequired reports whether absence is an error.
func (o Optionality) IsRequired() bool {
	return o.mode == modeRequired
}

// Fallback returns the value used for an absent field.
// The boolean is false when the field is required.
func (o Optionality) Fallback() (any, bool) {
	switch o.mode {
	case modeDefault:
		return o.value, true
	case modeBlank:
		return Blank, true
	}
	return nil, false
}

func (o Optionality) String() string {
	switch o.mode {
	case modeDefault:
		return "default"
	case modeBlank:
		return "blank"
	}
	return "required"
}
