package param_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/zoobzio/param"
	"github.com/zoobzio/param/raw"
)

func parseError(t *testing.T, err error) *param.ParseError {
	t.Helper()
	var pe *param.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	return pe
}

func TestParse_RequiredMissing(t *testing.T) {
	p := param.Params{}

	_, err := p.Parse(param.Field{Name: "keymap", With: param.Base64Serializer()})
	if !errors.Is(err, param.ErrRequiredMissing) {
		t.Fatalf("Parse() error = %v, want ErrRequiredMissing", err)
	}
	pe := parseError(t, err)
	if pe.Field != "keymap" {
		t.Errorf("Field = %q", pe.Field)
	}
	if pe.Message != "Required parameter 'keymap' missing" {
		t.Errorf("Message = %q", pe.Message)
	}
	if pe.Raw != nil {
		t.Errorf("Raw = %v, want nil", pe.Raw)
	}
}

// RequiredMissing occurs exactly when a required field is absent.
func TestParse_RequiredMissingOnlyWhenAbsent(t *testing.T) {
	tests := []struct {
		name        string
		params      param.Params
		optionality param.Optionality
		wantMissing bool
	}{
		{"required absent", param.Params{}, param.Required(), true},
		{"required present", param.Params{"f": raw.String("x")}, param.Required(), false},
		{"required null", param.Params{"f": raw.Null()}, param.Required(), false},
		{"default absent", param.Params{}, param.Default("d"), false},
		{"optional absent", param.Params{}, param.Optional(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.params.Parse(param.Field{Name: "f", Optionality: tt.optionality})
			if got := errors.Is(err, param.ErrRequiredMissing); got != tt.wantMissing {
				t.Errorf("missing = %v, want %v (err %v)", got, tt.wantMissing, err)
			}
		})
	}
}

func TestParse_ZeroOptionalityIsRequired(t *testing.T) {
	_, err := param.Params{}.Parse(param.Field{Name: "board"})
	if !errors.Is(err, param.ErrRequiredMissing) {
		t.Errorf("Parse() error = %v, want ErrRequiredMissing", err)
	}
}

func TestParse_DefaultBypassesSerializer(t *testing.T) {
	calls := 0
	counting := param.NewSerializer("counting", func(v raw.Value) (any, error) {
		calls++
		return v.Text(), nil
	}, nil, nil)

	got, err := param.Params{}.Parse(param.Field{
		Name:        "board",
		With:        counting,
		Optionality: param.Default("glove80"),
	})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got != "glove80" {
		t.Errorf("Parse() = %v, want glove80", got)
	}
	if calls != 0 {
		t.Errorf("serializer called %d times for an absent field", calls)
	}
}

func TestParse_OptionalYieldsBlank(t *testing.T) {
	got, err := param.Params{}.Parse(param.Field{
		Name:         "kconfig",
		With:         param.Base64Serializer(),
		Optionality:  param.Optional(),
		Canonicalize: true,
	})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !param.IsBlank(got) {
		t.Errorf("Parse() = %v, want Blank", got)
	}
}

func TestParse_Untyped(t *testing.T) {
	v := raw.Array(raw.Int(1), raw.String("a"))
	got, err := param.Params{"data": v}.Parse(param.Field{Name: "data"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	rv, ok := got.(raw.Value)
	if !ok || !rv.Equal(v) {
		t.Errorf("Parse() = %v, want raw value %v", got, v)
	}
}

func TestParse_LoadFailed(t *testing.T) {
	p := param.Params{"keymap": raw.String("not-base64!!")}

	_, err := p.Parse(param.Field{Name: "keymap", With: param.Base64Serializer()})
	if !errors.Is(err, param.ErrLoadFailed) {
		t.Fatalf("Parse() error = %v, want ErrLoadFailed", err)
	}
	pe := parseError(t, err)
	if pe.Message != `Invalid parameter 'keymap': '"not-base64!!"' - Invalid Base64` {
		t.Errorf("Message = %q", pe.Message)
	}
	if pe.Raw == nil || !pe.Raw.Equal(raw.String("not-base64!!")) {
		t.Errorf("Raw = %v", pe.Raw)
	}
	var le *param.LoadError
	if !errors.As(pe.Cause, &le) {
		t.Errorf("Cause = %v, want *LoadError", pe.Cause)
	}
}

func TestParse_Canonicalize(t *testing.T) {
	p := param.Params{
		"flag":  raw.String("YES"),
		"count": raw.String("0x10"),
	}

	got, err := p.Parse(param.Field{Name: "flag", With: param.BooleanSerializer(), Canonicalize: true})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !got.(raw.Value).Equal(raw.String("true")) {
		t.Errorf("canonical flag = %v, want \"true\"", got)
	}

	got, err = p.Parse(param.Field{Name: "flag", With: param.BooleanSerializer(), Canonicalize: true, Mode: param.DumpNative})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !got.(raw.Value).Equal(raw.Bool(true)) {
		t.Errorf("native flag = %v, want true", got)
	}

	got, err = p.Parse(param.Field{Name: "count", With: param.IntegerSerializer(), Canonicalize: true, Mode: param.DumpNative})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !got.(raw.Value).Equal(raw.Int(16)) {
		t.Errorf("native count = %v, want 16", got)
	}
}

func TestParse_DumpFailed(t *testing.T) {
	loadOnly := param.NewSerializer("keyboard", func(v raw.Value) (any, error) { return v.Text(), nil }, nil, nil)
	p := param.Params{"board": raw.String("glove80")}

	_, err := p.Parse(param.Field{Name: "board", With: loadOnly, Canonicalize: true})
	if !errors.Is(err, param.ErrDumpFailed) {
		t.Errorf("load-only serializer error = %v, want ErrDumpFailed", err)
	}

	_, err = param.Params{}.Parse(param.Field{
		Name:         "count",
		With:         param.IntegerSerializer(),
		Optionality:  param.Default("many"),
		Canonicalize: true,
	})
	if !errors.Is(err, param.ErrDumpFailed) {
		t.Errorf("mismatched default error = %v, want ErrDumpFailed", err)
	}
}

func TestParse_NullScalarGoesToSerializer(t *testing.T) {
	_, err := param.Params{"board": raw.Null()}.Parse(param.Field{
		Name:        "board",
		With:        param.StringSerializer(),
		Optionality: param.Default("glove80"),
	})
	if !errors.Is(err, param.ErrLoadFailed) {
		t.Errorf("Parse(null) error = %v, want ErrLoadFailed", err)
	}
}

func TestParseSequence(t *testing.T) {
	p := param.Params{"snippets": raw.Array(raw.String("a"), raw.String("b"))}

	got, err := p.ParseSequence(param.Field{Name: "snippets", With: param.StringSerializer()})
	if err != nil {
		t.Fatalf("ParseSequence() error: %v", err)
	}
	want := []any{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseSequence() = %v, want %v", got, want)
	}
}

func TestParseSequence_AbsentOrNull(t *testing.T) {
	field := param.Field{Name: "snippets", With: param.StringSerializer(), Optionality: param.Default([]any{})}

	for name, p := range map[string]param.Params{
		"absent": {},
		"null":   {"snippets": raw.Null()},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := p.ParseSequence(field)
			if err != nil {
				t.Fatalf("ParseSequence() error: %v", err)
			}
			if !reflect.DeepEqual(got, []any{}) {
				t.Errorf("ParseSequence() = %v, want []", got)
			}

			required := field
			required.Optionality = param.Required()
			if _, err := p.ParseSequence(required); !errors.Is(err, param.ErrRequiredMissing) {
				t.Errorf("required ParseSequence() error = %v, want ErrRequiredMissing", err)
			}
		})
	}
}

// A present non-array value is a type mismatch no matter which serializer is used.
func TestParseSequence_TypeMismatch(t *testing.T) {
	serializers := []param.Serializer{nil, param.StringSerializer(), param.IntegerSerializer(), param.Base64Serializer()}
	values := []raw.Value{raw.String("a"), raw.Int(1), raw.Bool(true), raw.Object(map[string]raw.Value{"a": raw.Int(1)})}

	for _, s := range serializers {
		for _, v := range values {
			_, err := param.Params{"snippets": v}.ParseSequence(param.Field{Name: "snippets", With: s})
			if !errors.Is(err, param.ErrTypeMismatch) {
				t.Errorf("ParseSequence(%v) error = %v, want ErrTypeMismatch", v, err)
			}
		}
	}
}

func TestParseSequence_FailFast(t *testing.T) {
	calls := 0
	counting := param.NewSerializer("counting", func(v raw.Value) (any, error) {
		calls++
		return param.IntegerSerializer().Load(v)
	}, nil, nil)

	p := param.Params{"ids": raw.Array(raw.Int(1), raw.String("two"), raw.Int(3))}
	_, err := p.ParseSequence(param.Field{Name: "ids", With: counting})
	if !errors.Is(err, param.ErrLoadFailed) {
		t.Fatalf("ParseSequence() error = %v, want ErrLoadFailed", err)
	}

	pe := parseError(t, err)
	if pe.Index != 1 {
		t.Errorf("Index = %d, want 1", pe.Index)
	}
	if pe.Raw == nil || !pe.Raw.Equal(raw.String("two")) {
		t.Errorf("Raw = %v, want \"two\"", pe.Raw)
	}
	if calls != 2 {
		t.Errorf("serializer called %d times, want 2", calls)
	}
	if pe.Message != `Invalid member in array parameter 'ids': '"two"' - invalid value for Integer(): "two"` {
		t.Errorf("Message = %q", pe.Message)
	}
}

func TestParseSequence_Canonicalize(t *testing.T) {
	p := param.Params{"flags": raw.Array(raw.String("on"), raw.String("NO"))}

	got, err := p.ParseSequence(param.Field{Name: "flags", With: param.BooleanSerializer(), Canonicalize: true})
	if err != nil {
		t.Fatalf("ParseSequence() error: %v", err)
	}
	want := []any{raw.String("true"), raw.String("false")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseSequence() = %v, want %v", got, want)
	}
}

func TestParseSequence_Untyped(t *testing.T) {
	p := param.Params{"data": raw.Array(raw.Int(1), raw.Null())}

	got, err := p.ParseSequence(param.Field{Name: "data"})
	if err != nil {
		t.Fatalf("ParseSequence() error: %v", err)
	}
	elems := got.([]any)
	if len(elems) != 2 || !elems[1].(raw.Value).IsNull() {
		t.Errorf("ParseSequence() = %v", got)
	}
}

func TestRemoveBlanks(t *testing.T) {
	in := map[string]any{
		"a": 1,
		"b": param.Blank,
		"c": []any{1, param.Blank, 2},
		"d": map[string]any{"e": param.Blank, "f": "x"},
	}

	got := param.RemoveBlanks(in)
	want := map[string]any{
		"a": 1,
		"c": []any{1, 2},
		"d": map[string]any{"f": "x"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RemoveBlanks() = %v, want %v", got, want)
	}

	if _, ok := in["b"]; !ok {
		t.Error("RemoveBlanks() modified its input")
	}
	if len(in["c"].([]any)) != 3 {
		t.Error("RemoveBlanks() modified a nested input slice")
	}
}

func TestRemoveBlanks_Scalars(t *testing.T) {
	for _, v := range []any{nil, 1, "x", true} {
		if got := param.RemoveBlanks(v); got != v {
			t.Errorf("RemoveBlanks(%v) = %v", v, got)
		}
	}
}

func TestOptionality(t *testing.T) {
	if !param.Required().IsRequired() {
		t.Error("Required().IsRequired() = false")
	}
	if _, ok := param.Required().Fallback(); ok {
		t.Error("Required() should have no fallback")
	}
	if v, ok := param.Default(3).Fallback(); !ok || v != 3 {
		t.Errorf("Default(3).Fallback() = %v, %v", v, ok)
	}
	if v, ok := param.Optional().Fallback(); !ok || !param.IsBlank(v) {
		t.Errorf("Optional().Fallback() = %v, %v", v, ok)
	}
	var zero param.Optionality
	if zero.String() != "required" {
		t.Errorf("zero Optionality = %q, want required", zero.String())
	}
}
