package param

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/zoobzio/sentinel"
	"gopkg.in/yaml.v3"

	"github.com/zoobzio/param/raw"
)

func init() {
	// Register binding tags with sentinel
	sentinel.Tag("param")
	sentinel.Tag("with")
	sentinel.Tag("default")
}

// errOverflow marks a loaded value that does not fit the destination field.
var errOverflow = errors.New("value out of range")

var rawValueType = reflect.TypeFor[raw.Value]()

// BindOption configures Bind and Prepare.
type BindOption func(*bindConfig)

type bindConfig struct {
	registry *Registry
}

// WithRegistry resolves `with` tags against r instead of the default registry.
func WithRegistry(r *Registry) BindOption {
	return func(c *bindConfig) {
		c.registry = r
	}
}

func newBindConfig(opts []BindOption) bindConfig {
	cfg := bindConfig{registry: defaultRegistry}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = defaultRegistry
	}
	return cfg
}

// planKey combines type and registry for cache lookup.
type planKey struct {
	typ      reflect.Type
	registry *Registry
}

// plans caches bind plans. Plans are immutable after construction.
var plans = xsync.NewMapOf[planKey, *typePlan]()

// typePlan describes how to bind every tagged field of a struct type.
type typePlan struct {
	typeName string
	fields   []fieldPlan
}

// fieldPlan describes how to bind a single struct field.
type fieldPlan struct {
	index    []int  // reflect.Value.FieldByIndex access path
	goName   string // struct field name for error messages
	field    Field  // request field declaration
	sequence bool   // parse with ParseSequence
}

// Prepare builds and caches the bind plan for T, reporting configuration
// errors (unknown serializers, malformed tags, bad defaults) up front.
func Prepare[T any](opts ...BindOption) error {
	cfg := newBindConfig(opts)
	_, err := planFor[T](cfg.registry)
	return err
}

// Bind parses p into a new T.
//
// Fields of T are bound from struct tags:
//
//	param:"name[,array][,canonical][,native]"  request key and flags
//	with:"serializer"                          registry name; omit for untyped
//	default:"literal"                          YAML literal used when absent
//	default:"-"                                absent leaves the zero value
//
// Fields without a default tag are required. Defaults are loaded through the
// serializer once, when the plan is built. Fields are parsed in declaration
// order and the first failure is returned.
//
// Types implementing Bindable bypass reflection.
func Bind[T any](ctx context.Context, p Params, opts ...BindOption) (*T, error) {
	cfg := newBindConfig(opts)

	var obj T
	if b, ok := any(&obj).(Bindable); ok {
		typeName := reflect.TypeFor[T]().Name()
		start := time.Now()
		emitBindStart(ctx, typeName)
		err := b.BindParams(p, cfg.registry)
		emitBindComplete(ctx, typeName, 0, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		return &obj, nil
	}

	plan, err := planFor[T](cfg.registry)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	emitBindStart(ctx, plan.typeName)

	var retErr error
	defer func() {
		emitBindComplete(ctx, plan.typeName, len(plan.fields), time.Since(start), retErr)
	}()

	rv := reflect.ValueOf(&obj).Elem()
	for _, fp := range plan.fields {
		var v any
		if fp.sequence {
			v, err = p.ParseSequence(fp.field)
		} else {
			v, err = p.Parse(fp.field)
		}
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				emitFieldFailed(ctx, plan.typeName, pe)
			}
			retErr = err
			return nil, retErr
		}

		if err := assign(rv.FieldByIndex(fp.index), v); err != nil {
			retErr = fp.assignError(p, err)
			return nil, retErr
		}
		emitFieldParsed(ctx, plan.typeName, fp.field.Name)
	}

	return &obj, nil
}

// Reset clears the plan cache.
// This is primarily useful for test isolation.
func Reset() {
	plans.Clear()
}

func (fp fieldPlan) assignError(p Params, err error) error {
	if !errors.Is(err, errOverflow) {
		return newConfigError(ErrInvalidTag, serializerName(fp.field.With), fp.goName, err.Error())
	}
	var value *raw.Value
	if v, ok := p[fp.field.Name]; ok {
		value = &v
	}
	return newParseError(ErrLoadFailed, fp.field.Name, value, -1, err,
		"Invalid parameter '%s': %s", fp.field.Name, err)
}

// planFor returns a cached plan or builds a new one.
func planFor[T any](registry *Registry) (*typePlan, error) {
	key := planKey{typ: reflect.TypeFor[T](), registry: registry}

	if cached, ok := plans.Load(key); ok {
		return cached, nil
	}

	plan, err := buildPlan[T](registry)
	if err != nil {
		return nil, err
	}

	actual, _ := plans.LoadOrStore(key, plan)
	return actual, nil
}

// buildPlan creates the bind plan for type T by scanning struct tags.
func buildPlan[T any](registry *Registry) (*typePlan, error) {
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		return nil, newConfigError(ErrInvalidTag, "", "", fmt.Sprintf("%s is not a struct", rt))
	}

	meta := sentinel.Scan[T]()
	plan := &typePlan{typeName: meta.TypeName}

	for _, fm := range meta.Fields {
		tag, ok := fm.Tags["param"]
		if !ok || tag == "-" {
			continue
		}
		fp, err := buildFieldPlan(registry, fm, tag)
		if err != nil {
			return nil, err
		}
		plan.fields = append(plan.fields, fp)
	}

	emitPlanBuilt(context.Background(), plan.typeName, len(plan.fields))
	return plan, nil
}

// buildFieldPlan resolves the tags of a single struct field.
func buildFieldPlan(registry *Registry, fm sentinel.FieldMetadata, tag string) (fieldPlan, error) {
	parts := strings.Split(tag, ",")
	fp := fieldPlan{
		index:  append([]int{}, fm.Index...),
		goName: fm.Name,
		field:  Field{Name: strings.TrimSpace(parts[0])},
	}
	if fp.field.Name == "" {
		fp.field.Name = fm.Name
	}

	for _, flag := range parts[1:] {
		switch strings.TrimSpace(flag) {
		case "array":
			fp.sequence = true
		case "canonical":
			fp.field.Canonicalize = true
		case "native":
			fp.field.Canonicalize = true
			fp.field.Mode = DumpNative
		default:
			return fp, newConfigError(ErrInvalidTag, "", fm.Name, fmt.Sprintf("unknown param option %q", flag))
		}
	}

	if with := fm.Tags["with"]; with != "" {
		s, err := registry.Lookup(SerializerName(with))
		if err != nil {
			return fp, newConfigError(ErrUnknownSerializer, SerializerName(with), fm.Name, "")
		}
		fp.field.With = s
	}

	if fp.field.Canonicalize && fp.field.With == nil {
		return fp, newConfigError(ErrInvalidTag, "", fm.Name, "canonical fields need a serializer")
	}

	text, hasDefault := fm.Tags["default"]
	switch {
	case !hasDefault:
		fp.field.Optionality = Required()
	case text == "-":
		fp.field.Optionality = Optional()
	default:
		value, err := loadDefault(fp.field.With, text, fp.sequence)
		if err != nil {
			return fp, newConfigError(ErrInvalidTag, serializerName(fp.field.With), fm.Name,
				fmt.Sprintf("default %q: %v", text, err))
		}
		if fp.field.Canonicalize {
			probe := Params{}
			if fp.sequence {
				_, err = probe.ParseSequence(Field{Name: fp.field.Name, With: fp.field.With, Optionality: Default(value), Canonicalize: true, Mode: fp.field.Mode})
			} else {
				_, err = probe.Parse(Field{Name: fp.field.Name, With: fp.field.With, Optionality: Default(value), Canonicalize: true, Mode: fp.field.Mode})
			}
			if err != nil {
				return fp, newConfigError(ErrInvalidTag, serializerName(fp.field.With), fm.Name,
					fmt.Sprintf("default %q: %v", text, err))
			}
		} else if err := assign(reflect.New(fm.ReflectType).Elem(), value); err != nil {
			return fp, newConfigError(ErrInvalidTag, serializerName(fp.field.With), fm.Name,
				fmt.Sprintf("default %q: %v", text, err))
		}
		fp.field.Optionality = Default(value)
	}

	return fp, nil
}

// loadDefault decodes a default tag literal and loads it with s.
func loadDefault(s Serializer, text string, sequence bool) (any, error) {
	var value raw.Value
	if text == "" {
		value = raw.String("")
	} else {
		var decoded any
		if err := yaml.Unmarshal([]byte(text), &decoded); err != nil {
			return nil, err
		}
		v, err := raw.From(decoded)
		if err != nil {
			return nil, err
		}
		value = v
	}

	if !sequence {
		if s == nil {
			return value, nil
		}
		return s.Load(value)
	}

	elems, ok := value.AsArray()
	if !ok {
		return nil, fmt.Errorf("array field default must be a sequence, got %s", value.Kind())
	}
	out := make([]any, len(elems))
	for i, e := range elems {
		if s == nil {
			out[i] = e
			continue
		}
		v, err := s.Load(e)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func serializerName(s Serializer) SerializerName {
	if s == nil {
		return ""
	}
	return s.Name()
}

// assign stores a parsed value into dst, converting between compatible
// Go types.
func assign(dst reflect.Value, v any) error {
	if v == nil || IsBlank(v) {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	if rv, ok := v.(raw.Value); ok && dst.Type() != rawValueType && dst.Kind() != reflect.Interface {
		return assignRaw(dst, rv)
	}

	src := reflect.ValueOf(v)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(cloneValue(src))
		return nil
	}

	switch dst.Kind() {
	case reflect.Pointer:
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), v); err != nil {
			return err
		}
		dst.Set(elem)
		return nil

	case reflect.Slice:
		elems, ok := toSlice(v)
		if !ok {
			break
		}
		out := reflect.MakeSlice(dst.Type(), len(elems), len(elems))
		for i, e := range elems {
			if err := assign(out.Index(i), e); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		dst.Set(out)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch {
		case src.CanInt():
			return setInt(dst, src.Int())
		case src.CanUint():
			if src.Uint() > math.MaxInt64 {
				return fmt.Errorf("%w: %d does not fit %s", errOverflow, src.Uint(), dst.Type())
			}
			return setInt(dst, int64(src.Uint()))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch {
		case src.CanUint():
			return setUint(dst, src.Uint())
		case src.CanInt():
			if src.Int() < 0 {
				return fmt.Errorf("%w: %d does not fit %s", errOverflow, src.Int(), dst.Type())
			}
			return setUint(dst, uint64(src.Int()))
		}

	case reflect.Float32, reflect.Float64:
		switch {
		case src.CanFloat():
			if dst.OverflowFloat(src.Float()) {
				return fmt.Errorf("%w: %v does not fit %s", errOverflow, src.Float(), dst.Type())
			}
			dst.SetFloat(src.Float())
			return nil
		case src.CanInt():
			dst.SetFloat(float64(src.Int()))
			return nil
		case src.CanUint():
			dst.SetFloat(float64(src.Uint()))
			return nil
		}

	case reflect.String:
		if src.Kind() == reflect.String {
			dst.SetString(src.String())
			return nil
		}

	case reflect.Bool:
		if src.Kind() == reflect.Bool {
			dst.SetBool(src.Bool())
			return nil
		}
	}

	return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
}

// cloneValue deep-copies slices, maps and raw values so a bound struct never
// shares storage with a cached default.
func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		switch v.Type().Elem().Kind() {
		case reflect.Slice, reflect.Map, reflect.Interface, reflect.Struct:
			for i := 0; i < v.Len(); i++ {
				out.Index(i).Set(cloneValue(v.Index(i)))
			}
		default:
			reflect.Copy(out, v)
		}
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return out

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(cloneValue(v.Elem()))
		return out

	case reflect.Struct:
		if rv, ok := v.Interface().(raw.Value); ok {
			return reflect.ValueOf(rv.Clone())
		}
	}
	return v
}

// assignRaw stores an untyped raw value into a typed destination.
func assignRaw(dst reflect.Value, v raw.Value) error {
	switch v.Kind() {
	case raw.KindNull:
		dst.Set(reflect.Zero(dst.Type()))
		return nil

	case raw.KindString:
		s, _ := v.AsString()
		if dst.Kind() == reflect.String {
			dst.SetString(s)
			return nil
		}

	case raw.KindBool:
		b, _ := v.AsBool()
		if dst.Kind() == reflect.Bool {
			dst.SetBool(b)
			return nil
		}

	case raw.KindNumber:
		text, _ := v.AsNumber()
		switch dst.Kind() {
		case reflect.String:
			dst.SetString(text)
			return nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			i, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %s does not fit %s", errOverflow, text, dst.Type())
			}
			return setInt(dst, i)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u, err := strconv.ParseUint(text, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %s does not fit %s", errOverflow, text, dst.Type())
			}
			return setUint(dst, u)
		case reflect.Float32, reflect.Float64:
			f, err := strconv.ParseFloat(text, 64)
			if err != nil || dst.OverflowFloat(f) {
				return fmt.Errorf("%w: %s does not fit %s", errOverflow, text, dst.Type())
			}
			dst.SetFloat(f)
			return nil
		}

	case raw.KindArray:
		elems, _ := v.AsArray()
		if dst.Kind() == reflect.Slice {
			out := reflect.MakeSlice(dst.Type(), len(elems), len(elems))
			for i, e := range elems {
				if err := assign(out.Index(i), e); err != nil {
					return fmt.Errorf("[%d]: %w", i, err)
				}
			}
			dst.Set(out)
			return nil
		}

	case raw.KindObject:
		entries, _ := v.AsObject()
		if dst.Kind() == reflect.Map && dst.Type().Key().Kind() == reflect.String {
			out := reflect.MakeMapWithSize(dst.Type(), len(entries))
			for k, e := range entries {
				elem := reflect.New(dst.Type().Elem()).Elem()
				if err := assign(elem, e); err != nil {
					return fmt.Errorf("%s: %w", k, err)
				}
				out.SetMapIndex(reflect.ValueOf(k).Convert(dst.Type().Key()), elem)
			}
			dst.Set(out)
			return nil
		}
	}

	return fmt.Errorf("cannot assign %s to %s", v.Kind(), dst.Type())
}

func setInt(dst reflect.Value, i int64) error {
	if dst.OverflowInt(i) {
		return fmt.Errorf("%w: %d does not fit %s", errOverflow, i, dst.Type())
	}
	dst.SetInt(i)
	return nil
}

func setUint(dst reflect.Value, u uint64) error {
	if dst.OverflowUint(u) {
		return fmt.Errorf("%w: %d does not fit %s", errOverflow, u, dst.Type())
	}
	dst.SetUint(u)
	return nil
}
