package param

import (
	"context"
	"sort"
)

// Registry is an immutable, name-keyed table of serializers.
// It is safe for concurrent use; no method mutates the receiver.
type Registry struct {
	byName map[SerializerName]Serializer
	names  []SerializerName
}

// defaultRegistry holds the builtin serializers. It is built once at init.
var defaultRegistry = mustRegistry(builtinSerializers()...)

// NewRegistry builds a registry from serializers.
// Names must be non-empty and unique.
func NewRegistry(serializers ...Serializer) (*Registry, error) {
	r := &Registry{
		byName: make(map[SerializerName]Serializer, len(serializers)),
		names:  make([]SerializerName, 0, len(serializers)),
	}
	for _, s := range serializers {
		name := s.Name()
		if name == "" {
			return nil, newConfigError(ErrInvalidTag, name, "", "serializer name must not be empty")
		}
		if _, dup := r.byName[name]; dup {
			return nil, newConfigError(ErrDuplicateSerializer, name, "", "")
		}
		r.byName[name] = s
		r.names = append(r.names, name)
	}
	sort.Slice(r.names, func(i, j int) bool { return r.names[i] < r.names[j] })

	emitRegistryBuilt(context.Background(), len(r.names))
	return r, nil
}

func mustRegistry(serializers ...Serializer) *Registry {
	r, err := NewRegistry(serializers...)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRegistry returns the registry of builtin serializers.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Lookup returns the serializer registered under name from the default registry.
func Lookup(name SerializerName) (Serializer, error) {
	return defaultRegistry.Lookup(name)
}

// Lookup returns the serializer registered under name.
// An unknown name yields a *ConfigError wrapping ErrUnknownSerializer.
func (r *Registry) Lookup(name SerializerName) (Serializer, error) {
	if s, ok := r.byName[name]; ok {
		return s, nil
	}
	return nil, newConfigError(ErrUnknownSerializer, name, "", "")
}

// MustLookup is like Lookup but panics on unknown names.
// Use it when wiring fixed field declarations at startup.
func (r *Registry) MustLookup(name SerializerName) Serializer {
	s, err := r.Lookup(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []SerializerName {
	return append([]SerializerName(nil), r.names...)
}

// Len returns the number of registered serializers.
func (r *Registry) Len() int {
	return len(r.names)
}

// Extend returns a new registry holding the receiver's serializers plus
// serializers. The receiver is unchanged.
func (r *Registry) Extend(serializers ...Serializer) (*Registry, error) {
	all := make([]Serializer, 0, len(r.names)+len(serializers))
	for _, name := range r.names {
		all = append(all, r.byName[name])
	}
	all = append(all, serializers...)
	return NewRegistry(all...)
}
