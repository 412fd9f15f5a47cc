package descriptor

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/funvibe/typefit/internal/config"
)

// Attr declares the expected descriptor for one attribute of a nominal
// type. FieldIndex locates the attribute on struct instances.
type Attr struct {
	Name       string
	Desc       Descriptor
	FieldIndex []int
}

// Registry maps Go types to their declared attribute descriptors. It is
// the capability the checker uses to enumerate attributes of a Concrete
// target; Go has no ambient per-class annotations, so declarations come
// from explicit registration, struct-tag derivation, or generated code.
type Registry struct {
	mu    sync.RWMutex
	attrs map[reflect.Type][]Attr
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{attrs: make(map[reflect.Type][]Attr)}
}

// Register declares the attribute descriptors of t, replacing any
// previous declaration.
func (r *Registry) Register(t reflect.Type, attrs ...Attr) {
	r.mu.Lock()
	r.attrs[t] = attrs
	r.mu.Unlock()
}

// Attrs returns the attribute descriptors declared for t. A pointer type
// falls back to its element type's declaration.
func (r *Registry) Attrs(t reflect.Type) []Attr {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if attrs, ok := r.attrs[t]; ok {
		return attrs
	}
	if t != nil && t.Kind() == reflect.Ptr {
		return r.attrs[t.Elem()]
	}
	return nil
}

// DeriveStruct derives attribute descriptors for a struct type from its
// exported fields and registers them. Field types map through
// FromReflect; the `typefit` tag renames a field, skips it ("-"), or
// widens it to an optional ("name,optional").
func DeriveStruct(r *Registry, t reflect.Type) error {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("cannot derive attributes for non-struct type %s", t)
	}

	var attrs []Attr
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		optional := false
		if tag, ok := field.Tag.Lookup(config.TagName); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "optional" {
					optional = true
				}
			}
		}

		desc := FromReflect(field.Type)
		if optional {
			desc = Optional(desc)
		}
		attrs = append(attrs, Attr{Name: name, Desc: desc, FieldIndex: field.Index})
	}

	r.Register(t, attrs...)
	return nil
}

var anyInterfaceType = reflect.TypeOf((*any)(nil)).Elem()

// FromReflect maps a Go type to a descriptor:
// pointers and interfaces become optionals, slices and arrays collections, maps
// mappings, funcs callables, interface{} is Any, and everything else is
// the concrete type itself. Channels come back as generic wrappers the
// compiler will refuse, since draining a channel to inspect it is not
// safe.
func FromReflect(t reflect.Type) Descriptor {
	switch {
	case t == nil:
		return nil
	case t == anyInterfaceType:
		return Any()
	}

	switch t.Kind() {
	case reflect.Ptr:
		// The value stays a pointer at runtime, so the concrete target
		// keeps the pointer type; only the nil case widens to optional.
		return Optional(Of(t))
	case reflect.Interface:
		// nil inhabits every interface type.
		return Optional(Of(t))
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			// []byte stays nominal, element checks would be noise.
			return Of(t)
		}
		return ListOf(FromReflect(t.Elem()))
	case reflect.Map:
		return MapOf(FromReflect(t.Key()), FromReflect(t.Elem()))
	case reflect.Func:
		return Func()
	case reflect.Chan:
		return GenericOf(t)
	default:
		return Of(t)
	}
}
