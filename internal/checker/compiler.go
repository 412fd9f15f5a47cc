package checker

import (
	"reflect"
	"sync"

	"github.com/funvibe/typefit/internal/config"
	"github.com/funvibe/typefit/internal/descriptor"
)

// Validator is the compiled, executable counterpart of a descriptor.
//
// Check validates an instance; CheckType validates that a candidate type
// is a subtype of the descriptor's target. Both return nil on success
// and a TypeMismatchError, InvalidDescriptorError or NotImplementedError
// otherwise.
type Validator interface {
	Check(value any) error
	CheckType(t reflect.Type) error
}

type cacheKey struct {
	desc     descriptor.Descriptor
	argument bool
}

// Compiler builds validators from descriptors. Compilation is
// deterministic and memoized: compiling the same descriptor with the
// same argument flag yields the identical Validator instance.
//
// The compiler owns the registry consulted for attribute descriptors of
// nominal targets. It is safe for concurrent use.
type Compiler struct {
	registry *descriptor.Registry

	mu    sync.Mutex
	cache map[cacheKey]Validator
}

// NewCompiler creates a compiler over the given registry. A nil registry
// means no nominal type declares attributes.
func NewCompiler(registry *descriptor.Registry) *Compiler {
	if registry == nil {
		registry = descriptor.NewRegistry()
	}
	return &Compiler{
		registry: registry,
		cache:    make(map[cacheKey]Validator),
	}
}

// Registry returns the attribute registry the compiler consults.
func (c *Compiler) Registry() *descriptor.Registry { return c.registry }

// Compile builds (or returns the cached) validator for d. isArgument
// reports whether d annotates a value in argument position, where
// class-scoped variables are rejected.
func (c *Compiler) Compile(d descriptor.Descriptor, isArgument bool) (Validator, error) {
	key := cacheKey{desc: d, argument: isArgument}

	c.mu.Lock()
	if v, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	if err := descriptor.Normalize(d, isArgument); err != nil {
		return nil, &InvalidDescriptorError{Msg: "invalid type", Cause: err}
	}

	built, err := c.build(d, isArgument)
	if err != nil {
		return nil, err
	}

	// First writer wins, so concurrent compiles converge on one instance.
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.cache[key]; ok {
		return v, nil
	}
	if len(c.cache) >= config.CompileCacheSize {
		c.cache = make(map[cacheKey]Validator)
	}
	c.cache[key] = built
	return built, nil
}

// build maps one descriptor to one validator. The arms follow the
// priority order of the checker: the Generic arm resolves the
// mapping/collection/iterable/wrapper overlap internally, which is the
// only place where variants are not mutually exclusive.
func (c *Compiler) build(d descriptor.Descriptor, isArgument bool) (Validator, error) {
	switch desc := d.(type) {
	case *descriptor.AnyType:
		return passSingleton, nil

	case *descriptor.TypeOf:
		child, err := c.Compile(desc.Elem, isArgument)
		if err != nil {
			return nil, err
		}
		return &typeOfValidator{desc: desc, child: child}, nil

	case *descriptor.Literal:
		return &literalValidator{desc: desc}, nil

	case *descriptor.Generic:
		return c.buildGeneric(desc, isArgument)

	case *descriptor.Collection:
		return c.buildCollection(desc.Origin, desc.Elem, desc, isArgument)

	case *descriptor.Mapping:
		return c.buildMapping(desc.Origin, desc.Key, desc.Value, desc, isArgument)

	case *descriptor.TupleDesc:
		return c.buildTuple(desc, isArgument)

	case *descriptor.Callable:
		return &callableValidator{desc: desc}, nil

	case *descriptor.Record:
		return c.buildRecord(desc, isArgument)

	case *descriptor.Concrete:
		return &concreteValidator{target: desc.Type, compiler: c}, nil

	case *descriptor.Union:
		members := make([]Validator, len(desc.Members))
		for i, m := range desc.Members {
			child, err := c.Compile(m, isArgument)
			if err != nil {
				return nil, err
			}
			members[i] = child
		}
		return &unionValidator{desc: desc, members: members}, nil

	case *descriptor.TypeVar:
		// Pure delegation, decided here once: bound, union of
		// constraints, or Any.
		switch {
		case desc.Bound != nil:
			return c.Compile(desc.Bound, isArgument)
		case len(desc.Constraints) > 0:
			return c.Compile(descriptor.OneOf(desc.Constraints...), isArgument)
		default:
			return passSingleton, nil
		}

	case *descriptor.NewType:
		return c.Compile(desc.Underlying, isArgument)

	case *descriptor.ForwardRef:
		return &forwardRefValidator{
			name:     desc.Name,
			scope:    desc.Scope,
			argument: isArgument,
			compiler: c,
		}, nil

	case *descriptor.ClassVar:
		return c.Compile(desc.Elem, isArgument)

	default:
		return nil, notImplemented("could not check with descriptor: '%s'", d)
	}
}

// buildGeneric resolves the structural overlap between generic wrappers
// and containers: a map-like origin is a mapping, any other finite
// multi-element container a collection, an exhausting iterable is
// unsupported, and everything else keeps only the origin check.
func (c *Compiler) buildGeneric(desc *descriptor.Generic, isArgument bool) (Validator, error) {
	origin := desc.Origin
	switch origin.Kind() {
	case reflect.Map:
		var key, value descriptor.Descriptor
		if len(desc.Args) > 0 {
			key = desc.Args[0]
		}
		if len(desc.Args) > 1 {
			value = desc.Args[1]
		}
		return c.buildMapping(origin, key, value, desc, isArgument)

	case reflect.Slice, reflect.Array:
		var elem descriptor.Descriptor
		if len(desc.Args) > 0 {
			elem = desc.Args[0]
		}
		return c.buildCollection(origin, elem, desc, isArgument)

	case reflect.Chan, reflect.Func:
		return nil, notImplemented("it is currently not possible to cater for iterables that exhaust: %s", origin)

	default:
		// Origin-only check; type arguments are deliberately not verified.
		return &concreteValidator{target: origin, compiler: c}, nil
	}
}

func (c *Compiler) buildCollection(origin reflect.Type, elem descriptor.Descriptor, d descriptor.Descriptor, isArgument bool) (Validator, error) {
	v := &collectionValidator{
		desc:   d,
		origin: &concreteValidator{target: origin, compiler: c},
	}
	if elem != nil {
		child, err := c.Compile(elem, isArgument)
		if err != nil {
			return nil, err
		}
		v.elem = child
	}
	return v, nil
}

func (c *Compiler) buildMapping(origin reflect.Type, key, value descriptor.Descriptor, d descriptor.Descriptor, isArgument bool) (Validator, error) {
	v := &mappingValidator{
		desc:   d,
		origin: &concreteValidator{target: origin, compiler: c},
	}
	if key != nil {
		child, err := c.Compile(key, isArgument)
		if err != nil {
			return nil, err
		}
		v.key = child
	}
	if value != nil {
		child, err := c.Compile(value, isArgument)
		if err != nil {
			return nil, err
		}
		v.value = child
	}
	return v, nil
}

func (c *Compiler) buildTuple(desc *descriptor.TupleDesc, isArgument bool) (Validator, error) {
	v := &tupleValidator{desc: desc}
	if desc.Variadic {
		child, err := c.Compile(desc.Elements[0], isArgument)
		if err != nil {
			return nil, err
		}
		v.variadic = child
		return v, nil
	}
	v.elements = make([]Validator, len(desc.Elements))
	for i, e := range desc.Elements {
		child, err := c.Compile(e, isArgument)
		if err != nil {
			return nil, err
		}
		v.elements[i] = child
	}
	return v, nil
}

func (c *Compiler) buildRecord(desc *descriptor.Record, isArgument bool) (Validator, error) {
	v := &recordValidator{desc: desc}
	v.fields = make([]Validator, len(desc.Fields))
	for i, f := range desc.Fields {
		child, err := c.Compile(f.Desc, isArgument)
		if err != nil {
			return nil, err
		}
		v.fields[i] = child
	}
	return v, nil
}
