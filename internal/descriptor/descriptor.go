// Package descriptor defines the declarative type descriptors validated by
// the checker, plus the lookup scopes and the attribute registry they
// resolve against.
//
// A Descriptor is immutable, externally supplied data describing an
// expected shape of a value or type. The checker compiles descriptors
// into validators; nothing in this package inspects values itself.
package descriptor

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// DescriptorKind discriminates the closed set of descriptor variants.
type DescriptorKind int

const (
	KindAny DescriptorKind = iota
	KindConcrete
	KindUnion
	KindLiteral
	KindTuple
	KindCollection
	KindMapping
	KindRecord
	KindGeneric
	KindTypeOf
	KindNewType
	KindClassVar
	KindTypeVar
	KindForwardRef
	KindCallable
)

// Descriptor is the interface for all type descriptors.
// All variants are pointer types, so descriptor identity (and with it
// compile-cache identity) is pointer identity.
type Descriptor interface {
	String() string
	DescKind() DescriptorKind
}

// Tuple is the runtime representation of a tuple value. A value conforms
// to a tuple descriptor only when it is assignable to this type.
type Tuple []any

// AnyType matches everything.
type AnyType struct{}

var anySingleton = &AnyType{}

// Any returns the shared Any descriptor.
func Any() *AnyType { return anySingleton }

func (d *AnyType) String() string           { return "Any" }
func (d *AnyType) DescKind() DescriptorKind { return KindAny }

// Concrete targets a nominal Go type. Instances are checked with the
// assignability rules of the checker; when the registry declares
// attribute descriptors for the target, attribute values are checked
// recursively as well.
type Concrete struct {
	Type reflect.Type
}

// Of builds a Concrete descriptor for the given Go type.
func Of(t reflect.Type) *Concrete { return &Concrete{Type: t} }

// OfValue builds a Concrete descriptor for the dynamic type of v.
func OfValue(v any) *Concrete { return &Concrete{Type: reflect.TypeOf(v)} }

func (d *Concrete) String() string {
	if d.Type == nil {
		return "<nil type>"
	}
	return d.Type.String()
}
func (d *Concrete) DescKind() DescriptorKind { return KindConcrete }

// Union is an ordered sequence of alternative descriptors. Order matters:
// the checker tries members in declaration order and stops at the first
// success.
type Union struct {
	Members []Descriptor
}

// OneOf builds a Union over the given members.
func OneOf(members ...Descriptor) *Union { return &Union{Members: members} }

// Optional is a union of d with the nil literal.
func Optional(d Descriptor) *Union { return OneOf(d, Nil()) }

func (d *Union) String() string {
	parts := make([]string, len(d.Members))
	for i, m := range d.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}
func (d *Union) DescKind() DescriptorKind { return KindUnion }

// Literal is a set of allowed concrete values. Membership is value
// equality, never a type test.
type Literal struct {
	Values []any
}

// LiteralOf builds a Literal descriptor over the given values.
func LiteralOf(values ...any) *Literal { return &Literal{Values: values} }

var nilSingleton = &Literal{Values: []any{nil}}

// Nil matches exactly the nil value.
func Nil() *Literal { return nilSingleton }

func (d *Literal) String() string {
	if d == nilSingleton {
		return "nil"
	}
	parts := make([]string, len(d.Values))
	for i, v := range d.Values {
		parts[i] = fmt.Sprintf("%#v", v)
	}
	return "Literal[" + strings.Join(parts, ", ") + "]"
}
func (d *Literal) DescKind() DescriptorKind { return KindLiteral }

// TupleDesc describes tuple shapes.
//
//   - Elements == nil, Variadic == false: the empty form. It matches
//     tuples of length 0 or 1 only (a historical rule, preserved as-is).
//   - Variadic == true: Elements holds exactly one element descriptor and
//     arity is unbounded.
//   - Otherwise: fixed arity, one descriptor per position.
type TupleDesc struct {
	Elements []Descriptor
	Variadic bool
}

// TupleOf builds a fixed-arity tuple descriptor.
func TupleOf(elements ...Descriptor) *TupleDesc { return &TupleDesc{Elements: elements} }

// TupleEllipsis builds a variadic tuple descriptor over one element type.
func TupleEllipsis(elem Descriptor) *TupleDesc {
	return &TupleDesc{Elements: []Descriptor{elem}, Variadic: true}
}

// EmptyTuple builds the empty (unparameterized) tuple descriptor.
func EmptyTuple() *TupleDesc { return &TupleDesc{} }

func (d *TupleDesc) String() string {
	if len(d.Elements) == 0 {
		return "()"
	}
	if d.Variadic {
		return fmt.Sprintf("(%s, ...)", d.Elements[0].String())
	}
	parts := make([]string, len(d.Elements))
	for i, e := range d.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (d *TupleDesc) DescKind() DescriptorKind { return KindTuple }

// Collection pairs a container origin with a single element descriptor.
// Elem may be nil, meaning Any.
type Collection struct {
	Origin reflect.Type
	Elem   Descriptor
}

// Container archetypes. Unnamed composite types match structurally on
// reflect.Kind, so ListOrigin accepts every slice (and array) value and
// SetOrigin every map used as a set.
var (
	ListOrigin = reflect.TypeOf([]any(nil))
	SetOrigin  = reflect.TypeOf(map[any]struct{}(nil))
	MapOrigin  = reflect.TypeOf(map[any]any(nil))
)

// ListOf builds a collection descriptor over the list archetype.
func ListOf(elem Descriptor) *Collection { return &Collection{Origin: ListOrigin, Elem: elem} }

// SetOf builds a collection descriptor over the set archetype.
func SetOf(elem Descriptor) *Collection { return &Collection{Origin: SetOrigin, Elem: elem} }

func (d *Collection) String() string {
	elem := "Any"
	if d.Elem != nil {
		elem = d.Elem.String()
	}
	if d.Origin != nil && d.Origin.Kind() == reflect.Map {
		return fmt.Sprintf("Set<%s>", elem)
	}
	return fmt.Sprintf("List<%s>", elem)
}
func (d *Collection) DescKind() DescriptorKind { return KindCollection }

// Mapping pairs a map-like origin with key and value descriptors.
// Key and Value may be nil, meaning Any.
type Mapping struct {
	Origin reflect.Type
	Key    Descriptor
	Value  Descriptor
}

// MapOf builds a mapping descriptor over the map archetype.
func MapOf(key, value Descriptor) *Mapping {
	return &Mapping{Origin: MapOrigin, Key: key, Value: value}
}

func (d *Mapping) String() string {
	key, value := "Any", "Any"
	if d.Key != nil {
		key = d.Key.String()
	}
	if d.Value != nil {
		value = d.Value.String()
	}
	return fmt.Sprintf("Map<%s, %s>", key, value)
}
func (d *Mapping) DescKind() DescriptorKind { return KindMapping }

// Field is one named entry of a record.
type Field struct {
	Name string
	Desc Descriptor
}

// Record is a mapping-like type with a fixed, named set of per-key
// descriptors. Total records require every declared key to be present;
// partial records allow missing keys. Unknown keys are rejected either
// way.
type Record struct {
	Name   string
	Fields []Field
	Total  bool
}

// RecordOf builds a record descriptor. Fields keep declaration order.
func RecordOf(name string, total bool, fields ...Field) *Record {
	return &Record{Name: name, Fields: fields, Total: total}
}

// Field returns the descriptor declared for name, or nil.
func (d *Record) Field(name string) Descriptor {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Desc
		}
	}
	return nil
}

func (d *Record) String() string {
	if d.Name != "" {
		return d.Name
	}
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	sort.Strings(names)
	return "record{" + strings.Join(names, ", ") + "}"
}
func (d *Record) DescKind() DescriptorKind { return KindRecord }

// Generic is a parametric wrapper: an origin Go type plus type arguments
// that are deliberately not verified. Only the origin is checked, except
// that container-like origins are reinterpreted by the compiler as
// Collection or Mapping descriptors.
type Generic struct {
	Origin reflect.Type
	Args   []Descriptor
}

// GenericOf builds a generic wrapper descriptor.
func GenericOf(origin reflect.Type, args ...Descriptor) *Generic {
	return &Generic{Origin: origin, Args: args}
}

func (d *Generic) String() string {
	origin := "<nil type>"
	if d.Origin != nil {
		origin = d.Origin.String()
	}
	if len(d.Args) == 0 {
		return origin
	}
	parts := make([]string, len(d.Args))
	for i, a := range d.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", origin, strings.Join(parts, ", "))
}
func (d *Generic) DescKind() DescriptorKind { return KindGeneric }

// TypeOf checks that the value itself is a type conforming to Elem, not
// an instance of it.
type TypeOf struct {
	Elem Descriptor
}

// TypeOfDesc builds a type-of descriptor.
func TypeOfDesc(elem Descriptor) *TypeOf { return &TypeOf{Elem: elem} }

func (d *TypeOf) String() string {
	if d.Elem == nil {
		return "Type<?>"
	}
	return fmt.Sprintf("Type<%s>", d.Elem.String())
}
func (d *TypeOf) DescKind() DescriptorKind { return KindTypeOf }

// NewType is a distinct named alias validating transparently against its
// underlying descriptor.
type NewType struct {
	Name       string
	Underlying Descriptor
}

// NewTypeOf builds a distinct alias descriptor.
func NewTypeOf(name string, underlying Descriptor) *NewType {
	return &NewType{Name: name, Underlying: underlying}
}

func (d *NewType) String() string           { return d.Name }
func (d *NewType) DescKind() DescriptorKind { return KindNewType }

// ClassVar marks a class-scoped variable. It delegates transparently to
// Elem but is rejected in argument position.
type ClassVar struct {
	Elem Descriptor
}

// ClassVarOf builds a class-scoped variable descriptor.
func ClassVarOf(elem Descriptor) *ClassVar { return &ClassVar{Elem: elem} }

func (d *ClassVar) String() string {
	if d.Elem == nil {
		return "ClassVar<?>"
	}
	return fmt.Sprintf("ClassVar<%s>", d.Elem.String())
}
func (d *ClassVar) DescKind() DescriptorKind { return KindClassVar }

// TypeVar is a bounded or constrained variable. A bound delegates to the
// bound descriptor; constraints delegate to their union; neither means
// Any.
type TypeVar struct {
	Name        string
	Bound       Descriptor
	Constraints []Descriptor
}

// TypeVarBound builds a type variable with an upper bound.
func TypeVarBound(name string, bound Descriptor) *TypeVar {
	return &TypeVar{Name: name, Bound: bound}
}

// TypeVarConstrained builds a type variable with a constraint set.
func TypeVarConstrained(name string, constraints ...Descriptor) *TypeVar {
	return &TypeVar{Name: name, Constraints: constraints}
}

func (d *TypeVar) String() string {
	if d.Name != "" {
		return d.Name
	}
	return "T?"
}
func (d *TypeVar) DescKind() DescriptorKind { return KindTypeVar }

// ForwardRef refers to a type by name, resolved lazily against a scope
// the first time a validator containing it is exercised.
type ForwardRef struct {
	Name  string
	Scope *Scope
}

// Ref builds a forward reference into the given scope.
func Ref(name string, scope *Scope) *ForwardRef {
	return &ForwardRef{Name: name, Scope: scope}
}

func (d *ForwardRef) String() string           { return fmt.Sprintf("%q", d.Name) }
func (d *ForwardRef) DescKind() DescriptorKind { return KindForwardRef }

// Callable matches any callable value. Argument and return shapes are
// not verified.
type Callable struct{}

var callableSingleton = &Callable{}

// Func returns the shared Callable descriptor.
func Func() *Callable { return callableSingleton }

func (d *Callable) String() string           { return "callable" }
func (d *Callable) DescKind() DescriptorKind { return KindCallable }
