// Package typefit is the public surface of the descriptor checker: it
// re-exports the descriptor constructors, the compiler, and the error
// predicates, and carries a process-wide default compiler with its own
// attribute registry.
package typefit

import (
	"reflect"

	"github.com/funvibe/typefit/internal/checker"
	"github.com/funvibe/typefit/internal/descriptor"
)

// Core types, aliased so callers never import internal packages.
type (
	Descriptor = descriptor.Descriptor
	Tuple      = descriptor.Tuple
	Scope      = descriptor.Scope
	Registry   = descriptor.Registry
	Attr       = descriptor.Attr
	Field      = descriptor.Field
	Validator  = checker.Validator
	Compiler   = checker.Compiler
)

// Descriptor constructors.
var (
	Any           = descriptor.Any
	Of            = descriptor.Of
	OfValue       = descriptor.OfValue
	OneOf         = descriptor.OneOf
	Optional      = descriptor.Optional
	LiteralOf     = descriptor.LiteralOf
	Nil           = descriptor.Nil
	TupleOf       = descriptor.TupleOf
	TupleEllipsis = descriptor.TupleEllipsis
	EmptyTuple    = descriptor.EmptyTuple
	ListOf        = descriptor.ListOf
	SetOf         = descriptor.SetOf
	MapOf         = descriptor.MapOf
	RecordOf      = descriptor.RecordOf
	NewTypeOf     = descriptor.NewTypeOf
	Func          = descriptor.Func
	NewScope      = descriptor.NewScope
	FromReflect   = descriptor.FromReflect
)

// Error predicates.
var (
	IsTypeMismatch      = checker.IsTypeMismatch
	IsInvalidDescriptor = checker.IsInvalidDescriptor
	IsNotImplemented    = checker.IsNotImplemented
)

// NewCompiler creates an independent compiler over its own registry.
func NewCompiler() *Compiler {
	return checker.NewCompiler(descriptor.NewRegistry())
}

var defaultCompiler = NewCompiler()

// DefaultCompiler returns the process-wide compiler used by the
// package-level Check functions and by generated registration code.
func DefaultCompiler() *Compiler { return defaultCompiler }

// Register derives attribute descriptors for a struct type from its
// exported fields and tags, into the default registry.
func Register(t reflect.Type) error {
	return descriptor.DeriveStruct(defaultCompiler.Registry(), t)
}

// MustRegister is Register for init-time use in generated code.
func MustRegister(t reflect.Type) {
	if err := Register(t); err != nil {
		panic(err)
	}
}

// RegisterAttrs declares explicit attribute descriptors for t in the
// default registry, replacing any derived ones.
func RegisterAttrs(t reflect.Type, attrs ...Attr) {
	defaultCompiler.Registry().Register(t, attrs...)
}

// Compile builds (or fetches the memoized) validator for d using the
// default compiler, in argument position.
func Compile(d Descriptor) (Validator, error) {
	return defaultCompiler.Compile(d, true)
}

// Check validates value against d using the default compiler.
func Check(value any, d Descriptor) error {
	v, err := Compile(d)
	if err != nil {
		return err
	}
	return v.Check(value)
}

// CheckType validates that candidate is a subtype of d's target using
// the default compiler.
func CheckType(candidate reflect.Type, d Descriptor) error {
	v, err := Compile(d)
	if err != nil {
		return err
	}
	return v.CheckType(candidate)
}
