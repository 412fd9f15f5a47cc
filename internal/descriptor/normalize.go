package descriptor

import "fmt"

// MalformedError reports a descriptor that is not well-formed. It is the
// normalizer's only failure mode and is surfaced by the checker as an
// invalid-descriptor compile error.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed descriptor: %s", e.Reason)
}

func malformed(format string, args ...any) error {
	return &MalformedError{Reason: fmt.Sprintf(format, args...)}
}

// Normalize validates that a descriptor is well-formed at its own level.
// Child descriptors are normalized by the compiler when it recurses into
// them, so the checks here are deliberately shallow.
//
// isArgument reports whether the descriptor annotates a value in argument
// position; class-scoped variables are only legal outside of it.
func Normalize(d Descriptor, isArgument bool) error {
	if d == nil {
		return malformed("nil descriptor")
	}

	switch desc := d.(type) {
	case *AnyType, *Callable:
		return nil

	case *Concrete:
		if desc.Type == nil {
			return malformed("concrete descriptor with nil type")
		}

	case *Union:
		if len(desc.Members) == 0 {
			return malformed("union with no members")
		}
		for i, m := range desc.Members {
			if m == nil {
				return malformed("union member %d is nil", i)
			}
		}

	case *Literal:
		if len(desc.Values) == 0 {
			return malformed("literal with no allowed values")
		}

	case *TupleDesc:
		if desc.Variadic && len(desc.Elements) != 1 {
			return malformed("variadic tuple must carry exactly one element descriptor, has %d", len(desc.Elements))
		}
		for i, e := range desc.Elements {
			if e == nil {
				return malformed("tuple element %d is nil", i)
			}
		}

	case *Collection:
		if desc.Origin == nil {
			return malformed("collection with nil origin")
		}

	case *Mapping:
		if desc.Origin == nil {
			return malformed("mapping with nil origin")
		}

	case *Record:
		if desc.Fields == nil {
			return malformed("record %q with no field map", desc.Name)
		}
		for _, f := range desc.Fields {
			if f.Desc == nil {
				return malformed("record %q field %q has no descriptor", desc.Name, f.Name)
			}
		}

	case *Generic:
		if desc.Origin == nil {
			return malformed("generic wrapper with nil origin")
		}

	case *TypeOf:
		if desc.Elem == nil {
			return malformed("type-of descriptor with no child")
		}

	case *NewType:
		if desc.Underlying == nil {
			return malformed("no underlying type for new-type %q, this is not allowed", desc.Name)
		}

	case *ClassVar:
		if isArgument {
			return malformed("class-scoped variable is not valid in argument position")
		}
		if desc.Elem == nil {
			return malformed("class-scoped variable with no child")
		}

	case *TypeVar:
		if desc.Bound != nil && len(desc.Constraints) > 0 {
			return malformed("type variable %q carries both a bound and constraints", desc.Name)
		}

	case *ForwardRef:
		if desc.Name == "" {
			return malformed("forward reference with empty name")
		}
		if desc.Scope == nil {
			return malformed("forward reference %q with no lookup scope", desc.Name)
		}
	}

	return nil
}
