package checker

import (
	"reflect"

	"github.com/funvibe/typefit/internal/descriptor"
)

// passValidator accepts everything. Any, and type variables without
// bound or constraints, compile to it.
type passValidator struct{}

var passSingleton Validator = &passValidator{}

func (v *passValidator) Check(any) error              { return nil }
func (v *passValidator) CheckType(reflect.Type) error { return nil }

// concreteValidator checks assignability to a nominal target. For
// instances it additionally validates every attribute the registry
// declares for the target, reading current values off the instance.
type concreteValidator struct {
	target   reflect.Type
	compiler *Compiler
}

func (v *concreteValidator) Check(value any) error {
	if !instanceOf(value, v.target) {
		return mismatch("type '%s' is not consistent with expected type '%s'", typeName(value), v.target)
	}

	attrs := v.compiler.registry.Attrs(v.target)
	if len(attrs) == 0 {
		return nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	for _, attr := range attrs {
		field := fieldOf(rv, attr)
		if !field.IsValid() {
			continue
		}
		child, err := v.compiler.Compile(attr.Desc, false)
		if err != nil {
			return err
		}
		val := field.Interface()
		if err := child.Check(val); err != nil {
			if !IsTypeMismatch(err) {
				return err
			}
			return wrapMismatch(err, "attribute '%s' of instance of %s with value '%v' has wrong type", attr.Name, v.target, val)
		}
	}
	return nil
}

func (v *concreteValidator) CheckType(t reflect.Type) error {
	// Types have no attribute values, so no attribute recursion here.
	if !typeConforms(t, v.target) {
		return mismatch("type '%s' is not consistent with expected type '%s'", t, v.target)
	}
	return nil
}

// fieldOf locates the attribute's field on a struct instance. The index
// path comes from registrations the checker does not control, so every
// step is validated before use; a path that cannot be walked falls back
// to a name lookup, itself walked the same way.
func fieldOf(rv reflect.Value, attr descriptor.Attr) reflect.Value {
	if field, ok := fieldByIndexPath(rv, attr.FieldIndex); ok {
		return field
	}
	if sf, ok := rv.Type().FieldByName(attr.Name); ok {
		if field, ok := fieldByIndexPath(rv, sf.Index); ok {
			return field
		}
	}
	return reflect.Value{}
}

// fieldByIndexPath walks a multi-level field index one step at a time,
// unwrapping embedded pointers between steps. It reports false instead
// of panicking on an out-of-range index, a non-struct step, or a nil
// embedded pointer.
func fieldByIndexPath(rv reflect.Value, index []int) (reflect.Value, bool) {
	if len(index) == 0 {
		return reflect.Value{}, false
	}
	for depth, i := range index {
		if depth > 0 {
			for rv.Kind() == reflect.Ptr {
				if rv.IsNil() {
					return reflect.Value{}, false
				}
				rv = rv.Elem()
			}
		}
		if rv.Kind() != reflect.Struct || i < 0 || i >= rv.NumField() {
			return reflect.Value{}, false
		}
		rv = rv.Field(i)
	}
	return rv, true
}

// literalValidator tests membership in a fixed value set by deep value
// equality. A candidate type is compared the same way, as a value.
type literalValidator struct {
	desc *descriptor.Literal
}

func (v *literalValidator) member(candidate any) bool {
	for _, allowed := range v.desc.Values {
		if allowed == nil {
			// Typed nils (a nil *T read off a struct field) count as nil.
			if isNilValue(candidate) {
				return true
			}
			continue
		}
		if reflect.DeepEqual(candidate, allowed) {
			return true
		}
	}
	return false
}

func (v *literalValidator) Check(value any) error {
	if !v.member(value) {
		return mismatch("value '%v' is not in the list of literals: %s", value, v.desc)
	}
	return nil
}

func (v *literalValidator) CheckType(t reflect.Type) error {
	if !v.member(t) {
		return mismatch("type '%s' is not in the list of literals: %s", t, v.desc)
	}
	return nil
}

// typeOfValidator checks that the value itself is a type conforming to
// the child descriptor, not an instance of it.
type typeOfValidator struct {
	desc  *descriptor.TypeOf
	child Validator
}

func (v *typeOfValidator) Check(value any) error {
	t, ok := value.(reflect.Type)
	if !ok {
		return mismatch("%s expects a type, '%v' of type '%s' is not one", v.desc, value, typeName(value))
	}
	return v.child.CheckType(t)
}

func (v *typeOfValidator) CheckType(t reflect.Type) error {
	return v.child.CheckType(t)
}

// callableValidator accepts any callable. Argument and return shapes are
// not verified.
type callableValidator struct {
	desc *descriptor.Callable
}

func (v *callableValidator) Check(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Func {
		return mismatch("callable type expects a callable, '%v' of type '%s' is not", value, typeName(value))
	}
	return nil
}

func (v *callableValidator) CheckType(t reflect.Type) error {
	if t == nil || t.Kind() != reflect.Func {
		return mismatch("callable type expects a callable type, '%s' is not", t)
	}
	return nil
}

// unionValidator tries members in descriptor order and succeeds on the
// first member that does not mismatch. Per-member mismatches are
// suppressed; a single top-level mismatch names the whole union.
// Non-mismatch failures (unsupported or invalid descriptors) propagate.
type unionValidator struct {
	desc    *descriptor.Union
	members []Validator
}

func (v *unionValidator) Check(value any) error {
	for _, m := range v.members {
		err := m.Check(value)
		if err == nil {
			return nil
		}
		if !IsTypeMismatch(err) {
			return err
		}
	}
	return mismatch("instance '%v' of type '%s' does not belong to: %s", value, typeName(value), v.desc)
}

func (v *unionValidator) CheckType(t reflect.Type) error {
	for _, m := range v.members {
		err := m.CheckType(t)
		if err == nil {
			return nil
		}
		if !IsTypeMismatch(err) {
			return err
		}
	}
	return mismatch("type '%s' does not belong to: %s", t, v.desc)
}
