package checker

import "reflect"

// instanceOf is the Go rendition of an isinstance test against a nominal
// target. Assignability covers identity, named-type widening and
// interface implementation. An unnamed composite target (a container
// archetype such as []any or map[any]any) additionally matches any value
// of the same reflect.Kind: that is the "container class checked
// structurally" rule. A slice archetype also admits arrays.
func instanceOf(v any, target reflect.Type) bool {
	if target == nil {
		return false
	}
	rt := reflect.TypeOf(v)
	if rt == nil {
		// Untyped nil conforms to no nominal target; optionality is
		// expressed as a union with the nil literal.
		return false
	}
	return typeConforms(rt, target)
}

// typeConforms is the matching issubclass test on types.
func typeConforms(candidate, target reflect.Type) bool {
	if candidate == nil || target == nil {
		return false
	}
	if candidate.AssignableTo(target) {
		return true
	}
	if target.Name() == "" {
		switch target.Kind() {
		case reflect.Slice:
			return candidate.Kind() == reflect.Slice || candidate.Kind() == reflect.Array
		case reflect.Array, reflect.Map:
			return candidate.Kind() == target.Kind()
		}
	}
	return false
}

// mappingLike reports whether t is a map with string-compatible keys,
// the container class backing records.
func mappingLike(t reflect.Type) bool {
	if t == nil || t.Kind() != reflect.Map {
		return false
	}
	key := t.Key()
	return key.Kind() == reflect.String || key.Kind() == reflect.Interface
}

// isNilValue reports whether v is nil, including a typed nil carried in
// the interface.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// typeName renders a value's dynamic type for error messages.
func typeName(v any) string {
	rt := reflect.TypeOf(v)
	if rt == nil {
		return "nil"
	}
	return rt.String()
}
