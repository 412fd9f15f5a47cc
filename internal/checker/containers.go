package checker

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/funvibe/typefit/internal/descriptor"
)

// collectionValidator checks container-class membership, then every
// element against the single element descriptor. The first failing
// element aborts the check; failures are not aggregated.
type collectionValidator struct {
	desc   descriptor.Descriptor
	origin *concreteValidator
	elem   Validator // nil means Any
}

func (v *collectionValidator) Check(value any) error {
	if err := v.origin.Check(value); err != nil {
		return err
	}
	if v.elem == nil {
		return nil
	}

	for _, item := range elementsOf(reflect.ValueOf(value)) {
		if err := v.elem.Check(item); err != nil {
			if !IsTypeMismatch(err) {
				return err
			}
			return wrapMismatch(err, "item '%v' of collection '%v' has wrong type", item, value)
		}
	}
	return nil
}

func (v *collectionValidator) CheckType(t reflect.Type) error {
	return v.origin.CheckType(t)
}

// elementsOf lists a container's elements in a deterministic order.
// A set (a map used as a collection) contributes its keys.
func elementsOf(rv reflect.Value) []any {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items
	case reflect.Map:
		items := make([]any, 0, rv.Len())
		for _, key := range rv.MapKeys() {
			items = append(items, key.Interface())
		}
		sort.Slice(items, func(i, j int) bool {
			return fmt.Sprint(items[i]) < fmt.Sprint(items[j])
		})
		return items
	default:
		return nil
	}
}

// mappingValidator checks container-class membership, then keys and
// values independently. Entries are visited in rendered-key order so the
// first reported failure is deterministic.
type mappingValidator struct {
	desc   descriptor.Descriptor
	origin *concreteValidator
	key    Validator // nil means Any
	value  Validator // nil means Any
}

func (v *mappingValidator) Check(value any) error {
	if err := v.origin.Check(value); err != nil {
		return err
	}
	if v.key == nil && v.value == nil {
		return nil
	}

	rv := reflect.ValueOf(value)
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})

	for _, key := range keys {
		k := key.Interface()
		if v.key != nil {
			if err := v.key.Check(k); err != nil {
				if !IsTypeMismatch(err) {
					return err
				}
				return wrapMismatch(err, "key '%v' of mapping '%v' has wrong type", k, value)
			}
		}
		if v.value != nil {
			val := rv.MapIndex(key).Interface()
			if err := v.value.Check(val); err != nil {
				if !IsTypeMismatch(err) {
					return err
				}
				return wrapMismatch(err, "value '%v' of mapping '%v' has wrong type", val, value)
			}
		}
	}
	return nil
}

func (v *mappingValidator) CheckType(t reflect.Type) error {
	return v.origin.CheckType(t)
}

var tupleType = reflect.TypeOf(descriptor.Tuple(nil))

// tupleValidator checks the tuple container class, then arity, then
// elements positionally. The empty form matches tuples of length 0 or 1
// only; this asymmetric rule is historical and preserved deliberately.
type tupleValidator struct {
	desc     *descriptor.TupleDesc
	elements []Validator
	variadic Validator
}

func (v *tupleValidator) Check(value any) error {
	if !instanceOf(value, tupleType) {
		return mismatch("type '%s' is not consistent with expected type '%s'", typeName(value), tupleType)
	}
	rv := reflect.ValueOf(value)
	length := rv.Len()

	if v.variadic != nil {
		for i := 0; i < length; i++ {
			item := rv.Index(i).Interface()
			if err := v.variadic.Check(item); err != nil {
				if !IsTypeMismatch(err) {
					return err
				}
				return wrapMismatch(err, "item %d of tuple '%v' with value '%v' has wrong type", i, value, item)
			}
		}
		return nil
	}

	if len(v.elements) == 0 {
		if length > 1 {
			return mismatch("'()' expects a tuple of length 1 or 0, tuple '%v' has length %d", value, length)
		}
		return nil
	}

	if length != len(v.elements) {
		return mismatch("'%s' expects a tuple of length %d, tuple '%v' has length %d", v.desc, len(v.elements), value, length)
	}

	for i, elem := range v.elements {
		item := rv.Index(i).Interface()
		if err := elem.Check(item); err != nil {
			if !IsTypeMismatch(err) {
				return err
			}
			return wrapMismatch(err, "item %d of tuple '%v' with value '%v' has wrong type", i, value, item)
		}
	}
	return nil
}

func (v *tupleValidator) CheckType(t reflect.Type) error {
	if !typeConforms(t, tupleType) {
		return mismatch("type '%s' is not consistent with expected type '%s'", t, tupleType)
	}
	return nil
}

// recordValidator checks a mapping-like container against a fixed field
// map. Unknown keys are always rejected; missing keys only when the
// record is total.
type recordValidator struct {
	desc   *descriptor.Record
	fields []Validator // parallel to desc.Fields
}

func (v *recordValidator) Check(value any) error {
	rt := reflect.TypeOf(value)
	if rt == nil || !mappingLike(rt) {
		return mismatch("type '%s' is not consistent with expected record type '%s'", typeName(value), v.desc)
	}

	rv := reflect.ValueOf(value)
	present := make(map[string]reflect.Value, rv.Len())
	var unknown []string
	for _, key := range rv.MapKeys() {
		name, ok := stringKey(key)
		if !ok || v.desc.Field(name) == nil {
			unknown = append(unknown, fmt.Sprint(key.Interface()))
			continue
		}
		present[name] = rv.MapIndex(key)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return mismatch("keys %v of '%v' are not part of record '%s'", unknown, value, v.desc)
	}

	if v.desc.Total {
		var missing []string
		for _, f := range v.desc.Fields {
			if _, ok := present[f.Name]; !ok {
				missing = append(missing, f.Name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return mismatch("keys %v of record '%s' are not set in '%v'", missing, v.desc, value)
		}
	}

	for i, f := range v.desc.Fields {
		fv, ok := present[f.Name]
		if !ok {
			continue
		}
		val := fv.Interface()
		if err := v.fields[i].Check(val); err != nil {
			if !IsTypeMismatch(err) {
				return err
			}
			return wrapMismatch(err, "field '%s' of record '%s' with value '%v' has wrong type", f.Name, v.desc, val)
		}
	}
	return nil
}

func (v *recordValidator) CheckType(t reflect.Type) error {
	if !mappingLike(t) {
		return mismatch("type '%s' is not consistent with expected record type '%s'", t, v.desc)
	}
	return nil
}

// stringKey extracts a record key as a string, unwrapping interface
// keys of map[any]any containers.
func stringKey(key reflect.Value) (string, bool) {
	if key.Kind() == reflect.Interface {
		key = key.Elem()
	}
	if key.Kind() == reflect.String {
		return key.String(), true
	}
	return "", false
}
