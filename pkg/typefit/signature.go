package typefit

import (
	"fmt"
	"reflect"

	"github.com/funvibe/typefit/internal/checker"
	"github.com/funvibe/typefit/internal/config"
	"github.com/funvibe/typefit/internal/descriptor"
)

// Param is one positional parameter of a signature. For a variadic
// signature the last param's descriptor annotates each trailing
// argument, not the collected slice.
type Param struct {
	Name string
	Desc Descriptor
}

// Signature describes a callable: its positional parameters and its
// return descriptor. A nil Return means the callable returns nothing.
type Signature struct {
	Params   []Param
	Variadic bool
	Return   Descriptor

	fnType reflect.Type
}

// SigOf derives a signature from a Go function value via reflection.
// Parameters get positional names; multiple return values fold into a
// tuple descriptor.
func SigOf(fn any) (*Signature, error) {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return nil, fmt.Errorf("cannot derive a signature from %s", typeLabel(fn))
	}

	sig := &Signature{Variadic: t.IsVariadic(), fnType: t}
	for i := 0; i < t.NumIn(); i++ {
		in := t.In(i)
		if sig.Variadic && i == t.NumIn()-1 {
			in = in.Elem()
		}
		sig.Params = append(sig.Params, Param{
			Name: fmt.Sprintf("arg%d", i),
			Desc: descriptor.FromReflect(in),
		})
	}

	switch t.NumOut() {
	case 0:
	case 1:
		sig.Return = descriptor.FromReflect(t.Out(0))
	default:
		outs := make([]Descriptor, t.NumOut())
		for i := range outs {
			outs[i] = descriptor.FromReflect(t.Out(i))
		}
		sig.Return = descriptor.TupleOf(outs...)
	}
	return sig, nil
}

// Table returns the signature as a name-to-descriptor map, with the
// return descriptor stored under the reserved return key.
func (s *Signature) Table() map[string]Descriptor {
	table := make(map[string]Descriptor, len(s.Params)+1)
	for _, p := range s.Params {
		table[p.Name] = p.Desc
	}
	if s.Return != nil {
		table[config.ReturnKey] = s.Return
	}
	return table
}

// CheckCall validates a flattened argument list against the signature.
// Variadic signatures admit any number of trailing arguments, each
// checked against the last param's descriptor.
func (s *Signature) CheckCall(c *Compiler, args ...any) error {
	fixed := len(s.Params)
	if s.Variadic {
		fixed--
		if len(args) < fixed {
			return &checker.TypeMismatchError{
				Msg: fmt.Sprintf("call expects at least %d arguments, got %d", fixed, len(args)),
			}
		}
	} else if len(args) != fixed {
		return &checker.TypeMismatchError{
			Msg: fmt.Sprintf("call expects %d arguments, got %d", fixed, len(args)),
		}
	}

	for i, arg := range args {
		p := s.Params[min(i, len(s.Params)-1)]
		v, err := c.Compile(p.Desc, true)
		if err != nil {
			return err
		}
		if err := v.Check(arg); err != nil {
			return &checker.TypeMismatchError{
				Msg:   fmt.Sprintf("argument '%s' with value '%v' has wrong type", p.Name, arg),
				Cause: err,
			}
		}
	}
	return nil
}

// CheckCall validates args against the derived signature of fn using
// the default compiler.
func CheckCall(fn any, args ...any) error {
	sig, err := SigOf(fn)
	if err != nil {
		return err
	}
	return sig.CheckCall(defaultCompiler, args...)
}

// GuardFunc wraps fn so every invocation checks its arguments and its
// return values against the derived signature before handing them on.
func GuardFunc(fn any) (func(args ...any) ([]any, error), error) {
	sig, err := SigOf(fn)
	if err != nil {
		return nil, err
	}
	fv := reflect.ValueOf(fn)
	t := sig.fnType

	return func(args ...any) ([]any, error) {
		if err := sig.CheckCall(defaultCompiler, args...); err != nil {
			return nil, err
		}

		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			pt := t.In(min(i, t.NumIn()-1))
			if t.IsVariadic() && i >= t.NumIn()-1 {
				pt = t.In(t.NumIn() - 1).Elem()
			}
			if arg == nil {
				in[i] = reflect.Zero(pt)
			} else {
				in[i] = reflect.ValueOf(arg)
			}
		}

		outs := fv.Call(in)
		results := make([]any, len(outs))
		for i, out := range outs {
			results[i] = out.Interface()
		}

		if sig.Return != nil {
			ret := any(nil)
			switch len(results) {
			case 1:
				ret = results[0]
			default:
				ret = descriptor.Tuple(results)
			}
			v, err := defaultCompiler.Compile(sig.Return, false)
			if err != nil {
				return nil, err
			}
			if err := v.Check(ret); err != nil {
				return nil, &checker.TypeMismatchError{
					Msg:   fmt.Sprintf("return value '%v' has wrong type", ret),
					Cause: err,
				}
			}
		}
		return results, nil
	}, nil
}

// CheckInstance validates a value against its own type's registered
// attributes, recursing through the default registry.
func CheckInstance(value any) error {
	if value == nil {
		return &checker.TypeMismatchError{Msg: "cannot check attributes of nil"}
	}
	return Check(value, descriptor.Of(reflect.TypeOf(value)))
}

func typeLabel(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
