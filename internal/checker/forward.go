package checker

import (
	"reflect"
	"sync"

	"github.com/funvibe/typefit/internal/descriptor"
)

// forwardRefValidator is the two-state lazy node behind a forward
// reference: Unresolved{name, scope} until the first check, then
// Resolved{delegate} forever. The transition happens under a lock and at
// most once; a failed lookup does not latch, so the next check retries
// against the same scope.
type forwardRefValidator struct {
	name     string
	scope    *descriptor.Scope
	argument bool
	compiler *Compiler

	mu          sync.Mutex
	delegate    Validator
	resolutions int
}

func (v *forwardRefValidator) resolve() (Validator, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.delegate != nil {
		return v.delegate, nil
	}

	v.resolutions++
	d, ok := v.scope.Lookup(v.name)
	if !ok {
		return nil, invalid("name %q cannot be resolved in its lookup scope", v.name)
	}
	child, err := v.compiler.Compile(d, v.argument)
	if err != nil {
		return nil, err
	}
	v.delegate = child
	return child, nil
}

// Resolutions reports how many times the node actually ran a lookup.
// Test instrumentation for the resolve-at-most-once invariant.
func (v *forwardRefValidator) Resolutions() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.resolutions
}

func (v *forwardRefValidator) Check(value any) error {
	child, err := v.resolve()
	if err != nil {
		return err
	}
	return child.Check(value)
}

func (v *forwardRefValidator) CheckType(t reflect.Type) error {
	child, err := v.resolve()
	if err != nil {
		return err
	}
	return child.CheckType(t)
}
