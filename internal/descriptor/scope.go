package descriptor

import "sync"

// Scope is a named lookup table for forward references. Scopes chain:
// a lookup that misses locally continues in the parent.
//
// Declare and Lookup are safe for concurrent use; forward references are
// resolved lazily, possibly from multiple goroutines.
type Scope struct {
	parent *Scope

	mu    sync.RWMutex
	names map[string]Descriptor
}

// NewScope creates a scope chained to parent (which may be nil).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, names: make(map[string]Descriptor)}
}

// Declare binds name to d in this scope, shadowing any parent binding.
func (s *Scope) Declare(name string, d Descriptor) {
	s.mu.Lock()
	s.names[name] = d
	s.mu.Unlock()
}

// Lookup resolves name in this scope or any ancestor.
func (s *Scope) Lookup(name string) (Descriptor, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		scope.mu.RLock()
		d, ok := scope.names[name]
		scope.mu.RUnlock()
		if ok {
			return d, true
		}
	}
	return nil, false
}

// Names returns the names declared directly in this scope.
func (s *Scope) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	return names
}

// Ref is a convenience for building a forward reference into this scope.
func (s *Scope) Ref(name string) *ForwardRef {
	return Ref(name, s)
}
