// Package schema loads type descriptors from YAML documents.
//
// A document declares named types (records, aliases, unions, literal
// sets) that may reference each other by name, forwards included: every
// reference compiles to a forward reference into the document's scope,
// so declaration order never matters and self-referential types work
// unchanged.
package schema

import (
	"fmt"
	"os"
	"reflect"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/typefit/internal/config"
	"github.com/funvibe/typefit/internal/descriptor"
)

// document is the top-level YAML layout.
type document struct {
	// ID identifies the document in error messages and reports.
	// Defaults to a fresh UUID when omitted.
	ID string `yaml:"id,omitempty"`

	// Types maps a type name to its declaration.
	Types map[string]*typeDecl `yaml:"types"`
}

// typeDecl declares one named type. Exactly one member must be set.
type typeDecl struct {
	// Alias declares a distinct named alias of another type.
	Alias *typeExpr `yaml:"alias,omitempty"`

	// Record declares a mapping with a fixed field set.
	Record *recordDecl `yaml:"record,omitempty"`

	// Union declares an ordered choice of alternatives.
	Union []*typeExpr `yaml:"union,omitempty"`

	// Literal declares a finite set of allowed values.
	Literal []any `yaml:"literal,omitempty"`
}

// recordDecl declares a record's fields and completeness policy.
type recordDecl struct {
	// Total requires every declared field to be present.
	Total bool `yaml:"total,omitempty"`

	// Fields maps field names to their type expressions.
	Fields map[string]*typeExpr `yaml:"fields"`
}

// typeExpr is one type expression. Exactly one shape member must be
// set; Optional widens the result to a union with nil.
type typeExpr struct {
	// Type names a builtin: any, nil, bool, int, float, string, bytes,
	// callable.
	Type string `yaml:"type,omitempty"`

	// Ref names another type declared in the same document.
	Ref string `yaml:"ref,omitempty"`

	// List declares a collection with the given element type.
	List *typeExpr `yaml:"list,omitempty"`

	// Set declares a collection of unique elements.
	Set *typeExpr `yaml:"set,omitempty"`

	// Map declares key and value types.
	Map *mapExpr `yaml:"map,omitempty"`

	// Tuple declares a fixed-arity tuple, one entry per position.
	// An explicit empty list is the empty tuple form.
	Tuple []*typeExpr `yaml:"tuple,omitempty"`

	// TupleOf declares a variadic tuple over one element type.
	TupleOf *typeExpr `yaml:"tupleOf,omitempty"`

	// Union declares an ordered choice of alternatives.
	Union []*typeExpr `yaml:"union,omitempty"`

	// Literal declares a finite set of allowed values.
	Literal []any `yaml:"literal,omitempty"`

	// Optional widens the expression to also accept nil.
	Optional bool `yaml:"optional,omitempty"`
}

type mapExpr struct {
	Key   *typeExpr `yaml:"key,omitempty"`
	Value *typeExpr `yaml:"value,omitempty"`
}

// Document is a loaded schema: a scope holding every declared type.
type Document struct {
	ID    string
	Scope *descriptor.Scope

	names []string
}

// Load reads and parses a schema file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return doc, nil
}

// Parse builds a Document from YAML bytes.
func Parse(data []byte) (*Document, error) {
	var raw document
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	if len(raw.Types) == 0 {
		return nil, fmt.Errorf("schema declares no types")
	}

	id := raw.ID
	if id == "" {
		id = uuid.NewString()
	}

	doc := &Document{ID: id, Scope: descriptor.NewScope(nil)}
	for name := range raw.Types {
		doc.names = append(doc.names, name)
	}
	sort.Strings(doc.names)

	for _, name := range doc.names {
		d, err := buildDecl(name, raw.Types[name], doc.Scope)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", name, err)
		}
		doc.Scope.Declare(name, d)
	}
	return doc, nil
}

// Type returns the descriptor declared under name.
func (d *Document) Type(name string) (descriptor.Descriptor, bool) {
	return d.Scope.Lookup(name)
}

// Names returns the declared type names, sorted.
func (d *Document) Names() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

func buildDecl(name string, decl *typeDecl, scope *descriptor.Scope) (descriptor.Descriptor, error) {
	if decl == nil {
		return nil, fmt.Errorf("empty declaration")
	}
	set := 0
	if decl.Alias != nil {
		set++
	}
	if decl.Record != nil {
		set++
	}
	if decl.Union != nil {
		set++
	}
	if decl.Literal != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("declaration must set exactly one of alias, record, union, literal")
	}

	switch {
	case decl.Alias != nil:
		underlying, err := buildExpr(decl.Alias, scope)
		if err != nil {
			return nil, err
		}
		return descriptor.NewTypeOf(name, underlying), nil

	case decl.Record != nil:
		if decl.Record.Fields == nil {
			return nil, fmt.Errorf("record with no field map")
		}
		fieldNames := make([]string, 0, len(decl.Record.Fields))
		for fn := range decl.Record.Fields {
			fieldNames = append(fieldNames, fn)
		}
		sort.Strings(fieldNames)
		fields := make([]descriptor.Field, 0, len(fieldNames))
		for _, fn := range fieldNames {
			fd, err := buildExpr(decl.Record.Fields[fn], scope)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", fn, err)
			}
			fields = append(fields, descriptor.Field{Name: fn, Desc: fd})
		}
		return descriptor.RecordOf(name, decl.Record.Total, fields...), nil

	case decl.Union != nil:
		members, err := buildExprs(decl.Union, scope)
		if err != nil {
			return nil, err
		}
		return descriptor.OneOf(members...), nil

	default:
		return descriptor.LiteralOf(decl.Literal...), nil
	}
}

func buildExprs(exprs []*typeExpr, scope *descriptor.Scope) ([]descriptor.Descriptor, error) {
	out := make([]descriptor.Descriptor, len(exprs))
	for i, e := range exprs {
		d, err := buildExpr(e, scope)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func buildExpr(e *typeExpr, scope *descriptor.Scope) (descriptor.Descriptor, error) {
	if e == nil {
		return nil, fmt.Errorf("empty type expression")
	}

	d, err := buildShape(e, scope)
	if err != nil {
		return nil, err
	}
	if e.Optional {
		return descriptor.Optional(d), nil
	}
	return d, nil
}

func buildShape(e *typeExpr, scope *descriptor.Scope) (descriptor.Descriptor, error) {
	set := 0
	if e.Type != "" {
		set++
	}
	if e.Ref != "" {
		set++
	}
	if e.List != nil {
		set++
	}
	if e.Set != nil {
		set++
	}
	if e.Map != nil {
		set++
	}
	if e.Tuple != nil {
		set++
	}
	if e.TupleOf != nil {
		set++
	}
	if e.Union != nil {
		set++
	}
	if e.Literal != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("type expression must set exactly one shape, has %d", set)
	}

	switch {
	case e.Type != "":
		return builtin(e.Type)

	case e.Ref != "":
		return scope.Ref(e.Ref), nil

	case e.List != nil:
		elem, err := buildExpr(e.List, scope)
		if err != nil {
			return nil, err
		}
		return descriptor.ListOf(elem), nil

	case e.Set != nil:
		elem, err := buildExpr(e.Set, scope)
		if err != nil {
			return nil, err
		}
		return descriptor.SetOf(elem), nil

	case e.Map != nil:
		var key, value descriptor.Descriptor
		var err error
		if e.Map.Key != nil {
			if key, err = buildExpr(e.Map.Key, scope); err != nil {
				return nil, err
			}
		}
		if e.Map.Value != nil {
			if value, err = buildExpr(e.Map.Value, scope); err != nil {
				return nil, err
			}
		}
		return descriptor.MapOf(key, value), nil

	case e.Tuple != nil:
		if len(e.Tuple) == 0 {
			return descriptor.EmptyTuple(), nil
		}
		elems, err := buildExprs(e.Tuple, scope)
		if err != nil {
			return nil, err
		}
		return descriptor.TupleOf(elems...), nil

	case e.TupleOf != nil:
		elem, err := buildExpr(e.TupleOf, scope)
		if err != nil {
			return nil, err
		}
		return descriptor.TupleEllipsis(elem), nil

	case e.Union != nil:
		members, err := buildExprs(e.Union, scope)
		if err != nil {
			return nil, err
		}
		return descriptor.OneOf(members...), nil

	default:
		return descriptor.LiteralOf(e.Literal...), nil
	}
}

var builtinTypes = map[string]descriptor.Descriptor{
	config.AnyTypeName:      descriptor.Any(),
	config.NilTypeName:      descriptor.Nil(),
	config.BoolTypeName:     descriptor.Of(reflect.TypeOf(false)),
	config.IntTypeName:      descriptor.Of(reflect.TypeOf(0)),
	config.FloatTypeName:    descriptor.Of(reflect.TypeOf(0.0)),
	config.StringTypeName:   descriptor.Of(reflect.TypeOf("")),
	config.BytesTypeName:    descriptor.Of(reflect.TypeOf([]byte(nil))),
	config.CallableTypeName: descriptor.Func(),
}

func builtin(name string) (descriptor.Descriptor, error) {
	if d, ok := builtinTypes[name]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("unknown builtin type %q", name)
}
