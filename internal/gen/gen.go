// Package gen generates descriptor registration code for annotated
// structs. It loads Go packages with go/packages, finds exported
// struct types carrying `typefit` field tags, and emits a generated
// file that registers each one at init time.
package gen

import (
	"fmt"
	"go/types"
	"os"
	"reflect"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/tools/go/packages"

	"github.com/funvibe/typefit/internal/config"
)

// Result holds the structs found during inspection.
type Result struct {
	// PkgName is the package name the generated file must declare.
	PkgName string

	// PkgPath is the full import path of the inspected package.
	PkgPath string

	// Structs is the sorted list of exported struct type names that
	// carry at least one `typefit` field tag.
	Structs []string
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the suggested file name (e.g. "typefit_gen.go").
	Filename string

	// Content is the full Go source code.
	Content string
}

// Inspect loads the package rooted at dir and collects every exported
// struct type with at least one tagged field.
func Inspect(dir string, patterns ...string) (*Result, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages matched %v", patterns)
	}

	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}

	pkg := pkgs[0]
	result := &Result{
		PkgName: pkg.Name,
		PkgPath: pkg.PkgPath,
	}

	scope := pkg.Types.Scope()
	names := scope.Names()
	sort.Strings(names)

	for _, name := range names {
		obj := scope.Lookup(name)
		if !obj.Exported() {
			continue
		}
		typeName, ok := obj.(*types.TypeName)
		if !ok {
			continue
		}
		structType, ok := typeName.Type().Underlying().(*types.Struct)
		if !ok {
			continue
		}
		if hasTaggedField(structType) {
			result.Structs = append(result.Structs, name)
		}
	}

	return result, nil
}

// hasTaggedField reports whether any exported field carries the
// registration tag.
func hasTaggedField(s *types.Struct) bool {
	for i := 0; i < s.NumFields(); i++ {
		if !s.Field(i).Exported() {
			continue
		}
		if _, ok := reflect.StructTag(s.Tag(i)).Lookup(config.TagName); ok {
			return true
		}
	}
	return false
}

// Generate renders the registration file for an inspection result.
func Generate(result *Result) (GeneratedFile, error) {
	if len(result.Structs) == 0 {
		return GeneratedFile{}, fmt.Errorf("package %s has no structs with %s tags", result.PkgPath, config.TagName)
	}

	tmpl, err := template.New("register").Parse(registerFileTemplate)
	if err != nil {
		return GeneratedFile{}, fmt.Errorf("parsing template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, result); err != nil {
		return GeneratedFile{}, fmt.Errorf("executing template: %w", err)
	}

	return GeneratedFile{
		Filename: "typefit_gen.go",
		Content:  buf.String(),
	}, nil
}

// Run inspects dir and writes the generated file to out. When out is
// empty the file is written next to the inspected package.
func Run(dir, out string, patterns ...string) (string, error) {
	result, err := Inspect(dir, patterns...)
	if err != nil {
		return "", err
	}

	file, err := Generate(result)
	if err != nil {
		return "", err
	}

	if out == "" {
		out = file.Filename
	}
	if err := os.WriteFile(out, []byte(file.Content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", out, err)
	}
	return out, nil
}

const registerFileTemplate = `// Code generated by typefit gen. DO NOT EDIT.
package {{.PkgName}}

import (
	"reflect"

	"github.com/funvibe/typefit/pkg/typefit"
)

func init() {
{{- range .Structs}}
	typefit.MustRegister(reflect.TypeOf({{.}}{}))
{{- end}}
}
`
