package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/typefit/internal/checker"
	"github.com/funvibe/typefit/internal/config"
	"github.com/funvibe/typefit/internal/descriptor"
	"github.com/funvibe/typefit/internal/gen"
	"github.com/funvibe/typefit/internal/protodesc"
	"github.com/funvibe/typefit/internal/schema"
)

const usageText = `Usage: typefit <command> [flags]

Commands:
  check -schema <file> -type <name> <value-file>...
        Validate YAML/JSON value files against a declared type.
        The schema is a YAML type document, or a .proto file whose
        messages become record types keyed by fully-qualified name.
  gen   -pkg <dir> [-out <file>]
        Generate descriptor registrations for tagged structs.
  help
        Show this message.

Exit codes: 0 all values conform, 1 at least one mismatch, 2 usage or
schema error.
`

func usage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "check":
		os.Exit(runCheck(os.Args[2:]))
	case "gen":
		os.Exit(runGen(os.Args[2:]))
	case "help", "-help", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	schemaPath := fs.String("schema", "", "schema file (YAML type document or .proto)")
	typeName := fs.String("type", "", "declared type name to check against")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *schemaPath == "" || *typeName == "" {
		fmt.Fprintln(os.Stderr, "check: -schema and -type are required")
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "check: no value files given")
		return 2
	}

	scope, err := loadScope(*schemaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}

	d, ok := scope.Lookup(*typeName)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: type %q is not declared in %s\n", *typeName, *schemaPath)
		return 2
	}

	compiler := checker.NewCompiler(nil)
	v, err := compiler.Compile(d, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}

	failed := false
	for _, path := range fs.Args() {
		value, err := loadValue(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 2
		}
		if err := v.Check(value); err != nil {
			failed = true
			fmt.Printf("%s %s: %s\n", colorize("FAIL", colorRed), path, err)
		} else {
			fmt.Printf("%s %s\n", colorize("ok", colorGreen), path)
		}
	}

	if failed {
		return 1
	}
	return 0
}

func runGen(args []string) int {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	pkgDir := fs.String("pkg", ".", "package directory to inspect")
	out := fs.String("out", "", "output file (default: typefit_gen.go in the package directory)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	target := *out
	if target == "" {
		target = filepath.Join(*pkgDir, "typefit_gen.go")
	}

	written, err := gen.Run(*pkgDir, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}
	fmt.Printf("Wrote %s\n", written)
	return 0
}

// loadScope reads the schema file and returns its type scope. The
// format follows from the extension: YAML/JSON type documents, or
// protobuf definitions.
func loadScope(path string) (*descriptor.Scope, error) {
	if strings.HasSuffix(path, ".proto") {
		dir, base := filepath.Split(path)
		if dir == "" {
			dir = "."
		}
		return protodesc.LoadFiles([]string{dir}, base)
	}

	for _, ext := range config.SchemaFileExtensions {
		if strings.HasSuffix(path, ext) {
			doc, err := schema.Load(path)
			if err != nil {
				return nil, err
			}
			return doc.Scope, nil
		}
	}
	return nil, fmt.Errorf("unrecognized schema extension: %s", path)
}

// loadValue decodes one value file. YAML is a superset of JSON, so one
// decoder covers both.
func loadValue(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading value file: %w", err)
	}
	var value any
	if err := yaml.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return value, nil
}

const (
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
)

func colorize(s, color string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return s
	}
	return color + s + colorReset
}
