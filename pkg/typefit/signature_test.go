package typefit

import (
	"strings"
	"testing"

	"github.com/funvibe/typefit/internal/config"
)

func TestSigOf(t *testing.T) {
	sig, err := SigOf(func(a int, b string) (bool, error) { return a > 0 && b != "", nil })
	if err != nil {
		t.Fatalf("SigOf() error = %v", err)
	}

	if len(sig.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(sig.Params))
	}
	if sig.Params[0].Name != "arg0" || sig.Params[1].Name != "arg1" {
		t.Errorf("param names = %s, %s", sig.Params[0].Name, sig.Params[1].Name)
	}
	if got := sig.Params[0].Desc.String(); got != "int" {
		t.Errorf("arg0 = %s, want int", got)
	}
	if sig.Variadic {
		t.Errorf("signature should not be variadic")
	}
	if got := sig.Return.String(); got != "(bool, error | nil)" {
		t.Errorf("return = %s, want (bool, error | nil)", got)
	}

	table := sig.Table()
	if _, ok := table[config.ReturnKey]; !ok {
		t.Errorf("table should carry the return descriptor")
	}
	if len(table) != 3 {
		t.Errorf("table has %d entries, want 3", len(table))
	}
}

func TestSigOfVariadic(t *testing.T) {
	sig, err := SigOf(func(sep string, parts ...string) string { return "" })
	if err != nil {
		t.Fatalf("SigOf() error = %v", err)
	}
	if !sig.Variadic {
		t.Fatalf("signature should be variadic")
	}
	if got := sig.Params[1].Desc.String(); got != "string" {
		t.Errorf("variadic param annotates the element type, got %s", got)
	}
}

func TestSigOfNotFunc(t *testing.T) {
	if _, err := SigOf(42); err == nil {
		t.Errorf("SigOf(42) should fail")
	}
	if _, err := SigOf(nil); err == nil {
		t.Errorf("SigOf(nil) should fail")
	}
}

func TestCheckCall(t *testing.T) {
	add := func(a, b int) int { return a + b }

	if err := CheckCall(add, 1, 2); err != nil {
		t.Errorf("CheckCall() error = %v", err)
	}

	err := CheckCall(add, 1, "two")
	if err == nil {
		t.Fatalf("CheckCall() should reject a string argument")
	}
	if !IsTypeMismatch(err) {
		t.Errorf("error = %v, want type mismatch", err)
	}
	if !strings.Contains(err.Error(), "argument 'arg1'") {
		t.Errorf("error %q should name the failing argument", err)
	}

	if err := CheckCall(add, 1); err == nil {
		t.Errorf("CheckCall() should reject wrong arity")
	}
}

func TestCheckCallVariadic(t *testing.T) {
	join := func(sep string, parts ...string) string { return "" }

	if err := CheckCall(join, "-"); err != nil {
		t.Errorf("variadic call with no trailing args: %v", err)
	}
	if err := CheckCall(join, "-", "a", "b"); err != nil {
		t.Errorf("variadic call error = %v", err)
	}
	if err := CheckCall(join, "-", "a", 3); err == nil {
		t.Errorf("trailing args must match the element descriptor")
	}
	if err := CheckCall(join); err == nil {
		t.Errorf("missing fixed argument should fail")
	}
}

func TestGuardFunc(t *testing.T) {
	guarded, err := GuardFunc(func(a, b int) int { return a + b })
	if err != nil {
		t.Fatalf("GuardFunc() error = %v", err)
	}

	results, err := guarded(2, 3)
	if err != nil {
		t.Fatalf("guarded call error = %v", err)
	}
	if len(results) != 1 || results[0] != 5 {
		t.Errorf("results = %v, want [5]", results)
	}

	if _, err := guarded(2, "three"); err == nil {
		t.Errorf("guarded call should reject a string argument")
	}
}

func TestGuardFuncVariadic(t *testing.T) {
	guarded, err := GuardFunc(func(sep string, parts ...string) string {
		return strings.Join(parts, sep)
	})
	if err != nil {
		t.Fatalf("GuardFunc() error = %v", err)
	}

	results, err := guarded("-", "a", "b", "c")
	if err != nil {
		t.Fatalf("guarded call error = %v", err)
	}
	if results[0] != "a-b-c" {
		t.Errorf("results[0] = %v, want a-b-c", results[0])
	}
}

func TestGuardFuncChecksReturn(t *testing.T) {
	guarded, err := GuardFunc(func() (string, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("GuardFunc() error = %v", err)
	}

	results, err := guarded()
	if err != nil {
		t.Fatalf("guarded call error = %v", err)
	}
	if len(results) != 2 || results[0] != "ok" || results[1] != nil {
		t.Errorf("results = %v, want [ok <nil>]", results)
	}
}
