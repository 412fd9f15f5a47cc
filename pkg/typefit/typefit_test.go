package typefit

import (
	"reflect"
	"strings"
	"testing"
)

func TestCheck(t *testing.T) {
	intDesc := Of(reflect.TypeOf(0))
	strDesc := Of(reflect.TypeOf(""))

	tests := []struct {
		name    string
		value   any
		desc    Descriptor
		wantErr bool
	}{
		{"int ok", 3, intDesc, false},
		{"int fail", "x", intDesc, true},
		{"union ok", "x", OneOf(intDesc, strDesc), false},
		{"union fail", 1.5, OneOf(intDesc, strDesc), true},
		{"optional nil", nil, Optional(intDesc), false},
		{"literal ok", 2, LiteralOf(1, 2, 3), false},
		{"literal fail", 4, LiteralOf(1, 2, 3), true},
		{"list ok", []any{"a", "b"}, ListOf(strDesc), false},
		{"list fail", []any{"a", 1}, ListOf(strDesc), true},
		{"tuple ok", Tuple{1, "x"}, TupleOf(intDesc, strDesc), false},
		{"tuple fail", Tuple{1, 2}, TupleOf(intDesc, strDesc), true},
		{"any", struct{}{}, Any(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.value, tt.desc)
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsTypeMismatch(err) {
				t.Errorf("Check() error = %v, want type mismatch", err)
			}
		})
	}
}

func TestCheckType(t *testing.T) {
	intDesc := Of(reflect.TypeOf(0))

	if err := CheckType(reflect.TypeOf(0), intDesc); err != nil {
		t.Errorf("CheckType(int) error = %v", err)
	}
	if err := CheckType(reflect.TypeOf(""), intDesc); err == nil {
		t.Errorf("CheckType(string) should fail against int")
	}
}

func TestRegisterAndCheckInstance(t *testing.T) {
	type ticket struct {
		Title   string `typefit:"title"`
		Payload any    `typefit:"-"`
	}

	if err := Register(reflect.TypeOf(ticket{})); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := CheckInstance(ticket{Title: "ok"}); err != nil {
		t.Errorf("CheckInstance() error = %v", err)
	}

	// Explicit attrs can be stricter than what the field type promises.
	type envelope struct {
		Body any
	}
	RegisterAttrs(reflect.TypeOf(envelope{}), Attr{
		Name:       "Body",
		Desc:       Of(reflect.TypeOf("")),
		FieldIndex: []int{0},
	})

	if err := CheckInstance(envelope{Body: "text"}); err != nil {
		t.Errorf("CheckInstance() error = %v", err)
	}

	err := CheckInstance(envelope{Body: 42})
	if err == nil {
		t.Fatalf("CheckInstance() should reject non-string body")
	}
	if !strings.Contains(err.Error(), "attribute 'Body'") {
		t.Errorf("error %q should name the failing attribute", err)
	}

	if err := CheckInstance(nil); err == nil {
		t.Errorf("CheckInstance(nil) should fail")
	}
}

func TestNewCompilerIsIndependent(t *testing.T) {
	type job struct {
		Name any
	}

	c := NewCompiler()
	c.Registry().Register(reflect.TypeOf(job{}), Attr{
		Name:       "Name",
		Desc:       Of(reflect.TypeOf("")),
		FieldIndex: []int{0},
	})

	v, err := c.Compile(Of(reflect.TypeOf(job{})), true)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if err := v.Check(job{Name: 1}); err == nil {
		t.Errorf("independent compiler should see its own registration")
	}

	// The default compiler never saw the declaration.
	if err := CheckInstance(job{Name: 1}); err != nil {
		t.Errorf("default compiler should not see it: %v", err)
	}
}
