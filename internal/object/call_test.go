package object

import (
	"strings"
	"testing"
)

func pairFunction(t *testing.T, dflt *Value) *Value {
	t.Helper()
	fn, err := NewFunction("pair", func(a, b *Value) (*Value, error) {
		return Tuple(a, b), nil
	}, MustSignature(Arg("a"), Default("b", dflt)))
	if err != nil {
		t.Fatalf("NewFunction: %v", err)
	}
	return fn
}

func TestBindUsesDefault(t *testing.T) {
	dflt := Str("default")
	fn := pairFunction(t, dflt)
	got := mustCall(t, fn, Int(1))
	elems, _ := Elems(got)
	if n, _ := AsInt(elems[0]); n != 1 || elems[1] != dflt {
		t.Fatalf("expected (1, default), got %s", safeRepr(got))
	}
}

func TestBindMissingArgumentNamesIt(t *testing.T) {
	fn := pairFunction(t, None)
	_, err := CallPos(fn)
	if !IsRaised(err, TypeErrorType) {
		t.Fatalf("expected TypeError, got %v", err)
	}
	if !strings.Contains(err.Error(), "'a'") {
		t.Fatalf("expected message to name a, got %v", err)
	}
}

func TestBindErrors(t *testing.T) {
	fn := pairFunction(t, None)
	tests := []struct {
		args Args
		want string
	}{
		{Pos(Int(1), Int(2), Int(3)), "takes 2 positional arguments but 3 were given"},
		{Pos(Int(1)).Kw("c", Int(2)), "unexpected keyword argument 'c'"},
		{Pos(Int(1)).Kw("a", Int(2)), "multiple values for argument 'a'"},
	}
	for i, tt := range tests {
		_, err := Call(fn, tt.args)
		if !IsRaised(err, TypeErrorType) {
			t.Fatalf("tests[%d]: expected TypeError, got %v", i, err)
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("tests[%d]: expected %q in %q", i, tt.want, err.Error())
		}
	}
}

func TestBindKeywords(t *testing.T) {
	fn := pairFunction(t, None)
	got, err := Call(fn, Args{}.Kw("b", Int(2)).Kw("a", Int(1)))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if r := safeRepr(got); r != "(1, 2)" {
		t.Fatalf("expected (1, 2), got %s", r)
	}
}

func TestBindCollectsExtras(t *testing.T) {
	fn, err := NewFunction("collect", func(a, rest, kw *Value) (*Value, error) {
		return Tuple(a, rest, kw), nil
	}, MustSignature(Names("a", "*rest", "**kw")...))
	if err != nil {
		t.Fatalf("NewFunction: %v", err)
	}
	got, err := Call(fn, Pos(Int(1), Int(2), Int(3)).Kw("x", Int(4)))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if r := safeRepr(got); r != "(1, (2, 3), {'x': 4})" {
		t.Fatalf("unexpected binding %s", r)
	}
}

func TestSignatureValidation(t *testing.T) {
	tests := []struct {
		params []Param
		want   string
	}{
		{[]Param{Arg("a"), Arg("a")}, "duplicate"},
		{[]Param{Default("a", None), Arg("b")}, "follows a parameter with a default"},
		{[]Param{StarStar("kw"), Arg("b")}, "follows **kw"},
		{[]Param{Star("a"), Star("b")}, "more than one"},
	}
	for i, tt := range tests {
		_, err := NewSignature(tt.params...)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("tests[%d]: expected %q, got %v", i, tt.want, err)
		}
	}
}

func TestInvocatorChecksShapeAndArity(t *testing.T) {
	one := MustSignature(Arg("a"))
	two := MustSignature(Arg("a"), Arg("b"))
	p1 := func(a *Value) (*Value, error) { return a, nil }

	if _, err := NewInvocator(P1, p1, one); err != nil {
		t.Fatalf("expected P1 to accept its handler: %v", err)
	}
	if _, err := NewInvocator(P2, p1, two); err == nil {
		t.Fatalf("expected shape mismatch")
	}
	if _, err := NewInvocator(P1, p1, two); err == nil {
		t.Fatalf("expected arity mismatch")
	}
	if _, err := NewInvocator(V1, func(a *Value) {}, one); err == nil {
		t.Fatalf("expected unsupported handler type")
	}
	if _, err := NewInvocator(Variadic, func(args []*Value) (*Value, error) { return None, nil }, two); err != nil {
		t.Fatalf("expected Variadic to accept any arity: %v", err)
	}
}

func TestKindArity(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{V1, 1}, {V5, 5}, {P1, 1}, {P6, 6}, {Variadic, -1},
	}
	for i, tt := range tests {
		if got := tt.kind.Arity(); got != tt.want {
			t.Fatalf("tests[%d]: %s arity expected %d, got %d", i, tt.kind, tt.want, got)
		}
	}
}

func TestVoidHandlersReturnNone(t *testing.T) {
	called := false
	fn := MustFunction("touch", func(a *Value) error {
		called = true
		return nil
	}, Arg("a"))
	if got := mustCall(t, fn, Int(1)); got != None || !called {
		t.Fatalf("expected None after calling the handler")
	}
}

func TestCallNonCallable(t *testing.T) {
	_, err := CallPos(Int(1))
	if !IsRaised(err, TypeErrorType) || !strings.Contains(err.Error(), "not callable") {
		t.Fatalf("expected not callable TypeError, got %v", err)
	}
}

func TestCallDunderCall(t *testing.T) {
	cls, err := DefineClass("Adder").
		Method("__call__", func(self, x *Value) (*Value, error) {
			n, _ := AsInt(x)
			return Int(n + 1), nil
		}, Names("self", "x")...).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	inst := mustCall(t, cls)
	if !Callable(inst) {
		t.Fatalf("expected instance to be callable")
	}
	if n, _ := AsInt(mustCall(t, inst, Int(1))); n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
}

func TestDefineFunctionStampsModule(t *testing.T) {
	mod := NewModule("pkg.tools")
	fn, err := DefineFunction(mod, "helper", func(args []*Value) (*Value, error) {
		return None, nil
	})
	if err != nil {
		t.Fatalf("DefineFunction: %v", err)
	}
	got, err := GetAttr(fn, "__module__")
	if err != nil {
		t.Fatalf("GetAttr __module__: %v", err)
	}
	if s, _ := AsString(got); s != "pkg.tools" {
		t.Fatalf("expected pkg.tools, got %q", s)
	}
	stored, err := GetAttr(mod, "helper")
	if err != nil || stored != fn {
		t.Fatalf("expected function stored on module, got %v, %v", stored, err)
	}
}

func TestDefineDecoratedProperty(t *testing.T) {
	cls := mustClass(t, "Box")
	_, err := DefineDecorated(cls, "size", PropertyType, func(self *Value) (*Value, error) {
		return Int(3), nil
	}, Arg("self"))
	if err != nil {
		t.Fatalf("DefineDecorated: %v", err)
	}
	got, err := GetAttr(mustCall(t, cls), "size")
	if err != nil {
		t.Fatalf("GetAttr: %v", err)
	}
	if n, _ := AsInt(got); n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}
}
