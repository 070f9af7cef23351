package control

import (
	"strings"
	"testing"

	"pyrt/internal/limits"
	"pyrt/internal/object"
)

func ints(ns ...int64) *object.Value {
	vals := make([]*object.Value, len(ns))
	for i, n := range ns {
		vals[i] = object.Int(n)
	}
	return object.List(vals...)
}

func pairs(t *testing.T, gen *object.Value) string {
	t.Helper()
	var out []string
	for {
		v, ok, err := Next(gen)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		r, err := object.Repr(v)
		if err != nil {
			t.Fatalf("Repr: %v", err)
		}
		out = append(out, r)
	}
	return strings.Join(out, " ")
}

func yieldPair(s Scope) (*object.Value, error) {
	return object.Tuple(s["x"], s["y"]), nil
}

func TestGeneratorNestedStages(t *testing.T) {
	gen, err := NewGenerator().
		ForEach(ints(1, 2, 3)).Bind("x").
		ForEach(ints(10, 20)).Bind("y").
		Yield(yieldPair)
	if err != nil {
		t.Fatalf("Yield: %v", err)
	}
	want := "(1, 10) (1, 20) (2, 10) (2, 20) (3, 10) (3, 20)"
	if got := pairs(t, gen); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if _, ok, err := Next(gen); ok || err != nil {
		t.Fatalf("expected exhaustion to be sticky")
	}
}

func TestGeneratorOuterFilter(t *testing.T) {
	gen, err := NewGenerator().
		ForEach(ints(1, 2, 3)).Bind("x").
		Filter(func(s Scope) (bool, error) {
			n, _ := object.AsInt(s["x"])
			return n != 2, nil
		}).
		ForEach(ints(10, 20)).Bind("y").
		Yield(yieldPair)
	if err != nil {
		t.Fatalf("Yield: %v", err)
	}
	want := "(1, 10) (1, 20) (3, 10) (3, 20)"
	if got := pairs(t, gen); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestGeneratorDependentStage(t *testing.T) {
	gen, err := NewGenerator().
		ForEach(ints(1, 2, 3)).Bind("x").
		ForEachOf(func(s Scope) (*object.Value, error) {
			n, _ := object.AsInt(s["x"])
			return object.Range(0, n, 1)
		}).Bind("y").
		Yield(yieldPair)
	if err != nil {
		t.Fatalf("Yield: %v", err)
	}
	want := "(1, 0) (2, 0) (2, 1) (3, 0) (3, 1) (3, 2)"
	if got := pairs(t, gen); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestGeneratorUnpack(t *testing.T) {
	src := object.List(object.Tuple(object.Int(1), object.Str("a")), object.Tuple(object.Int(2), object.Str("b")))
	gen, err := NewGenerator().
		ForEach(src).Unpack("x", "y").
		Yield(yieldPair)
	if err != nil {
		t.Fatalf("Yield: %v", err)
	}
	if got := pairs(t, gen); got != "(1, 'a') (2, 'b')" {
		t.Fatalf("unexpected %s", got)
	}

	bad, err := NewGenerator().ForEach(ints(1)).Unpack("x", "y").Yield(yieldPair)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := Next(bad); !object.IsRaised(err, object.TypeErrorType) {
		t.Fatalf("expected TypeError unpacking an int, got %v", err)
	}
}

func TestGeneratorProtocol(t *testing.T) {
	gen, err := NewGenerator().ForEach(ints(5, 6)).Bind("x").
		Yield(func(s Scope) (*object.Value, error) { return s["x"], nil })
	if err != nil {
		t.Fatal(err)
	}
	it, err := object.Iter(gen)
	if err != nil || it != gen {
		t.Fatalf("expected __iter__ to return the generator itself")
	}
	got, err := object.CallMethod(gen, "__next__")
	if err != nil {
		t.Fatalf("__next__: %v", err)
	}
	if n, _ := object.AsInt(got); n != 5 {
		t.Fatalf("expected 5, got %d", n)
	}
	list, err := Collect(gen)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if r, _ := object.Repr(list); r != "[6]" {
		t.Fatalf("expected [6], got %s", r)
	}
	if _, err := object.CallMethod(gen, "__next__"); !object.IsStopIteration(err) {
		t.Fatalf("expected StopIteration, got %v", err)
	}
}

func TestGeneratorBudget(t *testing.T) {
	gen, err := NewGenerator().
		ForEach(ints(1, 2, 3)).Bind("x").
		WithBudget(limits.NewBudget(2)).
		Yield(func(s Scope) (*object.Value, error) { return s["x"], nil })
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, ok, err := Next(gen); !ok || err != nil {
			t.Fatalf("pull %d: expected a value, got %v", i, err)
		}
	}
	_, _, err = Next(gen)
	if !object.IsRaised(err, object.RuntimeErrorType) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if _, ok, err := Next(gen); ok || err != nil {
		t.Fatalf("expected generator finished after an error")
	}
}

func TestGeneratorBuildErrors(t *testing.T) {
	tests := []*Builder{
		NewGenerator(),
		NewGenerator().ForEach(ints(1)),
		NewGenerator().Bind("x"),
		NewGenerator().ForEach(ints(1)).Bind("x").Bind("y"),
	}
	for i, b := range tests {
		if _, err := b.Yield(yieldPair); err == nil {
			t.Fatalf("tests[%d]: expected build error", i)
		}
	}
}

func TestGeneratorWithSeed(t *testing.T) {
	gen, err := NewGenerator().
		With("k", object.Int(100)).
		ForEach(ints(1, 2)).Bind("x").
		Yield(func(s Scope) (*object.Value, error) {
			a, _ := object.AsInt(s["x"])
			b, _ := object.AsInt(s["k"])
			return object.Int(a + b), nil
		})
	if err != nil {
		t.Fatal(err)
	}
	list, err := Collect(gen)
	if err != nil {
		t.Fatal(err)
	}
	if r, _ := object.Repr(list); r != "[101, 102]" {
		t.Fatalf("unexpected %s", r)
	}
}
