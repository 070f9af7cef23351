package stdlib

import (
	"bytes"
	"strings"
	"testing"

	"pyrt/internal/control"
	"pyrt/internal/module"
	"pyrt/internal/object"
)

func setup(t *testing.T) (*module.Importer, *bytes.Buffer) {
	t.Helper()
	imp := module.NewImporter()
	var out bytes.Buffer
	Install(imp, Options{Stdout: &out, Path: []string{"lib"}})
	return imp, &out
}

func builtin(t *testing.T, imp *module.Importer, name string) *object.Value {
	t.Helper()
	vals, err := imp.ImportFrom("builtins", name)
	if err != nil {
		t.Fatalf("from builtins import %s: %v", name, err)
	}
	return vals[0]
}

func call(t *testing.T, fn *object.Value, args object.Args) *object.Value {
	t.Helper()
	v, err := object.Call(fn, args)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	return v
}

func repr(t *testing.T, v *object.Value) string {
	t.Helper()
	r, err := object.Repr(v)
	if err != nil {
		t.Fatalf("Repr: %v", err)
	}
	return r
}

func ints(ns ...int64) *object.Value {
	vals := make([]*object.Value, len(ns))
	for i, n := range ns {
		vals[i] = object.Int(n)
	}
	return object.List(vals...)
}

func TestSysExposesImporterViews(t *testing.T) {
	imp, _ := setup(t)
	sys, err := imp.ImportAs("sys")
	if err != nil {
		t.Fatalf("import sys: %v", err)
	}
	modules, _ := object.GetAttr(sys, "modules")
	if modules != imp.ModulesValue() {
		t.Fatalf("expected sys.modules to be the importer's table")
	}
	metaPath, _ := object.GetAttr(sys, "meta_path")
	if metaPath != imp.MetaPathValue() {
		t.Fatalf("expected sys.meta_path to be the importer's finder list")
	}
	ok, err := object.Contains(modules, object.Str("sys"))
	if err != nil || !ok {
		t.Fatalf("expected sys in sys.modules")
	}
	path, _ := object.GetAttr(sys, "path")
	if got := repr(t, path); got != "['lib']" {
		t.Fatalf("expected ['lib'], got %s", got)
	}
}

func TestDisabledModules(t *testing.T) {
	imp := module.NewImporter()
	Install(imp, Options{Disabled: func(name string) bool { return name == "io" }})
	if _, err := imp.ImportAs("io"); !object.IsRaised(err, object.ModuleNotFoundErrorType) {
		t.Fatalf("expected ModuleNotFoundError for a disabled module, got %v", err)
	}
	if _, err := imp.ImportAs("unicodedata"); err != nil {
		t.Fatalf("import unicodedata: %v", err)
	}
}

func TestIsInstanceAcceptsTuple(t *testing.T) {
	imp, _ := setup(t)
	isinstance := builtin(t, imp, "isinstance")
	tests := []struct {
		obj  *object.Value
		info *object.Value
		want *object.Value
	}{
		{object.Int(1), object.IntType, object.True},
		{object.True, object.IntType, object.True},
		{object.Str("a"), object.Tuple(object.IntType, object.StrType), object.True},
		{object.None, object.Tuple(object.IntType, object.StrType), object.False},
	}
	for i, tt := range tests {
		if got := call(t, isinstance, object.Pos(tt.obj, tt.info)); got != tt.want {
			t.Fatalf("tests[%d]: expected %s, got %s", i, tt.want, got)
		}
	}
	_, err := object.CallPos(isinstance, object.Int(1), object.Int(2))
	if !object.IsRaised(err, object.TypeErrorType) {
		t.Fatalf("expected TypeError, got %v", err)
	}
}

func TestGetAttrDefault(t *testing.T) {
	imp, _ := setup(t)
	getattr := builtin(t, imp, "getattr")
	obj := object.NewInstance(object.ObjectType, nil)
	if got := call(t, getattr, object.Pos(obj, object.Str("nope"), object.None)); got != object.None {
		t.Fatalf("expected the default, got %s", got)
	}
	_, err := object.CallPos(getattr, obj, object.Str("nope"))
	if !object.IsRaised(err, object.AttributeErrorType) {
		t.Fatalf("expected AttributeError, got %v", err)
	}
}

func TestNextDefault(t *testing.T) {
	imp, _ := setup(t)
	next := builtin(t, imp, "next")
	it, _ := object.Iter(ints(7))
	if n, _ := object.AsInt(call(t, next, object.Pos(it))); n != 7 {
		t.Fatalf("expected 7, got %d", n)
	}
	if got := call(t, next, object.Pos(it, object.Str("done"))); repr(t, got) != "'done'" {
		t.Fatalf("expected 'done', got %s", got)
	}
	if _, err := object.CallPos(next, it); !object.IsStopIteration(err) {
		t.Fatalf("expected StopIteration, got %v", err)
	}
}

func TestSorted(t *testing.T) {
	imp, _ := setup(t)
	sorted := builtin(t, imp, "sorted")
	neg := object.MustFunction("neg", func(v *object.Value) (*object.Value, error) {
		n, _ := object.AsInt(v)
		return object.Int(-n), nil
	}, object.Arg("v"))

	tests := []struct {
		args object.Args
		want string
	}{
		{object.Pos(ints(3, 1, 2)), "[1, 2, 3]"},
		{object.Pos(ints(3, 1, 2)).Kw("reverse", object.True), "[3, 2, 1]"},
		{object.Pos(ints(3, 1, 2)).Kw("key", neg), "[3, 2, 1]"},
		{object.Pos(object.Tuple()), "[]"},
	}
	for i, tt := range tests {
		if got := repr(t, call(t, sorted, tt.args)); got != tt.want {
			t.Fatalf("tests[%d]: expected %s, got %s", i, tt.want, got)
		}
	}

	_, err := object.CallPos(sorted, object.List(object.Int(1), object.Str("a")))
	if !object.IsRaised(err, object.TypeErrorType) {
		t.Fatalf("expected TypeError for mixed types, got %v", err)
	}
}

func TestSortedIsStable(t *testing.T) {
	imp, _ := setup(t)
	sorted := builtin(t, imp, "sorted")
	first := object.MustFunction("first", func(v *object.Value) (*object.Value, error) {
		return object.GetItem(v, object.Int(0))
	}, object.Arg("v"))
	pairs := object.List(
		object.Tuple(object.Int(1), object.Str("b")),
		object.Tuple(object.Int(0), object.Str("z")),
		object.Tuple(object.Int(1), object.Str("a")),
	)
	got := repr(t, call(t, sorted, object.Pos(pairs).Kw("key", first)))
	if got != "[(0, 'z'), (1, 'b'), (1, 'a')]" {
		t.Fatalf("unexpected order %s", got)
	}
}

func TestMax(t *testing.T) {
	imp, _ := setup(t)
	max := builtin(t, imp, "max")
	if n, _ := object.AsInt(call(t, max, object.Pos(ints(2, 9, 4)))); n != 9 {
		t.Fatalf("expected 9, got %d", n)
	}
	if got := call(t, max, object.Pos(object.List()).Kw("default", object.None)); got != object.None {
		t.Fatalf("expected the default, got %s", got)
	}
	_, err := object.CallPos(max, object.List())
	if !object.IsRaised(err, object.ValueErrorType) {
		t.Fatalf("expected ValueError, got %v", err)
	}
	if !strings.Contains(err.Error(), "max() iterable argument is empty") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestAnyAll(t *testing.T) {
	imp, _ := setup(t)
	anyFn := builtin(t, imp, "any")
	allFn := builtin(t, imp, "all")
	tests := []struct {
		fn   *object.Value
		in   *object.Value
		want *object.Value
	}{
		{anyFn, ints(0, 0, 1), object.True},
		{anyFn, ints(), object.False},
		{allFn, ints(1, 2), object.True},
		{allFn, ints(1, 0), object.False},
		{allFn, ints(), object.True},
	}
	for i, tt := range tests {
		if got := call(t, tt.fn, object.Pos(tt.in)); got != tt.want {
			t.Fatalf("tests[%d]: expected %s, got %s", i, tt.want, got)
		}
	}
}

func TestEnumerateAndZip(t *testing.T) {
	imp, _ := setup(t)
	list := func(v *object.Value) string {
		vals, err := object.ToSlice(v)
		if err != nil {
			t.Fatalf("ToSlice: %v", err)
		}
		return repr(t, object.List(vals...))
	}
	enumerate := builtin(t, imp, "enumerate")
	got := list(call(t, enumerate, object.Pos(object.List(object.Str("a"), object.Str("b"))).Kw("start", object.Int(1))))
	if got != "[(1, 'a'), (2, 'b')]" {
		t.Fatalf("unexpected enumerate %s", got)
	}
	zip := builtin(t, imp, "zip")
	got = list(call(t, zip, object.Pos(ints(1, 2, 3), object.List(object.Str("x"), object.Str("y")))))
	if got != "[(1, 'x'), (2, 'y')]" {
		t.Fatalf("unexpected zip %s", got)
	}
}

func TestPrint(t *testing.T) {
	imp, out := setup(t)
	print := builtin(t, imp, "print")
	call(t, print, object.Pos(object.Str("a"), object.Int(1)))
	call(t, print, object.Pos(object.Str("b")).Kw("sep", object.Str("-")).Kw("end", object.Str("")))
	call(t, print, object.Pos(object.Str("c"), object.Str("d")).Kw("sep", object.None).Kw("end", object.None))
	if out.String() != "a 1\nbc d\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	_, err := object.Call(print, object.Pos(object.Str("e")).Kw("sep", object.Int(1)))
	if !object.IsRaised(err, object.TypeErrorType) {
		t.Fatalf("expected TypeError for a non-str sep, got %v", err)
	}

	ioMod, err := imp.ImportAs("io")
	if err != nil {
		t.Fatalf("import io: %v", err)
	}
	stringIO, _ := object.GetAttr(ioMod, "StringIO")
	buf := call(t, stringIO, object.Args{})
	call(t, print, object.Pos(object.Str("x"), object.Str("y")).Kw("file", buf))
	if got, _ := object.AsString(call(t, mustAttr(t, buf, "getvalue"), object.Args{})); got != "x y\n" {
		t.Fatalf("expected print into StringIO, got %q", got)
	}
}

func mustAttr(t *testing.T, v *object.Value, name string) *object.Value {
	t.Helper()
	a, err := object.GetAttr(v, name)
	if err != nil {
		t.Fatalf("GetAttr %s: %v", name, err)
	}
	return a
}

func TestDunderImport(t *testing.T) {
	imp, _ := setup(t)
	importFn := builtin(t, imp, "__import__")
	top := call(t, importFn, object.Pos(object.Str("importlib.machinery")))
	if object.ModuleName(top) != "importlib" {
		t.Fatalf("expected importlib, got %s", object.ModuleName(top))
	}
	leaf := call(t, importFn, object.Pos(object.Str("importlib.machinery")).Kw("fromlist", object.Tuple(object.Str("ModuleSpec"))))
	if object.ModuleName(leaf) != "importlib.machinery" {
		t.Fatalf("expected importlib.machinery, got %s", object.ModuleName(leaf))
	}
	spec := mustAttr(t, leaf, "ModuleSpec")
	if spec != module.ModuleSpecType {
		t.Fatalf("expected the ModuleSpec class")
	}
	_, err := object.Call(importFn, object.Pos(object.Str("sys")).Kw("level", object.Int(1)))
	if !object.IsRaised(err, object.ImportErrorType) {
		t.Fatalf("expected ImportError for a relative import, got %v", err)
	}
}

func TestImportModule(t *testing.T) {
	imp, _ := setup(t)
	importlib, err := imp.ImportAs("importlib")
	if err != nil {
		t.Fatalf("import importlib: %v", err)
	}
	mod := call(t, mustAttr(t, importlib, "import_module"), object.Pos(object.Str("importlib.machinery")))
	if object.ModuleName(mod) != "importlib.machinery" {
		t.Fatalf("expected the leaf module, got %s", object.ModuleName(mod))
	}
}

func TestTypesModule(t *testing.T) {
	imp, _ := setup(t)
	types, err := imp.ImportAs("types")
	if err != nil {
		t.Fatalf("import types: %v", err)
	}
	sys, _ := imp.ImportAs("sys")
	moduleType := mustAttr(t, types, "ModuleType")
	if !object.IsInstance(sys, moduleType) {
		t.Fatalf("expected sys to be a ModuleType")
	}
	gen := mustAttr(t, types, "GeneratorType")
	if name := gen.Name(); name != "generator" {
		t.Fatalf("expected generator, got %s", name)
	}
}

func TestStringIO(t *testing.T) {
	imp, _ := setup(t)
	ioMod, _ := imp.ImportAs("io")
	stringIO := mustAttr(t, ioMod, "StringIO")

	buf := call(t, stringIO, object.Pos(object.Str("ab")))
	n := call(t, mustAttr(t, buf, "write"), object.Pos(object.Str("\u00e7d")))
	if got, _ := object.AsInt(n); got != 2 {
		t.Fatalf("expected 2 characters written, got %d", got)
	}
	if got, _ := object.AsString(call(t, mustAttr(t, buf, "getvalue"), object.Args{})); got != "ab\u00e7d" {
		t.Fatalf("expected ab\u00e7d, got %q", got)
	}
	_, err := object.CallMethod(buf, "write", object.Int(1))
	if !object.IsRaised(err, object.TypeErrorType) {
		t.Fatalf("expected TypeError, got %v", err)
	}

	sub, err := object.DefineClass("Capture", stringIO).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	inst := call(t, sub, object.Args{})
	if _, err := object.CallMethod(inst, "write", object.Str("z")); err != nil {
		t.Fatalf("subclass write: %v", err)
	}
}

func TestStringIOAsContextManager(t *testing.T) {
	imp, _ := setup(t)
	ioMod, _ := imp.ImportAs("io")
	buf := call(t, mustAttr(t, ioMod, "StringIO"), object.Args{})
	err := control.With(buf, func(f *object.Value) error {
		if f != buf {
			t.Fatalf("expected __enter__ to return the stream")
		}
		_, err := object.CallMethod(f, "write", object.Str("inside"))
		return err
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if closed := mustAttr(t, buf, "closed"); closed != object.True {
		t.Fatalf("expected the stream closed on exit, got %s", closed)
	}
	for i, name := range []string{"getvalue", "__enter__"} {
		if _, err := object.CallMethod(buf, name); !object.IsRaised(err, object.ValueErrorType) {
			t.Fatalf("tests[%d]: expected ValueError from %s, got %v", i, name, err)
		}
	}
	if _, err := object.CallMethod(buf, "write", object.Str("late")); !object.IsRaised(err, object.ValueErrorType) {
		t.Fatalf("expected ValueError after close, got %v", err)
	}
}

func TestBytes(t *testing.T) {
	imp, _ := setup(t)
	bytesCls := builtin(t, imp, "bytes")
	b := call(t, bytesCls, object.Pos(ints(104, 105, 0, 39)))
	if got := repr(t, b); got != `b'hi\x00\''` {
		t.Fatalf("unexpected repr %s", got)
	}
	if n, err := object.Len(b); err != nil || n != 4 {
		t.Fatalf("expected len 4, got %d (%v)", n, err)
	}
	vals, err := object.ToSlice(b)
	if err != nil {
		t.Fatalf("ToSlice: %v", err)
	}
	if got := repr(t, object.List(vals...)); got != "[104, 105, 0, 39]" {
		t.Fatalf("unexpected iteration %s", got)
	}
	if v, err := object.GetItem(b, object.Int(-1)); err != nil || repr(t, v) != "39" {
		t.Fatalf("expected 39, got %v (%v)", v, err)
	}
	same := call(t, bytesCls, object.Pos(ints(104, 105, 0, 39)))
	if eq, err := object.Equal(b, same); err != nil || !eq {
		t.Fatalf("expected equal bytes, got %v (%v)", eq, err)
	}
	if got := repr(t, call(t, bytesCls, object.Args{})); got != "b''" {
		t.Fatalf("expected b'', got %s", got)
	}

	tests := []struct {
		in  *object.Value
		cls *object.Value
	}{
		{ints(256), object.ValueErrorType},
		{ints(-1), object.ValueErrorType},
		{object.List(object.Str("a")), object.TypeErrorType},
		{object.Int(3), object.TypeErrorType},
	}
	for i, tt := range tests {
		if _, err := object.CallPos(bytesCls, tt.in); !object.IsRaised(err, tt.cls) {
			t.Fatalf("tests[%d]: expected %s, got %v", i, tt.cls.Name(), err)
		}
	}
}

func TestOperator(t *testing.T) {
	imp, _ := setup(t)
	operator, err := imp.ImportAs("operator")
	if err != nil {
		t.Fatalf("import operator: %v", err)
	}
	itemgetter := mustAttr(t, operator, "itemgetter")
	words := object.Tuple(object.Str("Hello"), object.Str("World"), object.Str("Python"), object.Str("Java"))
	third := call(t, itemgetter, object.Pos(object.Int(3)))
	if got := repr(t, call(t, third, object.Pos(words))); got != "'Java'" {
		t.Fatalf("expected 'Java', got %s", got)
	}
	if got := repr(t, third); got != "operator.itemgetter(3)" {
		t.Fatalf("unexpected repr %s", got)
	}
	pair := call(t, itemgetter, object.Pos(object.Int(0), object.Int(-1)))
	if got := repr(t, call(t, pair, object.Pos(words))); got != "('Hello', 'Java')" {
		t.Fatalf("unexpected pair %s", got)
	}
	if _, err := object.CallPos(third, object.Tuple()); !object.IsRaised(err, object.IndexErrorType) {
		t.Fatalf("expected IndexError, got %v", err)
	}
	if _, err := object.CallPos(itemgetter); !object.IsRaised(err, object.TypeErrorType) {
		t.Fatalf("expected TypeError without items, got %v", err)
	}

	sorted := builtin(t, imp, "sorted")
	byFirst := call(t, itemgetter, object.Pos(object.Int(0)))
	pairs := object.List(object.Tuple(object.Int(2), object.Str("b")), object.Tuple(object.Int(1), object.Str("a")))
	if got := repr(t, call(t, sorted, object.Pos(pairs).Kw("key", byFirst))); got != "[(1, 'a'), (2, 'b')]" {
		t.Fatalf("unexpected order %s", got)
	}

	attrgetter := mustAttr(t, operator, "attrgetter")
	version := call(t, attrgetter, object.Pos(object.Str("modules.__class__")))
	sys, _ := imp.ImportAs("sys")
	if got := call(t, version, object.Pos(sys)); got != imp.ModulesValue().Class() {
		t.Fatalf("expected the class of sys.modules, got %s", got)
	}

	le := mustAttr(t, operator, "le")
	if got := call(t, le, object.Pos(object.Int(2), object.Int(2))); got != object.True {
		t.Fatalf("expected 2 <= 2, got %s", got)
	}
}

func TestUnicodedata(t *testing.T) {
	imp, _ := setup(t)
	ud, err := imp.ImportAs("unicodedata")
	if err != nil {
		t.Fatalf("import unicodedata: %v", err)
	}
	normalize := mustAttr(t, ud, "normalize")
	tests := []struct {
		form string
		in   string
		want string
	}{
		{"NFC", "e\u0301", "\u00e9"},
		{"NFD", "\u00e9", "e\u0301"},
		{"NFKC", "\ufb01", "fi"},
	}
	for i, tt := range tests {
		got, _ := object.AsString(call(t, normalize, object.Pos(object.Str(tt.form), object.Str(tt.in))))
		if got != tt.want {
			t.Fatalf("tests[%d]: expected %q, got %q", i, tt.want, got)
		}
	}
	isNormalized := mustAttr(t, ud, "is_normalized")
	if got := call(t, isNormalized, object.Pos(object.Str("NFC"), object.Str("e\u0301"))); got != object.False {
		t.Fatalf("expected False, got %s", got)
	}
	_, err = object.CallPos(normalize, object.Str("NFX"), object.Str("a"))
	if !object.IsRaised(err, object.ValueErrorType) {
		t.Fatalf("expected ValueError, got %v", err)
	}
}

func TestRangeAndLen(t *testing.T) {
	imp, _ := setup(t)
	rangeCls := builtin(t, imp, "range")
	lenFn := builtin(t, imp, "len")
	tests := []struct {
		args []*object.Value
		want int64
	}{
		{[]*object.Value{object.Int(5)}, 5},
		{[]*object.Value{object.Int(1), object.Int(7), object.Int(2)}, 3},
		{[]*object.Value{object.Int(5), object.Int(1)}, 0},
	}
	for i, tt := range tests {
		r := call(t, rangeCls, object.Pos(tt.args...))
		if n, _ := object.AsInt(call(t, lenFn, object.Pos(r))); n != tt.want {
			t.Fatalf("tests[%d]: expected %d, got %d", i, tt.want, n)
		}
	}
}
