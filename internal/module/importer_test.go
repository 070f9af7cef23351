package module

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pyrt/internal/object"
)

func TestImportNonPackage(t *testing.T) {
	imp := NewImporter()
	imp.RegisterModule("pkg", nil)
	imp.RegisterModule("pkg.sub", nil)

	_, err := imp.ImportAs("pkg.sub")
	if !object.IsRaised(err, object.ModuleNotFoundErrorType) {
		t.Fatalf("expected ModuleNotFoundError, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "'pkg.sub'") || !strings.Contains(msg, "'pkg' is not a package") {
		t.Fatalf("expected both names in message, got %q", msg)
	}
}

func TestImportSubmodule(t *testing.T) {
	imp := NewImporter()
	imp.RegisterPackage("pkg", nil)
	imp.RegisterModule("pkg.sub", func(mod *object.Value) error {
		return object.SetAttr(mod, "answer", object.Int(42))
	})

	sub, err := imp.ImportAs("pkg.sub")
	if err != nil {
		t.Fatalf("ImportAs: %v", err)
	}
	pkg, ok := imp.Lookup("pkg")
	if !ok {
		t.Fatalf("expected pkg in the module table")
	}
	if got, ok := imp.Lookup("pkg.sub"); !ok || got != sub {
		t.Fatalf("expected pkg.sub in the module table")
	}
	attr, err := object.GetAttr(pkg, "sub")
	if err != nil || attr != sub {
		t.Fatalf("expected pkg.sub attribute on pkg, got %v, %v", attr, err)
	}
	if pkgName, _ := object.AsString(sub.Attrs().Get("__package__")); pkgName != "pkg" {
		t.Fatalf("expected __package__ pkg, got %q", pkgName)
	}
	spec, err := object.GetAttr(sub, "__spec__")
	if err != nil || spec.Class() != ModuleSpecType {
		t.Fatalf("expected a ModuleSpec, got %v, %v", spec, err)
	}
}

func TestImportMissing(t *testing.T) {
	imp := NewImporter()
	_, err := imp.ImportAs("nowhere")
	if !object.IsRaised(err, object.ModuleNotFoundErrorType) || !object.IsRaised(err, object.ImportErrorType) {
		t.Fatalf("expected ModuleNotFoundError, got %v", err)
	}
	if err.Error() != "ModuleNotFoundError: No module named 'nowhere'" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if _, err := imp.ImportAs("a..b"); !object.IsRaised(err, object.ValueErrorType) {
		t.Fatalf("expected ValueError for an empty component, got %v", err)
	}
}

func TestImportRunsExecOnce(t *testing.T) {
	imp := NewImporter()
	var runs int32
	imp.RegisterModule("once", func(*object.Value) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := imp.ImportAs("once"); err != nil {
				t.Errorf("ImportAs: %v", err)
			}
		}()
	}
	wg.Wait()
	if runs != 1 {
		t.Fatalf("expected one exec, got %d", runs)
	}
}

func TestExecFailureUnregisters(t *testing.T) {
	imp := NewImporter()
	imp.RegisterModule("broken", func(*object.Value) error {
		return object.Raisef(object.RuntimeErrorType, "boom")
	})
	if _, err := imp.ImportAs("broken"); !object.IsRaised(err, object.RuntimeErrorType) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if _, ok := imp.Lookup("broken"); ok {
		t.Fatalf("expected failed module removed from the table")
	}
}

func TestImportFrom(t *testing.T) {
	imp := NewImporter()
	imp.RegisterPackage("pkg", func(mod *object.Value) error {
		return object.SetAttr(mod, "x", object.Int(1))
	})
	imp.RegisterModule("pkg.tools", nil)

	vals, err := imp.ImportFrom("pkg", "x", "tools")
	if err != nil {
		t.Fatalf("ImportFrom: %v", err)
	}
	if n, _ := object.AsInt(vals[0]); n != 1 {
		t.Fatalf("expected x=1, got %d", n)
	}
	if object.ModuleName(vals[1]) != "pkg.tools" {
		t.Fatalf("expected submodule pkg.tools, got %s", object.ModuleName(vals[1]))
	}

	_, err = imp.ImportFrom("pkg", "nope")
	if !object.IsRaised(err, object.ImportErrorType) || object.IsRaised(err, object.ModuleNotFoundErrorType) {
		t.Fatalf("expected plain ImportError, got %v", err)
	}
	if !strings.Contains(err.Error(), "cannot import name 'nope' from 'pkg'") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestImportFromPropagatesOtherErrors(t *testing.T) {
	imp := NewImporter()
	imp.RegisterPackage("pkg", nil)
	imp.RegisterModule("pkg.bad", func(*object.Value) error {
		return object.Raisef(object.ValueErrorType, "bad body")
	})
	if _, err := imp.ImportFrom("pkg", "bad"); !object.IsRaised(err, object.ValueErrorType) {
		t.Fatalf("expected the body's ValueError, got %v", err)
	}
}

func TestImportModuleReturnsTop(t *testing.T) {
	imp := NewImporter()
	imp.RegisterPackage("a", nil)
	imp.RegisterPackage("a.b", nil)
	imp.RegisterModule("a.b.c", nil)

	top, err := imp.ImportModule("a.b.c")
	if err != nil {
		t.Fatalf("ImportModule: %v", err)
	}
	if object.ModuleName(top) != "a" {
		t.Fatalf("expected a, got %s", object.ModuleName(top))
	}
	for i, name := range []string{"a", "a.b", "a.b.c"} {
		if _, ok := imp.Lookup(name); !ok {
			t.Fatalf("tests[%d]: expected %s in the table", i, name)
		}
	}
}

func TestImportBindsOnTarget(t *testing.T) {
	imp := NewImporter()
	imp.RegisterPackage("a", nil)
	imp.RegisterModule("a.b", func(mod *object.Value) error {
		return object.SetAttr(mod, "v", object.Int(3))
	})
	target := CreateModule("main")
	if _, err := imp.Import(target, "a.b"); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if _, err := object.GetAttr(target, "a"); err != nil {
		t.Fatalf("expected a bound on target: %v", err)
	}
	if _, err := imp.ImportFromInto(target, "a.b", "v"); err != nil {
		t.Fatalf("ImportFromInto: %v", err)
	}
	v, _ := object.GetAttr(target, "v")
	if n, _ := object.AsInt(v); n != 3 {
		t.Fatalf("expected v=3, got %d", n)
	}
}

func TestModuleTableIsSeenByLoaders(t *testing.T) {
	imp := NewImporter()
	modules := imp.ModulesValue()
	if err := object.SetItem(modules, object.Str("preset"), CreateModule("preset")); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if _, ok := imp.Lookup("preset"); !ok {
		t.Fatalf("expected write through sys.modules to reach the table")
	}
	ok, err := object.Contains(modules, object.Str("preset"))
	if err != nil || !ok {
		t.Fatalf("expected preset in sys.modules")
	}
	if _, err := object.GetItem(modules, object.Str("absent")); !object.IsRaised(err, object.KeyErrorType) {
		t.Fatalf("expected KeyError, got %v", err)
	}
}

// engineFinder is a modeled finder in the shape a script would define:
// find_spec returns a ModuleSpec whose loader registers the module itself.
func engineFinder(t *testing.T, imp *Importer) *object.Value {
	t.Helper()
	var finder *object.Value
	var err error
	finder, err = object.DefineClass("EngineFinder").
		Static("find_spec", func(name, path, target *object.Value) (*object.Value, error) {
			s, _ := object.AsString(name)
			if s != "engine" && s != "engine.gl20" {
				return object.None, nil
			}
			return object.CallPos(ModuleSpecType, name, finder)
		}, object.Names("name", "path", "target")...).
		Static("load_module", func(name *object.Value) error {
			s, _ := object.AsString(name)
			var mod *object.Value
			if s == "engine" {
				mod = CreatePackage(s)
				if err := object.SetAttr(mod, "renderer_name", object.Str("gl20")); err != nil {
					return err
				}
			} else {
				mod = CreateModule(s)
				if err := object.SetAttr(mod, "platform", object.Str("Android")); err != nil {
					return err
				}
			}
			return object.SetItem(imp.ModulesValue(), name, mod)
		}, object.Arg("name")).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return finder
}

func TestValueFinder(t *testing.T) {
	imp := NewImporter()
	finder := engineFinder(t, imp)
	if _, err := object.CallMethod(imp.MetaPathValue(), "insert", object.Int(0), finder); err != nil {
		t.Fatalf("meta_path.insert: %v", err)
	}
	if len(imp.Finders()) != 2 {
		t.Fatalf("expected two finders, got %d", len(imp.Finders()))
	}

	engine, err := imp.ImportModule("engine.gl20")
	if err != nil {
		t.Fatalf("ImportModule: %v", err)
	}
	name, _ := object.GetAttr(engine, "renderer_name")
	if s, _ := object.AsString(name); s != "gl20" {
		t.Fatalf("expected gl20, got %q", s)
	}
	gl, err := object.GetAttr(engine, "gl20")
	if err != nil {
		t.Fatalf("expected submodule attribute: %v", err)
	}
	platform, _ := object.GetAttr(gl, "platform")
	if s, _ := object.AsString(platform); s != "Android" {
		t.Fatalf("expected Android, got %q", s)
	}
	spec, _ := object.GetAttr(gl, "__spec__")
	loader, _ := object.GetAttr(spec, "loader")
	if loader != finder {
		t.Fatalf("expected the modeled loader on __spec__")
	}

	if _, err := object.CallMethod(imp.MetaPathValue(), "remove", finder); err != nil {
		t.Fatalf("meta_path.remove: %v", err)
	}
	if len(imp.Finders()) != 1 {
		t.Fatalf("expected finder removed")
	}
	_, err = object.CallMethod(imp.MetaPathValue(), "remove", finder)
	if !object.IsRaised(err, object.ValueErrorType) {
		t.Fatalf("expected ValueError for a finder not in the list, got %v", err)
	}
}

// TestFinderImportsItsOwnName covers a hook finder that, the first time it
// sees a name, imports that name itself and then declines it.
func TestFinderImportsItsOwnName(t *testing.T) {
	imp := NewImporter()
	imp.RegisterModule("x", func(mod *object.Value) error {
		return object.SetAttr(mod, "ready", object.True)
	})
	busy := false
	calls := 0
	var seen *object.Value
	hook, err := object.DefineClass("Hook").
		Static("find_spec", func(name, path, target *object.Value) (*object.Value, error) {
			calls++
			if busy {
				return object.None, nil
			}
			busy = true
			defer func() { busy = false }()
			s, _ := object.AsString(name)
			mod, err := imp.ImportAs(s)
			if err != nil {
				return nil, err
			}
			seen = mod
			return object.None, nil
		}, object.Names("name", "path", "target")...).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := object.CallMethod(imp.MetaPathValue(), "insert", object.Int(0), hook); err != nil {
		t.Fatalf("meta_path.insert: %v", err)
	}

	type result struct {
		mod *object.Value
		err error
	}
	done := make(chan result, 1)
	go func() {
		mod, err := imp.ImportAs("x")
		done <- result{mod, err}
	}()
	var res result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("ImportAs did not return")
	}
	if res.err != nil {
		t.Fatalf("ImportAs: %v", res.err)
	}
	if res.mod != seen {
		t.Fatalf("expected the module loaded by the hook")
	}
	if v, _ := object.GetAttr(res.mod, "ready"); v != object.True {
		t.Fatalf("expected module body to run")
	}
	if calls != 2 {
		t.Fatalf("expected find_spec called twice, got %d", calls)
	}
	if _, err := imp.ImportAs("x"); err != nil || calls != 2 {
		t.Fatalf("expected a cached import, got %v after %d calls", err, calls)
	}
}

func TestNativeFinderThroughMetaPath(t *testing.T) {
	imp := NewImporter()
	imp.RegisterModule("cio", func(mod *object.Value) error {
		return object.SetAttr(mod, "fast_io_supported", object.True)
	})
	first, err := object.GetItem(imp.MetaPathValue(), object.Int(0))
	if err != nil {
		t.Fatalf("meta_path[0]: %v", err)
	}
	spec, err := object.CallMethod(first, "find_spec", object.Str("cio"))
	if err != nil {
		t.Fatalf("find_spec: %v", err)
	}
	loader, err := object.GetAttr(spec, "loader")
	if err != nil {
		t.Fatal(err)
	}
	mod, err := object.CallMethod(loader, "load_module", object.Str("cio"))
	if err != nil {
		t.Fatalf("load_module: %v", err)
	}
	v, _ := object.GetAttr(mod, "fast_io_supported")
	if v != object.True {
		t.Fatalf("expected module body to run")
	}
	if missing, _ := object.CallMethod(first, "find_spec", object.Str("nope")); missing != object.None {
		t.Fatalf("expected None for an unknown name")
	}
}
