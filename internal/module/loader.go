package module

import (
	"strings"

	"pyrt/internal/object"
)

// Loader creates a module, registers it with the importer and runs its
// body.
type Loader interface {
	Load(imp *Importer, name string) (*object.Value, error)
}

// Exec populates a freshly registered module.
type Exec func(mod *object.Value) error

// Factory creates the empty module for a name.
type Factory func(name string) *object.Value

// CreateModule creates a plain module. __package__ is the parent package
// name, or "" for a top-level module.
func CreateModule(name string) *object.Value {
	mod := object.NewModule(name)
	pkg := ""
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		pkg = name[:i]
	}
	mustSet(mod, "__package__", object.Str(pkg))
	return mod
}

// CreatePackage creates a module carrying the __path__ marker that lets
// submodules be imported through it.
func CreatePackage(name string) *object.Value {
	mod := object.NewModule(name)
	mustSet(mod, "__path__", object.List())
	mustSet(mod, "__package__", object.Str(name))
	return mod
}

func mustSet(v *object.Value, name string, x *object.Value) {
	if err := object.SetAttr(v, name, x); err != nil {
		panic(err)
	}
}

// nativeLoader registers the module before running exec, so imports made
// by exec see the partially initialized module.
type nativeLoader struct {
	factory Factory
	exec    Exec
}

func (l *nativeLoader) Load(imp *Importer, name string) (*object.Value, error) {
	mod := l.factory(name)
	imp.Register(name, mod)
	if l.exec == nil {
		return mod, nil
	}
	if err := l.exec(mod); err != nil {
		imp.Remove(name)
		return nil, err
	}
	return mod, nil
}

// valueLoader drives a modeled loader: load_module(name) must leave the
// module in sys.modules.
type valueLoader struct {
	loader *object.Value
}

func (l *valueLoader) Load(imp *Importer, name string) (*object.Value, error) {
	if _, err := object.CallMethod(l.loader, "load_module", object.Str(name)); err != nil {
		return nil, err
	}
	mod, ok := imp.Lookup(name)
	if !ok {
		return nil, object.Raisef(object.ImportErrorType, "loader for '%s' did not register it in sys.modules", name)
	}
	return mod, nil
}

// loaderValue returns the object form of l, the modeled loader itself when
// l wraps one.
func (imp *Importer) loaderValue(l Loader) *object.Value {
	if vl, ok := l.(*valueLoader); ok {
		return vl.loader
	}
	imp.mu.Lock()
	defer imp.mu.Unlock()
	if v, ok := imp.loaders[l]; ok {
		return v
	}
	v := object.NewInstance(NativeLoaderType, nil)
	v.SetHost(hostLoaderKey, l)
	v.SetHost(hostImporter, imp)
	imp.loaders[l] = v
	return v
}
