package module

import (
	"strings"
	"sync"

	"pyrt/internal/object"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/singleflight"
)

var log = commonlog.GetLogger("pyrt.module")

// Importer owns the module table and the ordered finder list. Its lock is
// never held while a finder or loader runs.
type Importer struct {
	mu          sync.Mutex
	table       *object.Dict
	finders     []Finder
	native      *NativeFinder
	loaders     map[Loader]*object.Value
	finderVals  map[Finder]*object.Value
	modulesVal  *object.Value
	metaPathVal *object.Value
	group       singleflight.Group
}

// NewImporter returns an importer whose only finder loads registered
// native modules.
func NewImporter() *Importer {
	table, _ := object.AsDict(object.NewDict())
	imp := &Importer{
		table:      table,
		native:     NewNativeFinder(),
		loaders:    map[Loader]*object.Value{},
		finderVals: map[Finder]*object.Value{},
	}
	imp.finders = []Finder{imp.native}
	return imp
}

func (imp *Importer) Native() *NativeFinder { return imp.native }

// RegisterModule installs a native module; exec runs on first import.
func (imp *Importer) RegisterModule(name string, exec Exec) {
	imp.native.Register(name, CreateModule, exec)
}

// RegisterPackage is RegisterModule for a module with a __path__ marker.
func (imp *Importer) RegisterPackage(name string, exec Exec) {
	imp.native.Register(name, CreatePackage, exec)
}

// Lookup returns a module from the table.
func (imp *Importer) Lookup(name string) (*object.Value, bool) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	v, ok, _ := imp.table.Get(object.Str(name))
	return v, ok
}

// Register stores mod in the table under name.
func (imp *Importer) Register(name string, mod *object.Value) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	_ = imp.table.Set(object.Str(name), mod)
}

func (imp *Importer) Remove(name string) bool {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	ok, _ := imp.table.Delete(object.Str(name))
	return ok
}

// Modules returns the table's names in insertion order.
func (imp *Importer) Modules() []string {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	keys := imp.table.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i], _ = object.AsString(k)
	}
	return names
}

func (imp *Importer) Finders() []Finder {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	return append([]Finder(nil), imp.finders...)
}

// AddFinder appends f, consulted after every finder already present.
func (imp *Importer) AddFinder(f Finder) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	imp.finders = append(imp.finders, f)
}

// InsertFinder places f at index i, clamped to the list bounds.
func (imp *Importer) InsertFinder(i int, f Finder) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	imp.insertFinder(i, f)
}

func (imp *Importer) insertFinder(i int, f Finder) {
	if i < 0 {
		i += len(imp.finders)
		if i < 0 {
			i = 0
		}
	}
	if i > len(imp.finders) {
		i = len(imp.finders)
	}
	imp.finders = append(imp.finders, nil)
	copy(imp.finders[i+1:], imp.finders[i:])
	imp.finders[i] = f
}

// RemoveFinder drops the first occurrence of f and reports whether it was
// present.
func (imp *Importer) RemoveFinder(f Finder) bool {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	for i, x := range imp.finders {
		if x == f {
			imp.finders = append(imp.finders[:i], imp.finders[i+1:]...)
			return true
		}
	}
	return false
}

// ImportAs imports a dotted name and returns the last module in it.
func (imp *Importer) ImportAs(dotted string) (*object.Value, error) {
	parts := strings.Split(dotted, ".")
	for _, p := range parts {
		if p == "" {
			return nil, object.Raisef(object.ValueErrorType, "Empty module name in '%s'", dotted)
		}
	}
	name := parts[0]
	mod, err := imp.resolve(name)
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		sub := name + "." + part
		isPkg, err := object.HasAttr(mod, "__path__")
		if err != nil {
			return nil, err
		}
		if !isPkg {
			return nil, object.Raisef(object.ModuleNotFoundErrorType, "No module named '%s'; '%s' is not a package", sub, name)
		}
		child, err := imp.resolve(sub)
		if err != nil {
			return nil, err
		}
		if err := object.SetAttr(mod, part, child); err != nil {
			return nil, err
		}
		mod, name = child, sub
	}
	return mod, nil
}

// ImportModule imports a dotted name and returns its top-level module.
func (imp *Importer) ImportModule(dotted string) (*object.Value, error) {
	if _, err := imp.ImportAs(dotted); err != nil {
		return nil, err
	}
	top, _, _ := strings.Cut(dotted, ".")
	mod, ok := imp.Lookup(top)
	if !ok {
		return nil, object.Raisef(object.KeyErrorType, "%s", top)
	}
	return mod, nil
}

// ImportFrom imports modName and returns the requested names. A name that
// is not an attribute is tried as a submodule of a package.
func (imp *Importer) ImportFrom(modName string, names ...string) ([]*object.Value, error) {
	mod, err := imp.ImportAs(modName)
	if err != nil {
		return nil, err
	}
	out := make([]*object.Value, len(names))
	for i, name := range names {
		v, err := imp.fromModule(mod, modName, name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (imp *Importer) fromModule(mod *object.Value, modName, name string) (*object.Value, error) {
	v, err := object.GetAttr(mod, name)
	if err == nil {
		return v, nil
	}
	if !object.IsRaised(err, object.AttributeErrorType) {
		return nil, err
	}
	if object.IsInstance(mod, object.ModuleType) {
		isPkg, err := object.HasAttr(mod, "__path__")
		if err != nil {
			return nil, err
		}
		if isPkg {
			v, err := imp.ImportAs(modName + "." + name)
			if err == nil {
				return v, nil
			}
			if !object.IsRaised(err, object.ModuleNotFoundErrorType) {
				return nil, err
			}
		}
	}
	return nil, object.Raisef(object.ImportErrorType, "cannot import name '%s' from '%s'", name, modName)
}

// Import binds the top-level module of dotted on target, as import a.b
// binds a.
func (imp *Importer) Import(target *object.Value, dotted string) (*object.Value, error) {
	mod, err := imp.ImportModule(dotted)
	if err != nil {
		return nil, err
	}
	top, _, _ := strings.Cut(dotted, ".")
	if err := object.SetAttr(target, top, mod); err != nil {
		return nil, err
	}
	return mod, nil
}

// ImportFromInto binds each imported name on target.
func (imp *Importer) ImportFromInto(target *object.Value, modName string, names ...string) ([]*object.Value, error) {
	vals, err := imp.ImportFrom(modName, names...)
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		if err := object.SetAttr(target, name, vals[i]); err != nil {
			return nil, err
		}
	}
	return vals, nil
}

// resolve returns name from the table or loads it through the finders.
// Finders and modeled loaders run outside any exclusion, so they may import
// the name they are resolving. Concurrent first loads of one name through a
// Go loader share a single load.
func (imp *Importer) resolve(name string) (*object.Value, error) {
	if mod, ok := imp.Lookup(name); ok {
		return mod, nil
	}
	for _, f := range imp.Finders() {
		spec, err := f.FindSpec(imp, name)
		if err != nil {
			return nil, err
		}
		if mod, ok := imp.Lookup(name); ok {
			return mod, nil
		}
		if spec == nil {
			continue
		}
		return imp.loadSpec(name, spec)
	}
	return nil, object.Raisef(object.ModuleNotFoundErrorType, "No module named '%s'", name)
}

func (imp *Importer) loadSpec(name string, spec *Spec) (*object.Value, error) {
	if _, modeled := spec.Loader.(*valueLoader); modeled {
		return imp.exec(name, spec)
	}
	v, err, _ := imp.group.Do(name, func() (any, error) {
		if mod, ok := imp.Lookup(name); ok {
			return mod, nil
		}
		return imp.exec(name, spec)
	})
	if err != nil {
		return nil, err
	}
	return v.(*object.Value), nil
}

func (imp *Importer) exec(name string, spec *Spec) (*object.Value, error) {
	mod, err := spec.Loader.Load(imp, name)
	if err != nil {
		return nil, err
	}
	specVal, err := spec.Value(imp)
	if err != nil {
		return nil, err
	}
	if err := object.SetAttr(mod, "__spec__", specVal); err != nil {
		return nil, err
	}
	log.Debugf("loaded module %s", name)
	return mod, nil
}
