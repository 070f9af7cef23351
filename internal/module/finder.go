package module

import (
	"sort"
	"sync"

	"pyrt/internal/object"
)

// Finder produces a Spec for names it can load, or nil. Finders are kept
// in maps and must be comparable.
type Finder interface {
	FindSpec(imp *Importer, name string) (*Spec, error)
}

type nativeEntry struct {
	loader *nativeLoader
}

// NativeFinder loads modules implemented in Go.
type NativeFinder struct {
	mu      sync.Mutex
	entries map[string]nativeEntry
}

func NewNativeFinder() *NativeFinder {
	return &NativeFinder{entries: map[string]nativeEntry{}}
}

// Register installs a module under name. A nil factory creates a plain
// module.
func (f *NativeFinder) Register(name string, factory Factory, exec Exec) {
	if factory == nil {
		factory = CreateModule
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[name] = nativeEntry{loader: &nativeLoader{factory: factory, exec: exec}}
}

func (f *NativeFinder) Unregister(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, name)
}

// Names lists the registered module names in order.
func (f *NativeFinder) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.entries))
	for n := range f.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (f *NativeFinder) FindSpec(_ *Importer, name string) (*Spec, error) {
	f.mu.Lock()
	e, ok := f.entries[name]
	f.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return &Spec{Name: name, Loader: e.loader, Origin: "native"}, nil
}

// ValueFinder adapts a modeled finder, any object with
// find_spec(name, path, target).
type ValueFinder struct {
	finder *object.Value
}

func NewValueFinder(finder *object.Value) *ValueFinder {
	return &ValueFinder{finder: finder}
}

func (f *ValueFinder) Value() *object.Value { return f.finder }

func (f *ValueFinder) FindSpec(_ *Importer, name string) (*Spec, error) {
	specVal, err := object.CallMethod(f.finder, "find_spec", object.Str(name), object.None, object.None)
	if err != nil {
		return nil, err
	}
	if specVal == nil || specVal == object.None {
		return nil, nil
	}
	ok, err := object.Truth(specVal)
	if err != nil || !ok {
		return nil, err
	}
	loader, err := object.GetAttr(specVal, "loader")
	if err != nil {
		return nil, err
	}
	return &Spec{Name: name, Loader: &valueLoader{loader: loader}, value: specVal}, nil
}

// finderValue returns the object form of f for sys.meta_path.
func (imp *Importer) finderValue(f Finder) *object.Value {
	if vf, ok := f.(*ValueFinder); ok {
		return vf.finder
	}
	if v, ok := imp.finderVals[f]; ok {
		return v
	}
	v := object.NewInstance(NativeFinderType, nil)
	v.SetHost(hostFinder, f)
	v.SetHost(hostImporter, imp)
	imp.finderVals[f] = v
	return v
}

// finderFor is the inverse of finderValue.
func (imp *Importer) finderFor(v *object.Value) Finder {
	if f, ok := v.Host(hostFinder).(Finder); ok {
		return f
	}
	for _, f := range imp.finders {
		if vf, ok := f.(*ValueFinder); ok && vf.finder == v {
			return f
		}
	}
	return NewValueFinder(v)
}
