package module

import (
	"fmt"

	"pyrt/internal/object"
)

const machinery = "importlib.machinery"

// ModuleSpecType is importlib.machinery.ModuleSpec.
var ModuleSpecType = object.DefineClass("ModuleSpec").
	In(machinery).
	Method("__init__", func(self, name, loader, origin *object.Value) error {
		for _, kv := range []struct {
			k string
			v *object.Value
		}{{"name", name}, {"loader", loader}, {"origin", origin}} {
			if err := object.SetAttr(self, kv.k, kv.v); err != nil {
				return err
			}
		}
		return nil
	}, object.Arg("self"), object.Arg("name"), object.Arg("loader"), object.Default("origin", object.None)).
	Method("__repr__", func(self *object.Value) (*object.Value, error) {
		name, err := reprAttr(self, "name")
		if err != nil {
			return nil, err
		}
		loader, err := reprAttr(self, "loader")
		if err != nil {
			return nil, err
		}
		return object.Str(fmt.Sprintf("ModuleSpec(name=%s, loader=%s)", name, loader)), nil
	}, object.Arg("self")).
	MustBuild()

func reprAttr(v *object.Value, name string) (string, error) {
	a, err := object.GetAttrDefault(v, name, object.None)
	if err != nil {
		return "", err
	}
	return object.Repr(a)
}

// Spec is what a finder returns for a name it can load.
type Spec struct {
	Name   string
	Loader Loader
	Origin string

	value *object.Value
}

// Value returns the ModuleSpec object stored as the module's __spec__.
func (s *Spec) Value(imp *Importer) (*object.Value, error) {
	if s.value != nil {
		return s.value, nil
	}
	origin := object.None
	if s.Origin != "" {
		origin = object.Str(s.Origin)
	}
	v, err := object.CallPos(ModuleSpecType, object.Str(s.Name), imp.loaderValue(s.Loader), origin)
	if err != nil {
		return nil, err
	}
	s.value = v
	return v, nil
}

// NativeLoaderType exposes a Go Loader as an object with load_module.
var NativeLoaderType = object.DefineClass("NativeLoader").
	In(machinery).
	Method("load_module", func(self, name *object.Value) (*object.Value, error) {
		l, imp, err := hostLoader(self)
		if err != nil {
			return nil, err
		}
		s, err := nameArg("load_module", name)
		if err != nil {
			return nil, err
		}
		return l.Load(imp, s)
	}, object.Arg("self"), object.Arg("name")).
	MustBuild()

// NativeFinderType exposes a Go Finder as an object with find_spec.
var NativeFinderType = object.DefineClass("NativeFinder").
	In(machinery).
	Method("find_spec", func(self, name, path, target *object.Value) (*object.Value, error) {
		f, _ := self.Host(hostFinder).(Finder)
		imp, _ := self.Host(hostImporter).(*Importer)
		if f == nil || imp == nil {
			return nil, object.Raisef(object.TypeErrorType, "find_spec requires a native finder")
		}
		s, err := nameArg("find_spec", name)
		if err != nil {
			return nil, err
		}
		spec, err := f.FindSpec(imp, s)
		if err != nil || spec == nil {
			return object.None, err
		}
		return spec.Value(imp)
	}, object.Arg("self"), object.Arg("name"), object.Default("path", object.None), object.Default("target", object.None)).
	MustBuild()

const (
	hostLoaderKey = "loader"
	hostFinder    = "finder"
	hostImporter  = "importer"
)

func hostLoader(v *object.Value) (Loader, *Importer, error) {
	l, _ := v.Host(hostLoaderKey).(Loader)
	imp, _ := v.Host(hostImporter).(*Importer)
	if l == nil || imp == nil {
		return nil, nil, object.Raisef(object.TypeErrorType, "load_module requires a native loader")
	}
	return l, imp, nil
}

func nameArg(fname string, v *object.Value) (string, error) {
	s, ok := object.AsString(v)
	if !ok {
		return "", object.Raisef(object.TypeErrorType, "%s() argument 'name' must be str, not %s", fname, object.TypeName(v))
	}
	return s, nil
}
