package module

import (
	"strings"

	"pyrt/internal/object"
)

func proxyImporter(self *object.Value) (*Importer, error) {
	imp, ok := self.Host(hostImporter).(*Importer)
	if !ok {
		return nil, object.Raisef(object.TypeErrorType, "'%s' is not bound to an importer", object.TypeName(self))
	}
	return imp, nil
}

func keyName(k *object.Value) (string, error) {
	s, ok := object.AsString(k)
	if !ok {
		return "", object.Raisef(object.TypeErrorType, "module names must be str, not %s", object.TypeName(k))
	}
	return s, nil
}

// ModuleTableType backs sys.modules with the importer's table.
var ModuleTableType = object.DefineClass("module_table").
	In("sys").
	Method("__getitem__", func(self, k *object.Value) (*object.Value, error) {
		imp, err := proxyImporter(self)
		if err != nil {
			return nil, err
		}
		name, err := keyName(k)
		if err != nil {
			return nil, err
		}
		mod, ok := imp.Lookup(name)
		if !ok {
			return nil, object.Raise(object.NewException(object.KeyErrorType, k))
		}
		return mod, nil
	}, object.Names("self", "key")...).
	Method("__setitem__", func(self, k, v *object.Value) error {
		imp, err := proxyImporter(self)
		if err != nil {
			return err
		}
		name, err := keyName(k)
		if err != nil {
			return err
		}
		imp.Register(name, v)
		return nil
	}, object.Names("self", "key", "value")...).
	Method("__delitem__", func(self, k *object.Value) error {
		imp, err := proxyImporter(self)
		if err != nil {
			return err
		}
		name, err := keyName(k)
		if err != nil {
			return err
		}
		if !imp.Remove(name) {
			return object.Raise(object.NewException(object.KeyErrorType, k))
		}
		return nil
	}, object.Names("self", "key")...).
	Method("__contains__", func(self, k *object.Value) (*object.Value, error) {
		imp, err := proxyImporter(self)
		if err != nil {
			return nil, err
		}
		name, ok := object.AsString(k)
		if !ok {
			return object.False, nil
		}
		_, found := imp.Lookup(name)
		return object.Bool(found), nil
	}, object.Names("self", "key")...).
	Method("__len__", func(self *object.Value) (*object.Value, error) {
		imp, err := proxyImporter(self)
		if err != nil {
			return nil, err
		}
		return object.Int(int64(len(imp.Modules()))), nil
	}, object.Arg("self")).
	Method("__iter__", func(self *object.Value) (*object.Value, error) {
		keys, err := tableKeys(self)
		if err != nil {
			return nil, err
		}
		return object.SeqIter(keys), nil
	}, object.Arg("self")).
	Method("keys", func(self *object.Value) (*object.Value, error) {
		keys, err := tableKeys(self)
		if err != nil {
			return nil, err
		}
		return object.List(keys...), nil
	}, object.Arg("self")).
	Method("get", func(self, k, dflt *object.Value) (*object.Value, error) {
		imp, err := proxyImporter(self)
		if err != nil {
			return nil, err
		}
		name, err := keyName(k)
		if err != nil {
			return nil, err
		}
		if mod, ok := imp.Lookup(name); ok {
			return mod, nil
		}
		return dflt, nil
	}, object.Arg("self"), object.Arg("key"), object.Default("default", object.None)).
	Method("__repr__", func(self *object.Value) (*object.Value, error) {
		imp, err := proxyImporter(self)
		if err != nil {
			return nil, err
		}
		return object.Str("<sys.modules " + strings.Join(imp.Modules(), ", ") + ">"), nil
	}, object.Arg("self")).
	MustBuild()

func tableKeys(self *object.Value) ([]*object.Value, error) {
	imp, err := proxyImporter(self)
	if err != nil {
		return nil, err
	}
	names := imp.Modules()
	keys := make([]*object.Value, len(names))
	for i, n := range names {
		keys[i] = object.Str(n)
	}
	return keys, nil
}

// MetaPathType backs sys.meta_path with the importer's finder list.
var MetaPathType = object.DefineClass("meta_path").
	In("sys").
	Method("__iter__", func(self *object.Value) (*object.Value, error) {
		vals, err := metaPathValues(self)
		if err != nil {
			return nil, err
		}
		return object.SeqIter(vals), nil
	}, object.Arg("self")).
	Method("__len__", func(self *object.Value) (*object.Value, error) {
		imp, err := proxyImporter(self)
		if err != nil {
			return nil, err
		}
		return object.Int(int64(len(imp.Finders()))), nil
	}, object.Arg("self")).
	Method("__getitem__", func(self, idx *object.Value) (*object.Value, error) {
		vals, err := metaPathValues(self)
		if err != nil {
			return nil, err
		}
		return object.GetItem(object.Tuple(vals...), idx)
	}, object.Names("self", "index")...).
	Method("append", func(self, finder *object.Value) error {
		imp, err := proxyImporter(self)
		if err != nil {
			return err
		}
		imp.mu.Lock()
		defer imp.mu.Unlock()
		imp.finders = append(imp.finders, imp.finderFor(finder))
		return nil
	}, object.Names("self", "finder")...).
	Method("insert", func(self, idx, finder *object.Value) error {
		imp, err := proxyImporter(self)
		if err != nil {
			return err
		}
		i, ok := object.AsInt(idx)
		if !ok {
			return object.Raisef(object.TypeErrorType, "'%s' object cannot be interpreted as an integer", object.TypeName(idx))
		}
		imp.mu.Lock()
		defer imp.mu.Unlock()
		imp.insertFinder(int(i), imp.finderFor(finder))
		return nil
	}, object.Names("self", "index", "finder")...).
	Method("remove", func(self, finder *object.Value) error {
		imp, err := proxyImporter(self)
		if err != nil {
			return err
		}
		var target Finder
		imp.mu.Lock()
		for _, f := range imp.finders {
			if imp.finderValue(f) == finder {
				target = f
				break
			}
		}
		imp.mu.Unlock()
		if target == nil || !imp.RemoveFinder(target) {
			return object.Raisef(object.ValueErrorType, "meta_path.remove(x): x not in list")
		}
		return nil
	}, object.Names("self", "finder")...).
	Method("__repr__", func(self *object.Value) (*object.Value, error) {
		vals, err := metaPathValues(self)
		if err != nil {
			return nil, err
		}
		r, err := object.Repr(object.List(vals...))
		if err != nil {
			return nil, err
		}
		return object.Str(r), nil
	}, object.Arg("self")).
	MustBuild()

func metaPathValues(self *object.Value) ([]*object.Value, error) {
	imp, err := proxyImporter(self)
	if err != nil {
		return nil, err
	}
	imp.mu.Lock()
	defer imp.mu.Unlock()
	vals := make([]*object.Value, len(imp.finders))
	for i, f := range imp.finders {
		vals[i] = imp.finderValue(f)
	}
	return vals, nil
}

// ModulesValue returns the sys.modules view of the module table.
func (imp *Importer) ModulesValue() *object.Value {
	return imp.proxy(&imp.modulesVal, ModuleTableType)
}

// MetaPathValue returns the sys.meta_path view of the finder list.
func (imp *Importer) MetaPathValue() *object.Value {
	return imp.proxy(&imp.metaPathVal, MetaPathType)
}

func (imp *Importer) proxy(slot **object.Value, cls *object.Value) *object.Value {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	if *slot == nil {
		v := object.NewInstance(cls, nil)
		v.SetHost(hostImporter, imp)
		*slot = v
	}
	return *slot
}
