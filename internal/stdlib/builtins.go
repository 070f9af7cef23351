package stdlib

import (
	"errors"
	"io"
	"sort"
	"strings"

	"pyrt/internal/module"
	"pyrt/internal/object"
)

// noDefault marks an optional argument that was not passed.
var noDefault = object.NewInstance(object.ObjectType, nil)

var builtinClasses = []*object.Value{
	object.ObjectType, object.TypeType, object.IntType, object.BoolType,
	object.StrType, BytesType, object.TupleType, object.ListType, object.DictType,
	object.RangeType, object.SuperType, object.PropertyType,
	object.StaticMethodType, object.ClassMethodType,
	object.BaseExceptionType, object.ExceptionType, object.TypeErrorType,
	object.AttributeErrorType, object.NameErrorType, object.ImportErrorType,
	object.ModuleNotFoundErrorType, object.LookupErrorType, object.KeyErrorType,
	object.IndexErrorType, object.ValueErrorType, object.StopIterationType,
	object.RuntimeErrorType, object.NotImplementedErrorType,
}

func execBuiltins(imp *module.Importer, opts *Options) module.Exec {
	return func(mod *object.Value) error {
		for _, cls := range builtinClasses {
			if err := object.SetAttr(mod, cls.Name(), cls); err != nil {
				return err
			}
		}
		return populate(mod,
			set("None", object.None),
			set("True", object.True),
			set("False", object.False),
			fn("isinstance", builtinIsInstance, object.Names("obj", "class_or_tuple")...),
			fn("issubclass", builtinIsSubclass, object.Names("cls", "class_or_tuple")...),
			fn("hasattr", func(obj, name *object.Value) (*object.Value, error) {
				s, err := attrName("hasattr", name)
				if err != nil {
					return nil, err
				}
				ok, err := object.HasAttr(obj, s)
				return object.Bool(ok), err
			}, object.Names("obj", "name")...),
			fn("getattr", builtinGetAttr, object.Arg("obj"), object.Arg("name"), object.Default("default", noDefault)),
			fn("setattr", func(obj, name, v *object.Value) error {
				s, err := attrName("setattr", name)
				if err != nil {
					return err
				}
				return object.SetAttr(obj, s, v)
			}, object.Names("obj", "name", "value")...),
			fn("delattr", func(obj, name *object.Value) error {
				s, err := attrName("delattr", name)
				if err != nil {
					return err
				}
				return object.DelAttr(obj, s)
			}, object.Names("obj", "name")...),
			fn("callable", func(obj *object.Value) (*object.Value, error) {
				return object.Bool(object.Callable(obj)), nil
			}, object.Arg("obj")),
			fn("len", func(obj *object.Value) (*object.Value, error) {
				n, err := object.Len(obj)
				if err != nil {
					return nil, err
				}
				return object.Int(n), nil
			}, object.Arg("obj")),
			fn("iter", object.Iter, object.Arg("obj")),
			fn("next", builtinNext, object.Arg("iterator"), object.Default("default", noDefault)),
			fn("repr", func(obj *object.Value) (*object.Value, error) {
				r, err := object.Repr(obj)
				if err != nil {
					return nil, err
				}
				return object.Str(r), nil
			}, object.Arg("obj")),
			fn("hash", func(obj *object.Value) (*object.Value, error) {
				h, err := object.Hash(obj)
				if err != nil {
					return nil, err
				}
				return object.Int(h), nil
			}, object.Arg("obj")),
			fn("dir", func(obj *object.Value) (*object.Value, error) {
				names := object.Dir(obj)
				vals := make([]*object.Value, len(names))
				for i, n := range names {
					vals[i] = object.Str(n)
				}
				return object.List(vals...), nil
			}, object.Arg("obj")),
			fn("any", func(iterable *object.Value) (*object.Value, error) {
				found, err := scan(iterable, true)
				return object.Bool(found), err
			}, object.Arg("iterable")),
			fn("all", func(iterable *object.Value) (*object.Value, error) {
				found, err := scan(iterable, false)
				return object.Bool(!found), err
			}, object.Arg("iterable")),
			fn("sorted", builtinSorted, object.Arg("iterable"), object.Default("key", object.None), object.Default("reverse", object.False)),
			fn("max", builtinMax, object.Arg("iterable"), object.Default("key", object.None), object.Default("default", noDefault)),
			fn("enumerate", func(iterable, start *object.Value) (*object.Value, error) {
				n, ok := object.AsInt(start)
				if !ok {
					return nil, object.Raisef(object.TypeErrorType, "'%s' object cannot be interpreted as an integer", object.TypeName(start))
				}
				return object.Enumerate(iterable, n)
			}, object.Arg("iterable"), object.Default("start", object.Int(0))),
			fn("zip", func(iterables *object.Value) (*object.Value, error) {
				elems, _ := object.Elems(iterables)
				return object.Zip(elems...)
			}, object.Star("iterables")),
			fn("print", builtinPrint(opts), object.Star("args"), object.Default("sep", object.Str(" ")), object.Default("end", object.Str("\n")), object.Default("file", object.None)),
			fn("__import__", builtinImport(imp), object.Arg("name"), object.Default("globals", object.None), object.Default("locals", object.None), object.Default("fromlist", object.Tuple()), object.Default("level", object.Int(0))),
		)
	}
}

func attrName(fname string, v *object.Value) (string, error) {
	s, ok := object.AsString(v)
	if !ok {
		return "", object.Raisef(object.TypeErrorType, "%s(): attribute name must be string, not '%s'", fname, object.TypeName(v))
	}
	return s, nil
}

// classInfo accepts a class or a tuple of classes.
func classInfo(fname string, info *object.Value) ([]*object.Value, error) {
	if info.IsClass() {
		return []*object.Value{info}, nil
	}
	if elems, ok := object.Elems(info); ok && info.Class() == object.TupleType {
		for _, e := range elems {
			if !e.IsClass() {
				return nil, object.Raisef(object.TypeErrorType, "%s() arg 2 must be a type or tuple of types", fname)
			}
		}
		return elems, nil
	}
	return nil, object.Raisef(object.TypeErrorType, "%s() arg 2 must be a type or tuple of types", fname)
}

func builtinIsInstance(obj, info *object.Value) (*object.Value, error) {
	classes, err := classInfo("isinstance", info)
	if err != nil {
		return nil, err
	}
	for _, cls := range classes {
		if object.IsInstance(obj, cls) {
			return object.True, nil
		}
	}
	return object.False, nil
}

func builtinIsSubclass(cls, info *object.Value) (*object.Value, error) {
	if !cls.IsClass() {
		return nil, object.Raisef(object.TypeErrorType, "issubclass() arg 1 must be a class")
	}
	classes, err := classInfo("issubclass", info)
	if err != nil {
		return nil, err
	}
	for _, c := range classes {
		if object.IsSubclass(cls, c) {
			return object.True, nil
		}
	}
	return object.False, nil
}

func builtinGetAttr(obj, name, dflt *object.Value) (*object.Value, error) {
	s, err := attrName("getattr", name)
	if err != nil {
		return nil, err
	}
	if dflt == noDefault {
		return object.GetAttr(obj, s)
	}
	return object.GetAttrDefault(obj, s, dflt)
}

func builtinNext(it, dflt *object.Value) (*object.Value, error) {
	v, ok, err := object.Next(it)
	if err != nil {
		return nil, err
	}
	if ok {
		return v, nil
	}
	if dflt == noDefault {
		return nil, object.Raise(object.NewException(object.StopIterationType))
	}
	return dflt, nil
}

var errStop = errors.New("stop")

// scan reports whether some element's truth equals want.
func scan(iterable *object.Value, want bool) (bool, error) {
	found := false
	err := object.ForEach(iterable, func(v *object.Value) error {
		t, err := object.Truth(v)
		if err != nil {
			return err
		}
		if t == want {
			found = true
			return errStop
		}
		return nil
	})
	if err != nil && err != errStop {
		return false, err
	}
	return found, nil
}

func keyed(iterable, key *object.Value) (vals, keys []*object.Value, err error) {
	vals, err = object.ToSlice(iterable)
	if err != nil {
		return nil, nil, err
	}
	if key == object.None {
		return vals, vals, nil
	}
	keys = make([]*object.Value, len(vals))
	for i, v := range vals {
		if keys[i], err = object.CallPos(key, v); err != nil {
			return nil, nil, err
		}
	}
	return vals, keys, nil
}

func builtinSorted(iterable, key, reverse *object.Value) (*object.Value, error) {
	vals, keys, err := keyed(iterable, key)
	if err != nil {
		return nil, err
	}
	rev, err := object.Truth(reverse)
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(vals))
	for i := range idx {
		idx[i] = i
	}
	var firstErr error
	sort.SliceStable(idx, func(i, j int) bool {
		if firstErr != nil {
			return false
		}
		a, b := keys[idx[i]], keys[idx[j]]
		if rev {
			a, b = b, a
		}
		less, err := object.Less(a, b)
		if err != nil {
			firstErr = err
		}
		return less
	})
	if firstErr != nil {
		return nil, firstErr
	}
	out := make([]*object.Value, len(idx))
	for i, k := range idx {
		out[i] = vals[k]
	}
	return object.List(out...), nil
}

func builtinMax(iterable, key, dflt *object.Value) (*object.Value, error) {
	vals, keys, err := keyed(iterable, key)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		if dflt != noDefault {
			return dflt, nil
		}
		return nil, object.Raisef(object.ValueErrorType, "max() iterable argument is empty")
	}
	best := 0
	for i := 1; i < len(vals); i++ {
		greater, err := object.Less(keys[best], keys[i])
		if err != nil {
			return nil, err
		}
		if greater {
			best = i
		}
	}
	return vals[best], nil
}

func builtinPrint(opts *Options) object.P4Func {
	return func(args, sep, end, file *object.Value) (*object.Value, error) {
		elems, _ := object.Elems(args)
		parts := make([]string, len(elems))
		for i, e := range elems {
			s, err := object.ToStr(e)
			if err != nil {
				return nil, err
			}
			parts[i] = s
		}
		sepStr, err := printArg("sep", sep, " ")
		if err != nil {
			return nil, err
		}
		endStr, err := printArg("end", end, "\n")
		if err != nil {
			return nil, err
		}
		text := strings.Join(parts, sepStr) + endStr
		if file != object.None {
			_, err := object.CallMethod(file, "write", object.Str(text))
			return nil, err
		}
		_, err = io.WriteString(opts.Stdout, text)
		return nil, err
	}
}

// printArg reads sep or end; None selects dflt.
func printArg(name string, v *object.Value, dflt string) (string, error) {
	if v == object.None {
		return dflt, nil
	}
	s, ok := object.AsString(v)
	if !ok {
		return "", object.Raisef(object.TypeErrorType, "%s must be None or a string, not %s", name, object.TypeName(v))
	}
	return s, nil
}

func builtinImport(imp *module.Importer) object.P5Func {
	return func(name, globals, locals, fromlist, level *object.Value) (*object.Value, error) {
		s, ok := object.AsString(name)
		if !ok {
			return nil, object.Raisef(object.TypeErrorType, "__import__() argument 1 must be str, not %s", object.TypeName(name))
		}
		if n, _ := object.AsInt(level); n != 0 {
			return nil, object.Raisef(object.ImportErrorType, "relative imports are not supported")
		}
		from, err := object.Truth(fromlist)
		if err != nil {
			return nil, err
		}
		if from {
			return imp.ImportAs(s)
		}
		return imp.ImportModule(s)
	}
}
