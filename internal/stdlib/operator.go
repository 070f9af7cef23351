package stdlib

import (
	"strings"

	"pyrt/internal/module"
	"pyrt/internal/object"
)

const hostGetter = "getter"

type getter struct {
	items []*object.Value
	fetch func(obj, item *object.Value) (*object.Value, error)
}

func (g *getter) call(obj *object.Value) (*object.Value, error) {
	if len(g.items) == 1 {
		return g.fetch(obj, g.items[0])
	}
	out := make([]*object.Value, len(g.items))
	for i, item := range g.items {
		v, err := g.fetch(obj, item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return object.Tuple(out...), nil
}

func getterOf(self *object.Value) (*getter, error) {
	g, ok := self.Host(hostGetter).(*getter)
	if !ok {
		return nil, object.Raisef(object.TypeErrorType, "uninitialized %s object", object.TypeName(self))
	}
	return g, nil
}

func getterRepr(self *object.Value) (*object.Value, error) {
	g, err := getterOf(self)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(g.items))
	for i, item := range g.items {
		if parts[i], err = object.Repr(item); err != nil {
			return nil, err
		}
	}
	return object.Str("operator." + self.Class().Name() + "(" + strings.Join(parts, ", ") + ")"), nil
}

func getterCall(self, obj *object.Value) (*object.Value, error) {
	g, err := getterOf(self)
	if err != nil {
		return nil, err
	}
	return g.call(obj)
}

func defineGetter(name string, check func(item *object.Value) error, fetch func(obj, item *object.Value) (*object.Value, error)) *object.Value {
	return object.DefineClass(name).
		In("operator").
		Static("__new__", func(cls, items *object.Value) (*object.Value, error) {
			elems, _ := object.Elems(items)
			if len(elems) == 0 {
				return nil, object.Raisef(object.TypeErrorType, "%s expected 1 argument, got 0", name)
			}
			for _, item := range elems {
				if err := check(item); err != nil {
					return nil, err
				}
			}
			inst := object.NewInstance(cls, nil)
			inst.SetHost(hostGetter, &getter{items: elems, fetch: fetch})
			return inst, nil
		}, object.Arg("cls"), object.Star("items")).
		Method("__init__", func(self, items *object.Value) error {
			return nil
		}, object.Arg("self"), object.Star("items")).
		Method("__call__", getterCall, object.Names("self", "obj")...).
		Method("__repr__", getterRepr, object.Arg("self")).
		MustBuild()
}

// ItemGetterType fetches obj[item] for each item given at construction.
var ItemGetterType = defineGetter("itemgetter",
	func(*object.Value) error { return nil },
	object.GetItem)

// AttrGetterType fetches a possibly dotted attribute path.
var AttrGetterType = defineGetter("attrgetter",
	func(item *object.Value) error {
		if _, ok := object.AsString(item); !ok {
			return object.Raisef(object.TypeErrorType, "attribute name must be a string")
		}
		return nil
	},
	func(obj, item *object.Value) (*object.Value, error) {
		path, _ := object.AsString(item)
		v := obj
		for _, part := range strings.Split(path, ".") {
			var err error
			if v, err = object.GetAttr(v, part); err != nil {
				return nil, err
			}
		}
		return v, nil
	})

func compare(op func(a, b *object.Value) (bool, error)) object.P2Func {
	return func(a, b *object.Value) (*object.Value, error) {
		ok, err := op(a, b)
		return object.Bool(ok), err
	}
}

func execOperator(imp *module.Importer, opts *Options) module.Exec {
	return func(mod *object.Value) error {
		return populate(mod,
			set("itemgetter", ItemGetterType),
			set("attrgetter", AttrGetterType),
			fn("getitem", object.GetItem, object.Names("a", "b")...),
			fn("lt", compare(object.Less), object.Names("a", "b")...),
			fn("le", compare(object.LessEqual), object.Names("a", "b")...),
		)
	}
}
