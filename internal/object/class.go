package object

import (
	"fmt"
	"slices"
)

// NewClass builds a class value. A nil meta means type. When a base's
// metaclass is more derived than meta, construction is handed to that
// metaclass's __new__.
func NewClass(meta *Value, name string, bases []*Value, ns *Value) (*Value, error) {
	if meta == nil {
		meta = TypeType
	}
	if !meta.IsClass() {
		return nil, Raisef(TypeErrorType, "metaclass must be a type, not '%s'", TypeName(meta))
	}
	if len(bases) == 0 {
		bases = []*Value{ObjectType}
	}
	for _, b := range bases {
		if !b.IsClass() {
			return nil, Raisef(TypeErrorType, "bases must be types, not '%s'", TypeName(b))
		}
	}

	effective, err := effectiveMeta(meta, bases)
	if err != nil {
		return nil, err
	}
	if effective != meta {
		log.Debugf("class %s: metaclass %s delegates to %s", name, meta.Name(), effective.Name())
		newFn := classLookup(effective, "__new__")
		if newFn == nil {
			return nil, Raisef(TypeErrorType, "cannot create '%s' instances", effective.Name())
		}
		if ns == nil {
			ns = NewDict()
		}
		return CallPos(newFn, effective, Str(name), Tuple(bases...), ns)
	}

	cls := newValue(newDictStore(), nil)
	cls.class = &classData{name: name, bases: slices.Clone(bases)}
	if err := cls.attrs.Put("__class__", meta); err != nil {
		return nil, err
	}
	cls.attrs.store.Save("__name__", Str(name))
	if ns != nil {
		d, ok := ns.payload.(*Dict)
		if !ok {
			return nil, Raisef(TypeErrorType, "class namespace must be a dict, not '%s'", TypeName(ns))
		}
		for _, k := range d.Keys() {
			key, ok := AsString(k)
			if !ok {
				return nil, Raisef(TypeErrorType, "class attribute names must be strings, not '%s'", TypeName(k))
			}
			v, _, _ := d.Get(k)
			if err := cls.attrs.Put(key, v); err != nil {
				return nil, err
			}
		}
	}

	cls.class.mro = computeMRO(cls, cls.class.bases)
	describeClass(cls)
	for _, b := range cls.class.bases {
		b.attrs.registerSubclass(cls)
	}
	log.Debugf("class %s created, mro %s", name, mroNames(cls.class.mro))
	return cls, nil
}

// effectiveMeta picks the most derived metaclass among meta and the bases'
// classes.
func effectiveMeta(meta *Value, bases []*Value) (*Value, error) {
	winner := meta
	for _, b := range bases {
		bm := b.Class()
		switch {
		case IsSubclass(bm, winner):
			winner = bm
		case IsSubclass(winner, bm):
		default:
			return nil, Raisef(TypeErrorType, "metaclass conflict: the metaclass of a derived class "+
				"must be a (non-strict) subclass of the metaclasses of all its bases")
		}
	}
	return winner, nil
}

// computeMRO starts from cls and walks each base's mro in declaration order,
// moving every class it meets to the end. A class shared by several bases
// therefore lands where the last of them puts it.
func computeMRO(cls *Value, bases []*Value) []*Value {
	mro := []*Value{cls}
	for _, b := range bases {
		for _, c := range b.class.mro {
			if i := slices.Index(mro, c); i >= 0 {
				mro = slices.Delete(mro, i, i+1)
			}
			mro = append(mro, c)
		}
	}
	return mro
}

func mroNames(mro []*Value) string {
	names := make([]string, len(mro))
	for i, c := range mro {
		names[i] = c.class.name
	}
	return fmt.Sprint(names)
}

// IsSubclass reports whether b appears in a's mro.
func IsSubclass(a, b *Value) bool {
	if a == nil || b == nil || a.class == nil {
		return false
	}
	return slices.Contains(a.class.mro, b)
}

// IsInstance reports whether v's class is cls or derives from it.
func IsInstance(v, cls *Value) bool {
	return IsSubclass(v.Class(), cls)
}

// classLookup finds name along cls's mro without binding. staticmethod
// wrappers are unwrapped.
func classLookup(cls *Value, name string) *Value {
	raw := cls.attrs.findOwn(name)
	if raw == nil {
		return nil
	}
	if sm, ok := raw.payload.(*staticMethod); ok {
		return sm.fn
	}
	return raw
}

// unwrapForClass converts an attribute found on a class's own mro when the
// class itself is the receiver.
func unwrapForClass(a, cls *Value) *Value {
	switch p := a.payload.(type) {
	case *staticMethod:
		return p.fn
	case *classMethod:
		return NewMethod(cls, p.fn)
	}
	return a
}

var objectNew *Value

// construct implements type.__call__: __new__ found on the class, then
// __init__ of the resulting instance's class unless it is object's.
func construct(cls *Value, args Args) (*Value, error) {
	newFn := classLookup(cls, "__new__")
	if newFn == nil {
		return nil, Raisef(TypeErrorType, "cannot create '%s' instances", cls.Name())
	}
	var (
		inst *Value
		err  error
	)
	if newFn == objectNew {
		inst, err = CallPos(newFn, cls)
	} else {
		inst, err = Call(newFn, args.prepend(cls))
	}
	if err != nil {
		return nil, err
	}
	if !IsInstance(inst, cls) {
		return inst, nil
	}
	initFn := classLookup(inst.Class(), "__init__")
	if initFn == nil || initFn == objectInit {
		return inst, nil
	}
	res, err := Call(initFn, args.prepend(inst))
	if err != nil {
		return nil, err
	}
	if res != None {
		return nil, Raisef(TypeErrorType, "__init__() should return None, not '%s'", TypeName(res))
	}
	return inst, nil
}

var objectInit *Value

func setupType() {
	objectNew = classLookup(ObjectType, "__new__")
	objectInit = classLookup(ObjectType, "__init__")

	defStatic(TypeType, "__new__", func(args []*Value) (*Value, error) {
		meta := args[0]
		rest, _ := Elems(args[1])
		switch len(rest) {
		case 1:
			return rest[0].Class(), nil
		case 3:
			name, ok := AsString(rest[0])
			if !ok {
				return nil, Raisef(TypeErrorType, "type.__new__() argument 1 must be str, not %s", TypeName(rest[0]))
			}
			if !IsInstance(rest[1], TupleType) {
				return nil, Raisef(TypeErrorType, "type.__new__() argument 2 must be tuple, not %s", TypeName(rest[1]))
			}
			bases, _ := Elems(rest[1])
			return NewClass(meta, name, bases, rest[2])
		}
		return nil, Raisef(TypeErrorType, "type() takes 1 or 3 arguments")
	}, "meta", "*args")

	def(TypeType, "__call__", func(args []*Value) (*Value, error) {
		cls := args[0]
		call := ArgsFrom(args[1], args[2])
		if cls == TypeType && len(call.Positional) == 1 && len(call.Keywords) == 0 {
			return call.Positional[0].Class(), nil
		}
		return construct(cls, call)
	}, "cls", "*args", "**kwargs")

	def(TypeType, "__repr__", func(self *Value) (*Value, error) {
		if mod, ok := AsString(self.attrs.Get("__module__")); ok && mod != "builtins" {
			return Str(fmt.Sprintf("<class '%s.%s'>", mod, self.Name())), nil
		}
		return Str(fmt.Sprintf("<class '%s'>", self.Name())), nil
	}, "self")

	def(TypeType, "mro", func(self *Value) (*Value, error) {
		return List(self.MRO()...), nil
	}, "self")

	def(TypeType, "__subclasses__", func(self *Value) (*Value, error) {
		return List(self.attrs.subclasses.snapshot()...), nil
	}, "self")
}
