package object

import "fmt"

// Built-in classes. They are created in bootstrap before any value can be
// built, so they keep their attributes in a bootstrapStore.
var (
	ObjectType *Value
	TypeType   *Value

	NoneType         *Value
	IntType          *Value
	BoolType         *Value
	StrType          *Value
	TupleType        *Value
	ListType         *Value
	DictType         *Value
	FunctionType     *Value
	MethodType       *Value
	PropertyType     *Value
	StaticMethodType *Value
	ClassMethodType  *Value
	SuperType        *Value
	ModuleType       *Value
	IteratorType     *Value
	RangeType        *Value

	BaseExceptionType       *Value
	ExceptionType           *Value
	TypeErrorType           *Value
	AttributeErrorType      *Value
	NameErrorType           *Value
	ImportErrorType         *Value
	ModuleNotFoundErrorType *Value
	LookupErrorType         *Value
	KeyErrorType            *Value
	IndexErrorType          *Value
	ValueErrorType          *Value
	StopIterationType       *Value
	RuntimeErrorType        *Value
	NotImplementedErrorType *Value
)

var (
	None  *Value
	True  *Value
	False *Value

	// missing marks an omitted optional argument where None is a valid value.
	missing *Value
)

var builtinClasses []*Value

func init() {
	bootstrap()
	setupObject()
	setupType()
	setupCallables()
	setupNone()
	setupInt()
	setupStr()
	setupTuple()
	setupList()
	setupDict()
	setupIter()
	setupSuper()
	setupModule()
	setupExceptions()
}

func builtinClass(name string, bases ...*Value) *Value {
	cls := newValue(newBootstrapStore(), nil)
	cls.class = &classData{name: name, bases: bases}
	cls.class.mro = computeMRO(cls, bases)
	for _, b := range bases {
		b.attrs.registerSubclass(cls)
	}
	builtinClasses = append(builtinClasses, cls)
	return cls
}

// bootstrap creates the class graph in three passes: bare class values,
// then their __class__, then the attributes that need str and tuple.
func bootstrap() {
	ObjectType = builtinClass("object")
	TypeType = builtinClass("type", ObjectType)

	NoneType = builtinClass("NoneType", ObjectType)
	IntType = builtinClass("int", ObjectType)
	BoolType = builtinClass("bool", IntType)
	StrType = builtinClass("str", ObjectType)
	TupleType = builtinClass("tuple", ObjectType)
	ListType = builtinClass("list", ObjectType)
	DictType = builtinClass("dict", ObjectType)
	FunctionType = builtinClass("function", ObjectType)
	MethodType = builtinClass("method", ObjectType)
	PropertyType = builtinClass("property", ObjectType)
	StaticMethodType = builtinClass("staticmethod", ObjectType)
	ClassMethodType = builtinClass("classmethod", ObjectType)
	SuperType = builtinClass("super", ObjectType)
	ModuleType = builtinClass("module", ObjectType)
	IteratorType = builtinClass("iterator", ObjectType)
	RangeType = builtinClass("range", ObjectType)

	BaseExceptionType = builtinClass("BaseException", ObjectType)
	ExceptionType = builtinClass("Exception", BaseExceptionType)
	TypeErrorType = builtinClass("TypeError", ExceptionType)
	AttributeErrorType = builtinClass("AttributeError", ExceptionType)
	NameErrorType = builtinClass("NameError", ExceptionType)
	ImportErrorType = builtinClass("ImportError", ExceptionType)
	ModuleNotFoundErrorType = builtinClass("ModuleNotFoundError", ImportErrorType)
	LookupErrorType = builtinClass("LookupError", ExceptionType)
	KeyErrorType = builtinClass("KeyError", LookupErrorType)
	IndexErrorType = builtinClass("IndexError", LookupErrorType)
	ValueErrorType = builtinClass("ValueError", ExceptionType)
	StopIterationType = builtinClass("StopIteration", ExceptionType)
	RuntimeErrorType = builtinClass("RuntimeError", ExceptionType)
	NotImplementedErrorType = builtinClass("NotImplementedError", RuntimeErrorType)

	for _, c := range builtinClasses {
		c.mustSetClass(TypeType)
	}

	None = newBootstrapInstance(NoneType, nil)
	True = newBootstrapInstance(BoolType, int64(1))
	False = newBootstrapInstance(BoolType, int64(0))
	missing = newBootstrapInstance(ObjectType, nil)

	for _, c := range builtinClasses {
		describeClass(c)
		c.attrs.store.Save("__module__", Str("builtins"))
	}
}

// describeClass stores the read-only class attributes.
func describeClass(c *Value) {
	cd := c.class
	cd.basesTuple = Tuple(cd.bases...)
	cd.mroTuple = Tuple(cd.mro...)
	c.attrs.store.Save("__name__", Str(cd.name))
	c.attrs.store.Save("__bases__", cd.basesTuple)
	c.attrs.store.Save("__mro__", cd.mroTuple)
}

// BuiltinClasses lists the classes created at start-up.
func BuiltinClasses() []*Value { return append([]*Value(nil), builtinClasses...) }

// def registers a native method on a built-in class. Names accept the
// "*args" and "**kwargs" prefixes understood by Names.
func def(cls *Value, name string, handler any, names ...string) *Value {
	fn := MustFunction(name, handler, Names(names...)...)
	mustPut(cls, name, fn)
	return fn
}

func defSig(cls *Value, name string, handler any, params ...Param) *Value {
	fn := MustFunction(name, handler, params...)
	mustPut(cls, name, fn)
	return fn
}

func defStatic(cls *Value, name string, handler any, names ...string) {
	defStaticSig(cls, name, handler, Names(names...)...)
}

func defStaticSig(cls *Value, name string, handler any, params ...Param) {
	fn := MustFunction(name, handler, params...)
	mustPut(cls, name, NewInstance(StaticMethodType, &staticMethod{fn: fn}))
}

func defProperty(cls *Value, name string, getter P1Func) {
	mustPut(cls, name, NewProperty(MustFunction(name, getter, Arg("self"))))
}

func mustPut(v *Value, name string, attr *Value) {
	if err := v.attrs.Put(name, attr); err != nil {
		panic(fmt.Sprintf("object: define %s.%s: %v", v.Name(), name, err))
	}
}

func setupObject() {
	defStatic(ObjectType, "__new__", func(args []*Value) (*Value, error) {
		cls := args[0]
		if !cls.IsClass() {
			return nil, Raisef(TypeErrorType, "object.__new__(X): X is not a type object (%s)", TypeName(cls))
		}
		return NewInstance(cls, nil), nil
	}, "cls", "*args", "**kwargs")
	def(ObjectType, "__init__", func(args []*Value) (*Value, error) {
		return None, nil
	}, "self", "*args", "**kwargs")
	def(ObjectType, "__repr__", func(self *Value) (*Value, error) {
		return Str(fmt.Sprintf("<%s object at %p>", TypeName(self), self)), nil
	}, "self")
	def(ObjectType, "__str__", func(self *Value) (*Value, error) {
		s, err := Repr(self)
		if err != nil {
			return nil, err
		}
		return Str(s), nil
	}, "self")
	def(ObjectType, "__eq__", func(self, other *Value) (*Value, error) {
		return Bool(self == other), nil
	}, "self", "other")
	def(ObjectType, "__hash__", func(self *Value) (*Value, error) {
		return Int(int64(identityHash(self))), nil
	}, "self")
	def(ObjectType, "__dir__", func(self *Value) (*Value, error) {
		names := Dir(self)
		out := make([]*Value, len(names))
		for i, n := range names {
			out[i] = Str(n)
		}
		return List(out...), nil
	}, "self")

	// object's own hooks are the generic algorithms; storing them must not
	// turn the fast paths off.
	ObjectType.attrs.store.Save("__getattribute__", MustFunction("__getattribute__",
		func(self, name *Value) (*Value, error) {
			s, err := attrName(name)
			if err != nil {
				return nil, err
			}
			return genericGetAttr(self, s)
		}, Names("self", "name")...))
	ObjectType.attrs.store.Save("__setattr__", MustFunction("__setattr__",
		func(self, name, v *Value) error {
			s, err := attrName(name)
			if err != nil {
				return err
			}
			return self.attrs.Put(s, v)
		}, Names("self", "name", "value")...))
	def(ObjectType, "__delattr__", func(self, name *Value) error {
		s, err := attrName(name)
		if err != nil {
			return err
		}
		if !self.attrs.Remove(s) {
			return attributeError(self, s)
		}
		return nil
	}, "self", "name")
}

func setupNone() {
	def(NoneType, "__repr__", func(self *Value) (*Value, error) {
		return Str("None"), nil
	}, "self")
	def(NoneType, "__bool__", func(self *Value) (*Value, error) {
		return False, nil
	}, "self")
}

func attrName(name *Value) (string, error) {
	s, ok := AsString(name)
	if !ok {
		return "", Raisef(TypeErrorType, "attribute name must be string, not '%s'", TypeName(name))
	}
	return s, nil
}
