package object

import "fmt"

// Function is the payload of a native callable value.
type Function struct {
	name string
	sig  *Signature
	inv  *Invocator
}

func (f *Function) Name() string { return f.name }

func (f *Function) Signature() *Signature { return f.sig }

func (f *Function) call(args Args) (*Value, error) {
	slots, err := f.sig.Bind(f.name, args)
	if err != nil {
		return nil, err
	}
	return f.inv.Invoke(slots)
}

// NewFunction wraps a native handler. The invocator kind is taken from the
// handler's Go type and checked against sig.
func NewFunction(name string, target any, sig *Signature) (*Value, error) {
	kind, ok := KindOf(target)
	if !ok {
		return nil, fmt.Errorf("function %s: unsupported handler type %T", name, target)
	}
	if sig == nil {
		sig = MustSignature()
	}
	inv, err := NewInvocator(kind, target, sig)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", name, err)
	}
	return NewInstance(FunctionType, &Function{name: name, sig: sig, inv: inv}), nil
}

// MustFunction is NewFunction for handlers known to be well formed.
func MustFunction(name string, target any, params ...Param) *Value {
	fn, err := NewFunction(name, target, MustSignature(params...))
	if err != nil {
		panic(err)
	}
	return fn
}

// Method pairs a receiver with an unbound function.
type Method struct {
	Self *Value
	Func *Value
}

func NewMethod(self, fn *Value) *Value {
	return NewInstance(MethodType, &Method{Self: self, Func: fn})
}

// Property holds the getter evaluated on every attribute access.
type Property struct {
	Get *Value
}

func NewProperty(getter *Value) *Value {
	return NewInstance(PropertyType, &Property{Get: getter})
}

type staticMethod struct{ fn *Value }

type classMethod struct{ fn *Value }

// Call invokes any callable value.
func Call(callable *Value, args Args) (*Value, error) {
	switch p := callable.payload.(type) {
	case *Function:
		return p.call(args)
	case *Method:
		return Call(p.Func, args.prepend(p.Self))
	}
	cls := callable.Class()
	if cls != nil {
		hook, err := callable.attrs.lookupType(cls, "__call__")
		if err != nil {
			return nil, err
		}
		if hook != nil {
			return Call(hook, args)
		}
	}
	return nil, Raisef(TypeErrorType, "'%s' object is not callable", TypeName(callable))
}

// CallPos invokes callable with positional arguments only.
func CallPos(callable *Value, args ...*Value) (*Value, error) {
	return Call(callable, Pos(args...))
}

// Callable reports whether Call would accept v.
func Callable(v *Value) bool {
	switch v.payload.(type) {
	case *Function, *Method:
		return true
	}
	cls := v.Class()
	return cls != nil && cls.attrs.findOwn("__call__") != nil
}

func setupCallables() {
	def(FunctionType, "__repr__", func(self *Value) (*Value, error) {
		return Str(fmt.Sprintf("<function %s>", self.payload.(*Function).name)), nil
	}, "self")
	defProperty(FunctionType, "__name__", func(self *Value) (*Value, error) {
		return Str(self.payload.(*Function).name), nil
	})
	defProperty(FunctionType, "__signature__", func(self *Value) (*Value, error) {
		return Str(self.payload.(*Function).sig.String()), nil
	})

	def(MethodType, "__repr__", func(self *Value) (*Value, error) {
		m := self.payload.(*Method)
		fname := "?"
		if f, ok := m.Func.payload.(*Function); ok {
			fname = f.name
		}
		r, err := Repr(m.Self)
		if err != nil {
			return nil, err
		}
		return Str(fmt.Sprintf("<bound method %s.%s of %s>", TypeName(m.Self), fname, r)), nil
	}, "self")
	defProperty(MethodType, "__self__", func(self *Value) (*Value, error) {
		return self.payload.(*Method).Self, nil
	})
	defProperty(MethodType, "__func__", func(self *Value) (*Value, error) {
		return self.payload.(*Method).Func, nil
	})

	defStatic(PropertyType, "__new__", func(cls, getter *Value) (*Value, error) {
		if !Callable(getter) {
			return nil, Raisef(TypeErrorType, "'%s' object is not callable", TypeName(getter))
		}
		return NewInstance(cls, &Property{Get: getter}), nil
	}, "cls", "fget")
	defProperty(PropertyType, "fget", func(self *Value) (*Value, error) {
		return self.payload.(*Property).Get, nil
	})

	defStatic(StaticMethodType, "__new__", func(cls, fn *Value) (*Value, error) {
		return NewInstance(cls, &staticMethod{fn: fn}), nil
	}, "cls", "f")
	defProperty(StaticMethodType, "__func__", func(self *Value) (*Value, error) {
		return self.payload.(*staticMethod).fn, nil
	})

	defStatic(ClassMethodType, "__new__", func(cls, fn *Value) (*Value, error) {
		return NewInstance(cls, &classMethod{fn: fn}), nil
	}, "cls", "f")
	defProperty(ClassMethodType, "__func__", func(self *Value) (*Value, error) {
		return self.payload.(*classMethod).fn, nil
	})
}
