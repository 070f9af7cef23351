package object

import "fmt"

// DefineFunction creates a native function and stores it on target, a
// module or a class. The function's __module__ is taken from the target.
func DefineFunction(target *Value, name string, handler any, params ...Param) (*Value, error) {
	fn, err := newOwnedFunction(target, name, handler, params)
	if err != nil {
		return nil, err
	}
	if err := target.attrs.Put(name, fn); err != nil {
		return nil, err
	}
	return fn, nil
}

// DefineDecorated is DefineFunction with the function passed through
// decorator (property, classmethod, staticmethod or any callable) before it
// is stored.
func DefineDecorated(target *Value, name string, decorator *Value, handler any, params ...Param) (*Value, error) {
	fn, err := newOwnedFunction(target, name, handler, params)
	if err != nil {
		return nil, err
	}
	wrapped, err := CallPos(decorator, fn)
	if err != nil {
		return nil, err
	}
	if err := target.attrs.Put(name, wrapped); err != nil {
		return nil, err
	}
	return wrapped, nil
}

func newOwnedFunction(target *Value, name string, handler any, params []Param) (*Value, error) {
	sig, err := NewSignature(params...)
	if err != nil {
		return nil, fmt.Errorf("define %s: %w", name, err)
	}
	fn, err := NewFunction(name, handler, sig)
	if err != nil {
		return nil, err
	}
	if mod := ownerModule(target); mod != nil {
		mustPut(fn, "__module__", mod)
	}
	return fn, nil
}

func ownerModule(target *Value) *Value {
	if target.IsClass() {
		return target.attrs.Get("__module__")
	}
	if IsInstance(target, ModuleType) {
		return target.attrs.Get("__name__")
	}
	return nil
}

// ClassDefiner collects native definitions for a new class. Errors are
// kept and reported by Build.
type ClassDefiner struct {
	meta   *Value
	name   string
	bases  []*Value
	ns     *Value
	module *Value
	err    error
}

func DefineClass(name string, bases ...*Value) *ClassDefiner {
	return &ClassDefiner{name: name, bases: bases, ns: NewDict()}
}

func (d *ClassDefiner) Meta(meta *Value) *ClassDefiner {
	d.meta = meta
	return d
}

// In sets the module the class and its functions report as __module__.
func (d *ClassDefiner) In(module string) *ClassDefiner {
	d.module = Str(module)
	d.set("__module__", d.module)
	return d
}

func (d *ClassDefiner) Attr(name string, v *Value) *ClassDefiner {
	d.set(name, v)
	return d
}

func (d *ClassDefiner) Method(name string, handler any, params ...Param) *ClassDefiner {
	if fn := d.function(name, handler, params); fn != nil {
		d.set(name, fn)
	}
	return d
}

func (d *ClassDefiner) Static(name string, handler any, params ...Param) *ClassDefiner {
	return d.wrapped(StaticMethodType, name, handler, params)
}

func (d *ClassDefiner) ClassMethod(name string, handler any, params ...Param) *ClassDefiner {
	return d.wrapped(ClassMethodType, name, handler, params)
}

// Property defines a read-only attribute computed by getter on every
// access.
func (d *ClassDefiner) Property(name string, getter P1Func) *ClassDefiner {
	return d.wrapped(PropertyType, name, getter, []Param{Arg("self")})
}

func (d *ClassDefiner) wrapped(decorator *Value, name string, handler any, params []Param) *ClassDefiner {
	fn := d.function(name, handler, params)
	if fn == nil {
		return d
	}
	w, err := CallPos(decorator, fn)
	if err != nil {
		d.fail(err)
		return d
	}
	d.set(name, w)
	return d
}

func (d *ClassDefiner) function(name string, handler any, params []Param) *Value {
	if d.err != nil {
		return nil
	}
	sig, err := NewSignature(params...)
	if err != nil {
		d.fail(fmt.Errorf("%s.%s: %w", d.name, name, err))
		return nil
	}
	fn, err := NewFunction(name, handler, sig)
	if err != nil {
		d.fail(fmt.Errorf("%s.%s: %w", d.name, name, err))
		return nil
	}
	if d.module != nil {
		mustPut(fn, "__module__", d.module)
	}
	return fn
}

func (d *ClassDefiner) set(name string, v *Value) {
	if d.err == nil {
		d.ns.payload.(*Dict).setString(name, v)
	}
}

func (d *ClassDefiner) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// Build creates the class.
func (d *ClassDefiner) Build() (*Value, error) {
	if d.err != nil {
		return nil, d.err
	}
	return NewClass(d.meta, d.name, d.bases, d.ns)
}

// Into builds the class and stores it on target under its name.
func (d *ClassDefiner) Into(target *Value) (*Value, error) {
	cls, err := d.Build()
	if err != nil {
		return nil, err
	}
	if err := target.attrs.Put(d.name, cls); err != nil {
		return nil, err
	}
	return cls, nil
}

// MustBuild is Build for definitions fixed at compile time.
func (d *ClassDefiner) MustBuild() *Value {
	cls, err := d.Build()
	if err != nil {
		panic(err)
	}
	return cls
}
