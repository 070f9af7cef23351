package object

import "sort"

// GetAttr reads v.name. While the value's getter fast path is on, the
// generic lookup runs directly; otherwise the class's __getattribute__ is
// called.
func GetAttr(v *Value, name string) (*Value, error) {
	if v.attrs.FastGetter() {
		return genericGetAttr(v, name)
	}
	hook, err := v.attrs.lookupType(v.Class(), "__getattribute__")
	if err != nil {
		return nil, err
	}
	if hook == nil {
		return genericGetAttr(v, name)
	}
	return CallPos(hook, Str(name))
}

func genericGetAttr(v *Value, name string) (*Value, error) {
	a, err := v.attrs.FindAttribute(name)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, attributeError(v, name)
	}
	return a, nil
}

// SetAttr writes v.name, through the class's __setattr__ once the setter
// fast path is off.
func SetAttr(v *Value, name string, x *Value) error {
	if v.attrs.FastSetter() {
		return v.attrs.Put(name, x)
	}
	hook, err := v.attrs.lookupType(v.Class(), "__setattr__")
	if err != nil {
		return err
	}
	if hook == nil {
		return v.attrs.Put(name, x)
	}
	_, err = CallPos(hook, Str(name), x)
	return err
}

// DelAttr removes a stored attribute.
func DelAttr(v *Value, name string) error {
	hook, err := v.attrs.lookupType(v.Class(), "__delattr__")
	if err != nil {
		return err
	}
	if hook == nil {
		if !v.attrs.Remove(name) {
			return attributeError(v, name)
		}
		return nil
	}
	_, err = CallPos(hook, Str(name))
	return err
}

// HasAttr reports whether GetAttr succeeds. Only AttributeError counts as
// absence; any other error is returned.
func HasAttr(v *Value, name string) (bool, error) {
	_, err := GetAttr(v, name)
	if err == nil {
		return true, nil
	}
	if IsRaised(err, AttributeErrorType) {
		return false, nil
	}
	return false, err
}

// GetAttrDefault returns def when the attribute is missing.
func GetAttrDefault(v *Value, name string, def *Value) (*Value, error) {
	a, err := GetAttr(v, name)
	if err != nil {
		if IsRaised(err, AttributeErrorType) {
			return def, nil
		}
		return nil, err
	}
	return a, nil
}

// CallAttr looks up v.name and calls it.
func CallAttr(v *Value, name string, args Args) (*Value, error) {
	fn, err := GetAttr(v, name)
	if err != nil {
		return nil, err
	}
	return Call(fn, args)
}

// CallMethod is CallAttr with positional arguments.
func CallMethod(v *Value, name string, args ...*Value) (*Value, error) {
	return CallAttr(v, name, Pos(args...))
}

// callSpecial calls a dunder method found on v's class, skipping the
// instance store. ok is false when the class does not define it.
func callSpecial(v *Value, name string, args ...*Value) (res *Value, ok bool, err error) {
	cls := v.Class()
	if cls == nil {
		return nil, false, nil
	}
	fn, err := v.attrs.lookupType(cls, name)
	if err != nil || fn == nil {
		return nil, false, err
	}
	res, err = CallPos(fn, args...)
	return res, true, err
}

func attributeError(v *Value, name string) error {
	switch {
	case v.IsClass():
		return Raisef(AttributeErrorType, "type object '%s' has no attribute '%s'", v.Name(), name)
	case IsInstance(v, ModuleType):
		if mod, ok := AsString(v.attrs.Get("__name__")); ok {
			return Raisef(AttributeErrorType, "module '%s' has no attribute '%s'", mod, name)
		}
	}
	return Raisef(AttributeErrorType, "'%s' object has no attribute '%s'", TypeName(v), name)
}

// Dir lists the names visible on v: its own store plus every class on its
// class's mro.
func Dir(v *Value) []string {
	seen := map[string]bool{}
	add := func(keys []string) {
		for _, k := range keys {
			seen[k] = true
		}
	}
	if v.IsClass() {
		for _, c := range v.class.mro {
			add(c.attrs.Keys())
		}
	} else {
		add(v.attrs.Keys())
		if cls := v.Class(); cls != nil {
			for _, c := range cls.class.mro {
				add(c.attrs.Keys())
			}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
