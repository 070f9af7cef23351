package object

import (
	"fmt"
	"sync/atomic"
)

type hookKind uint8

const (
	hookGetter hookKind = iota + 1
	hookSetter
)

func (k hookKind) String() string {
	if k == hookGetter {
		return "getter"
	}
	return "setter"
}

// AttrManager is the attribute resolution engine every value owns. It keeps
// the value's store, the write-once __class__ slot, and the fast-path flags
// for the class-level __getattribute__/__setattr__ hooks.
type AttrManager struct {
	owner *Value
	store Store
	class atomic.Pointer[Value]

	// set once a hook is defined here or anywhere up the chain
	slowGet atomic.Bool
	slowSet atomic.Bool

	subclasses weakSet
	instances  weakSet
}

func newAttrManager(owner *Value, store Store) *AttrManager {
	return &AttrManager{owner: owner, store: store}
}

func (m *AttrManager) Class() *Value { return m.class.Load() }

// FastGetter reports whether attribute reads on instances of this class may
// skip __getattribute__ dispatch.
func (m *AttrManager) FastGetter() bool { return !m.slowGet.Load() }

// FastSetter reports whether attribute writes on instances of this class may
// skip __setattr__ dispatch.
func (m *AttrManager) FastSetter() bool { return !m.slowSet.Load() }

// Get returns the directly stored attribute, or nil.
func (m *AttrManager) Get(name string) *Value {
	if name == "__class__" {
		return m.Class()
	}
	v, _ := m.store.Load(name)
	return v
}

// Keys lists the names held by the store.
func (m *AttrManager) Keys() []string { return m.store.Keys() }

// Put stores an attribute. __class__ goes to its dedicated slot and can be
// set only once; defining __getattribute__ or __setattr__ turns the
// matching fast path off for this class and everything registered under it.
func (m *AttrManager) Put(name string, v *Value) error {
	if v == nil {
		return fmt.Errorf("object: nil value for attribute %q", name)
	}
	switch name {
	case "__class__":
		return m.setClass(v)
	case "__mro__":
		if cd := m.owner.class; cd != nil && cd.mro != nil {
			return Raisef(TypeErrorType, "readonly attribute '__mro__' of '%s'", cd.name)
		}
	}
	m.store.Save(name, v)

	switch name {
	case "__name__":
		if cd := m.owner.class; cd != nil {
			if s, ok := v.payload.(string); ok {
				cd.name = s
			}
		}
	case "__getattribute__":
		m.disable(hookGetter)
	case "__setattr__":
		m.disable(hookSetter)
	}
	return nil
}

// Remove deletes a stored attribute.
func (m *AttrManager) Remove(name string) bool {
	if name == "__class__" || name == "__mro__" {
		return false
	}
	return m.store.Remove(name)
}

func (m *AttrManager) setClass(cls *Value) error {
	if !m.class.CompareAndSwap(nil, cls) {
		return Raisef(TypeErrorType, "class already set")
	}
	cls.attrs.registerInstance(m.owner)
	return nil
}

func (m *AttrManager) registerInstance(inst *Value) {
	if inst == m.owner {
		return
	}
	m.instances.add(inst)
	m.inherit(inst)
}

func (m *AttrManager) registerSubclass(cls *Value) {
	m.subclasses.add(cls)
	m.inherit(cls)
}

// inherit copies a disabled state onto a newly registered value.
func (m *AttrManager) inherit(v *Value) {
	if m.slowGet.Load() {
		v.attrs.disable(hookGetter)
	}
	if m.slowSet.Load() {
		v.attrs.disable(hookSetter)
	}
}

func (m *AttrManager) flag(k hookKind) *atomic.Bool {
	if k == hookGetter {
		return &m.slowGet
	}
	return &m.slowSet
}

// disable flips the flag and broadcasts to subclasses and instances. A value
// already disabled has had its registered values disabled too, so the
// broadcast stops there.
func (m *AttrManager) disable(k hookKind) {
	if m.flag(k).Swap(true) {
		return
	}
	if m.owner.class != nil {
		log.Debugf("attribute %s fast path disabled for class %s", k, m.owner.class.name)
	}
	for _, c := range m.subclasses.snapshot() {
		c.attrs.disable(k)
	}
	for _, inst := range m.instances.snapshot() {
		inst.attrs.disable(k)
	}
}

// FindAttribute performs instance lookup: own store, then the class's mro
// with descriptor conversion, then a __getattr__ hook. It returns nil
// without error when nothing is found.
func (m *AttrManager) FindAttribute(name string) (*Value, error) {
	if a := m.findOwn(name); a != nil {
		if m.owner.class != nil {
			return unwrapForClass(a, m.owner), nil
		}
		return a, nil
	}
	cls := m.Class()
	if cls == nil {
		return nil, nil
	}
	a, err := m.lookupType(cls, name)
	if err != nil || a != nil {
		return a, err
	}
	getattr, err := m.lookupType(cls, "__getattr__")
	if err != nil || getattr == nil {
		return nil, err
	}
	return Call(getattr, Pos(Str(name)))
}

// findOwn searches the value's store. A class searches the stores along
// its own mro so inherited class attributes resolve without binding.
func (m *AttrManager) findOwn(name string) *Value {
	if cd := m.owner.class; cd != nil && cd.mro != nil {
		for _, c := range cd.mro {
			if a := c.attrs.Get(name); a != nil {
				return a
			}
		}
		return nil
	}
	return m.Get(name)
}

// lookupType searches cls's mro and converts the hit for m's owner.
func (m *AttrManager) lookupType(cls *Value, name string) (*Value, error) {
	raw := cls.attrs.findOwn(name)
	if raw == nil {
		return nil, nil
	}
	return m.convert(raw, cls)
}

// SearchAttribute looks name up in instanceClass's mro starting after
// start. It backs super().
func (m *AttrManager) SearchAttribute(start, instanceClass *Value, name string) (*Value, error) {
	raw, err := searchAfter(start, instanceClass, name)
	if err != nil || raw == nil {
		return nil, err
	}
	return m.convert(raw, instanceClass)
}

func searchAfter(start, instanceClass *Value, name string) (*Value, error) {
	if start == ObjectType {
		return nil, nil
	}
	if !instanceClass.IsClass() {
		return nil, Raisef(TypeErrorType, "'%s' object is not a class", TypeName(instanceClass))
	}
	started := false
	for _, c := range instanceClass.class.mro {
		if c == start {
			started = true
			continue
		}
		if !started {
			continue
		}
		if a := c.attrs.Get(name); a != nil {
			return a, nil
		}
	}
	return nil, nil
}

// convert applies descriptor binding. Properties are evaluated on every
// access; there is no caching and no setter.
func (m *AttrManager) convert(a, cls *Value) (*Value, error) {
	switch p := a.payload.(type) {
	case *Function:
		return NewMethod(m.owner, a), nil
	case *Property:
		return Call(p.Get, Pos(m.owner))
	case *staticMethod:
		return p.fn, nil
	case *classMethod:
		return NewMethod(cls, p.fn), nil
	}
	return a, nil
}
