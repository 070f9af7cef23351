package object

import (
	"fmt"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("pyrt.object")

// Value is the single runtime representation of every modeled object,
// classes included. Its class lives in a write-once slot of the attribute
// manager; kind-specific data (string contents, tuple elements, native
// function handlers) lives in the payload and never changes after
// construction.
type Value struct {
	attrs   *AttrManager
	payload any
	class   *classData
	host    map[string]any
}

type classData struct {
	name       string
	bases      []*Value
	mro        []*Value
	mroTuple   *Value
	basesTuple *Value
}

func newValue(store Store, payload any) *Value {
	v := &Value{payload: payload}
	v.attrs = newAttrManager(v, store)
	return v
}

// NewInstance creates a value of class cls carrying payload. The instance
// gets a dict-backed attribute store.
func NewInstance(cls *Value, payload any) *Value {
	v := newValue(newDictStore(), payload)
	v.mustSetClass(cls)
	return v
}

func newBootstrapInstance(cls *Value, payload any) *Value {
	v := newValue(newBootstrapStore(), payload)
	v.mustSetClass(cls)
	return v
}

func (v *Value) mustSetClass(cls *Value) {
	if err := v.attrs.Put("__class__", cls); err != nil {
		panic(fmt.Sprintf("object: cannot set class of fresh value: %v", err))
	}
}

// Attrs returns the attribute resolution engine owned by v.
func (v *Value) Attrs() *AttrManager { return v.attrs }

// Class returns the value's class, or nil while it is still being
// bootstrapped.
func (v *Value) Class() *Value { return v.attrs.Class() }

// Payload returns the kind data the value was created with.
func (v *Value) Payload() any { return v.payload }

// IsClass reports whether v was built by the class builder.
func (v *Value) IsClass() bool { return v.class != nil }

// Name returns the class name for class values and "" otherwise.
func (v *Value) Name() string {
	if v.class == nil {
		return ""
	}
	return v.class.name
}

// MRO returns a copy of the class's method resolution order.
func (v *Value) MRO() []*Value {
	if v.class == nil {
		return nil
	}
	return append([]*Value(nil), v.class.mro...)
}

// Bases returns a copy of the class's declared bases.
func (v *Value) Bases() []*Value {
	if v.class == nil {
		return nil
	}
	return append([]*Value(nil), v.class.bases...)
}

// SetHost attaches an opaque host-side object to v.
func (v *Value) SetHost(key string, val any) {
	if v.host == nil {
		v.host = map[string]any{}
	}
	v.host[key] = val
}

// Host returns a host-side object stored with SetHost.
func (v *Value) Host(key string) any {
	if v.host == nil {
		return nil
	}
	return v.host[key]
}

// TypeName returns the name of v's class.
func TypeName(v *Value) string {
	if cls := v.Class(); cls != nil {
		return cls.Name()
	}
	return "?"
}

func (v *Value) String() string {
	s, err := ToStr(v)
	if err != nil {
		return fmt.Sprintf("<%s object at %p>", TypeName(v), v)
	}
	return s
}
