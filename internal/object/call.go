package object

import "fmt"

// Kind tags the native handler shape an Invocator dispatches to.
type Kind uint8

const (
	V1 Kind = iota + 1
	V2
	V3
	V4
	V5
	P1
	P2
	P3
	P4
	P5
	P6
	Variadic
)

var kindNames = [...]string{
	V1: "V1", V2: "V2", V3: "V3", V4: "V4", V5: "V5",
	P1: "P1", P2: "P2", P3: "P3", P4: "P4", P5: "P5", P6: "P6",
	Variadic: "Variadic",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Arity is the number of slots the handler takes; -1 for Variadic.
func (k Kind) Arity() int {
	switch {
	case k >= V1 && k <= V5:
		return int(k-V1) + 1
	case k >= P1 && k <= P6:
		return int(k-P1) + 1
	case k == Variadic:
		return -1
	}
	return 0
}

type (
	V1Func = func(a *Value) error
	V2Func = func(a, b *Value) error
	V3Func = func(a, b, c *Value) error
	V4Func = func(a, b, c, d *Value) error
	V5Func = func(a, b, c, d, e *Value) error

	P1Func = func(a *Value) (*Value, error)
	P2Func = func(a, b *Value) (*Value, error)
	P3Func = func(a, b, c *Value) (*Value, error)
	P4Func = func(a, b, c, d *Value) (*Value, error)
	P5Func = func(a, b, c, d, e *Value) (*Value, error)
	P6Func = func(a, b, c, d, e, f *Value) (*Value, error)

	VariadicFunc = func(args []*Value) (*Value, error)
)

// Invocator forwards bound argument slots to a native handler.
type Invocator struct {
	kind   Kind
	target any
}

// KindOf reports the tag matching a handler's Go type.
func KindOf(target any) (Kind, bool) {
	switch target.(type) {
	case V1Func:
		return V1, true
	case V2Func:
		return V2, true
	case V3Func:
		return V3, true
	case V4Func:
		return V4, true
	case V5Func:
		return V5, true
	case P1Func:
		return P1, true
	case P2Func:
		return P2, true
	case P3Func:
		return P3, true
	case P4Func:
		return P4, true
	case P5Func:
		return P5, true
	case P6Func:
		return P6, true
	case VariadicFunc:
		return Variadic, true
	}
	return 0, false
}

// NewInvocator checks that target has the shape kind expects and that the
// signature fills exactly the handler's slots.
func NewInvocator(kind Kind, target any, sig *Signature) (*Invocator, error) {
	if target == nil {
		return nil, fmt.Errorf("invocator %s: nil handler", kind)
	}
	got, ok := KindOf(target)
	if !ok {
		return nil, fmt.Errorf("invocator %s: unsupported handler type %T", kind, target)
	}
	if got != kind {
		return nil, fmt.Errorf("invocator %s: handler has shape %s", kind, got)
	}
	if n := kind.Arity(); n >= 0 && sig.Len() != n {
		return nil, fmt.Errorf("invocator %s: signature %s has %d parameters, want %d", kind, sig, sig.Len(), n)
	}
	return &Invocator{kind: kind, target: target}, nil
}

func (inv *Invocator) Kind() Kind { return inv.kind }

// Invoke calls the handler with already bound slots. Handlers without a
// result yield None.
func (inv *Invocator) Invoke(a []*Value) (*Value, error) {
	var (
		res *Value
		err error
	)
	switch inv.kind {
	case V1:
		err = inv.target.(V1Func)(a[0])
	case V2:
		err = inv.target.(V2Func)(a[0], a[1])
	case V3:
		err = inv.target.(V3Func)(a[0], a[1], a[2])
	case V4:
		err = inv.target.(V4Func)(a[0], a[1], a[2], a[3])
	case V5:
		err = inv.target.(V5Func)(a[0], a[1], a[2], a[3], a[4])
	case P1:
		res, err = inv.target.(P1Func)(a[0])
	case P2:
		res, err = inv.target.(P2Func)(a[0], a[1])
	case P3:
		res, err = inv.target.(P3Func)(a[0], a[1], a[2])
	case P4:
		res, err = inv.target.(P4Func)(a[0], a[1], a[2], a[3])
	case P5:
		res, err = inv.target.(P5Func)(a[0], a[1], a[2], a[3], a[4])
	case P6:
		res, err = inv.target.(P6Func)(a[0], a[1], a[2], a[3], a[4], a[5])
	case Variadic:
		res, err = inv.target.(VariadicFunc)(a)
	default:
		return nil, fmt.Errorf("invocator: unknown kind %s", inv.kind)
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = None
	}
	return res, nil
}
