package object

import "fmt"

// ToStr converts v with its class's __str__.
func ToStr(v *Value) (string, error) {
	if s, ok := v.payload.(string); ok && v.Class() == StrType {
		return s, nil
	}
	res, ok, err := callSpecial(v, "__str__")
	if err != nil {
		return "", err
	}
	if !ok {
		return Repr(v)
	}
	s, isStr := AsString(res)
	if !isStr {
		return "", Raisef(TypeErrorType, "__str__ returned non-string (type %s)", TypeName(res))
	}
	return s, nil
}

// Repr converts v with its class's __repr__.
func Repr(v *Value) (string, error) {
	res, ok, err := callSpecial(v, "__repr__")
	if err != nil {
		return "", err
	}
	if !ok {
		return fmt.Sprintf("<%s object at %p>", TypeName(v), v), nil
	}
	s, isStr := AsString(res)
	if !isStr {
		return "", Raisef(TypeErrorType, "__repr__ returned non-string (type %s)", TypeName(res))
	}
	return s, nil
}

func safeRepr(v *Value) string {
	s, err := Repr(v)
	if err != nil {
		return "<" + TypeName(v) + ">"
	}
	return s
}

// Truth applies __bool__, then __len__; anything else is true.
func Truth(v *Value) (bool, error) {
	switch v {
	case None, False:
		return false, nil
	case True:
		return true, nil
	}
	res, ok, err := callSpecial(v, "__bool__")
	if err != nil {
		return false, err
	}
	if ok {
		n, isInt := AsInt(res)
		if !isInt || res.Class() != BoolType {
			return false, Raisef(TypeErrorType, "__bool__ should return bool, returned %s", TypeName(res))
		}
		return n != 0, nil
	}
	res, ok, err = callSpecial(v, "__len__")
	if err != nil || !ok {
		return true, err
	}
	n, _ := AsInt(res)
	return n != 0, nil
}

// Equal compares with the left operand's __eq__.
func Equal(a, b *Value) (bool, error) {
	if a == b {
		return true, nil
	}
	res, ok, err := callSpecial(a, "__eq__", b)
	if err != nil || !ok {
		return false, err
	}
	return Truth(res)
}

// Less compares with the left operand's __lt__.
func Less(a, b *Value) (bool, error) {
	res, ok, err := callSpecial(a, "__lt__", b)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, Raisef(TypeErrorType, "'<' not supported between instances of '%s' and '%s'",
			TypeName(a), TypeName(b))
	}
	return Truth(res)
}

// LessEqual evaluates a <= b through __le__.
func LessEqual(a, b *Value) (bool, error) {
	res, ok, err := callSpecial(a, "__le__", b)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, Raisef(TypeErrorType, "'<=' not supported between instances of '%s' and '%s'",
			TypeName(a), TypeName(b))
	}
	return Truth(res)
}

// Len calls __len__.
func Len(v *Value) (int64, error) {
	res, ok, err := callSpecial(v, "__len__")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, Raisef(TypeErrorType, "object of type '%s' has no len()", TypeName(v))
	}
	n, _ := AsInt(res)
	return n, nil
}

// GetItem evaluates v[key].
func GetItem(v, key *Value) (*Value, error) {
	res, ok, err := callSpecial(v, "__getitem__", key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Raisef(TypeErrorType, "'%s' object is not subscriptable", TypeName(v))
	}
	return res, nil
}

// SetItem evaluates v[key] = x.
func SetItem(v, key, x *Value) error {
	_, ok, err := callSpecial(v, "__setitem__", key, x)
	if err != nil {
		return err
	}
	if !ok {
		return Raisef(TypeErrorType, "'%s' object does not support item assignment", TypeName(v))
	}
	return nil
}

// Contains evaluates x in v, falling back to iteration.
func Contains(v, x *Value) (bool, error) {
	res, ok, err := callSpecial(v, "__contains__", x)
	if err != nil {
		return false, err
	}
	if ok {
		return Truth(res)
	}
	found := false
	err = ForEach(v, func(item *Value) error {
		if found {
			return nil
		}
		eq, err := Equal(item, x)
		found = eq
		return err
	})
	return found, err
}
