package object

import (
	"strconv"
	"strings"
)

func Int(n int64) *Value { return NewInstance(IntType, n) }

func Bool(b bool) *Value {
	if b {
		return True
	}
	return False
}

// AsInt returns the integer held by an int or bool value.
func AsInt(v *Value) (int64, bool) {
	if v == nil {
		return 0, false
	}
	n, ok := v.payload.(int64)
	return n, ok
}

func intBinary(name string, op func(a, b int64) (*Value, error)) {
	def(IntType, name, func(self, other *Value) (*Value, error) {
		b, ok := AsInt(other)
		if !ok {
			return nil, Raisef(TypeErrorType, "unsupported operand type(s) for %s: '%s' and '%s'",
				name, TypeName(self), TypeName(other))
		}
		return op(self.payload.(int64), b)
	}, "self", "other")
}

func setupInt() {
	defStaticSig(IntType, "__new__", func(cls, v *Value) (*Value, error) {
		var n int64
		switch p := v.payload.(type) {
		case int64:
			n = p
		case string:
			parsed, err := strconv.ParseInt(strings.TrimSpace(strings.ReplaceAll(p, "_", "")), 10, 64)
			if err != nil {
				return nil, Raisef(ValueErrorType, "invalid literal for int() with base 10: %s", quoteStr(p))
			}
			n = parsed
		default:
			res, ok, err := callSpecial(v, "__index__")
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, Raisef(TypeErrorType, "int() argument must be a string or a number, not '%s'", TypeName(v))
			}
			n, _ = AsInt(res)
		}
		return NewInstance(cls, n), nil
	}, Arg("cls"), Default("x", Int(0)))
	def(IntType, "__repr__", func(self *Value) (*Value, error) {
		return Str(strconv.FormatInt(self.payload.(int64), 10)), nil
	}, "self")
	def(IntType, "__hash__", func(self *Value) (*Value, error) {
		return Int(self.payload.(int64)), nil
	}, "self")
	def(IntType, "__index__", func(self *Value) (*Value, error) {
		return self, nil
	}, "self")
	def(IntType, "__bool__", func(self *Value) (*Value, error) {
		return Bool(self.payload.(int64) != 0), nil
	}, "self")
	def(IntType, "__eq__", func(self, other *Value) (*Value, error) {
		b, ok := AsInt(other)
		return Bool(ok && b == self.payload.(int64)), nil
	}, "self", "other")
	def(IntType, "__neg__", func(self *Value) (*Value, error) {
		return Int(-self.payload.(int64)), nil
	}, "self")
	intBinary("__lt__", func(a, b int64) (*Value, error) { return Bool(a < b), nil })
	intBinary("__le__", func(a, b int64) (*Value, error) { return Bool(a <= b), nil })
	intBinary("__add__", func(a, b int64) (*Value, error) { return Int(a + b), nil })
	intBinary("__sub__", func(a, b int64) (*Value, error) { return Int(a - b), nil })
	intBinary("__mul__", func(a, b int64) (*Value, error) { return Int(a * b), nil })
	intBinary("__floordiv__", func(a, b int64) (*Value, error) {
		if b == 0 {
			return nil, Raisef(ValueErrorType, "integer division or modulo by zero")
		}
		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}
		return Int(q), nil
	})
	intBinary("__mod__", func(a, b int64) (*Value, error) {
		if b == 0 {
			return nil, Raisef(ValueErrorType, "integer division or modulo by zero")
		}
		m := a % b
		if m != 0 && ((m < 0) != (b < 0)) {
			m += b
		}
		return Int(m), nil
	})

	defStaticSig(BoolType, "__new__", func(cls, v *Value) (*Value, error) {
		t, err := Truth(v)
		if err != nil {
			return nil, err
		}
		return Bool(t), nil
	}, Arg("cls"), Default("x", False))
	def(BoolType, "__repr__", func(self *Value) (*Value, error) {
		if self.payload.(int64) != 0 {
			return Str("True"), nil
		}
		return Str("False"), nil
	}, "self")
}
