package object

import (
	"errors"
	"fmt"
	"strings"
)

// Exception carries a raised exception value through Go error returns.
type Exception struct {
	Value *Value
}

func (e *Exception) Error() string {
	msg, err := ToStr(e.Value)
	if err != nil || msg == "" {
		return TypeName(e.Value)
	}
	return TypeName(e.Value) + ": " + msg
}

// NewException builds an instance of cls with args, without running any
// modeled __init__.
func NewException(cls *Value, args ...*Value) *Value {
	exc := NewInstance(cls, nil)
	mustPut(exc, "args", Tuple(args...))
	return exc
}

// Raise wraps an exception value as a Go error.
func Raise(exc *Value) error {
	return &Exception{Value: exc}
}

// Raisef raises cls with a formatted message.
func Raisef(cls *Value, format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	if cls == nil {
		return errors.New(msg)
	}
	return Raise(NewException(cls, Str(msg)))
}

// ExceptionOf extracts the raised exception value, if err is one.
func ExceptionOf(err error) (*Value, bool) {
	var exc *Exception
	if errors.As(err, &exc) {
		return exc.Value, true
	}
	return nil, false
}

// IsRaised reports whether err is an exception of class cls or a subclass.
func IsRaised(err error, cls *Value) bool {
	exc, ok := ExceptionOf(err)
	return ok && IsInstance(exc, cls)
}

func IsStopIteration(err error) bool { return IsRaised(err, StopIterationType) }

func excArgs(self *Value) []*Value {
	args, _ := Elems(self.attrs.Get("args"))
	return args
}

func setupExceptions() {
	defStatic(BaseExceptionType, "__new__", func(args []*Value) (*Value, error) {
		rest, _ := Elems(args[1])
		return NewException(args[0], rest...), nil
	}, "cls", "*args", "**kwargs")
	def(BaseExceptionType, "__init__", func(self, args *Value) error {
		return self.attrs.Put("args", args)
	}, "self", "*args")
	def(BaseExceptionType, "__str__", func(self *Value) (*Value, error) {
		args := excArgs(self)
		switch len(args) {
		case 0:
			return Str(""), nil
		case 1:
			s, err := ToStr(args[0])
			if err != nil {
				return nil, err
			}
			return Str(s), nil
		}
		r, err := Repr(Tuple(args...))
		if err != nil {
			return nil, err
		}
		return Str(r), nil
	}, "self")
	def(BaseExceptionType, "__repr__", func(self *Value) (*Value, error) {
		args := excArgs(self)
		parts := make([]string, len(args))
		for i, a := range args {
			r, err := Repr(a)
			if err != nil {
				return nil, err
			}
			parts[i] = r
		}
		return Str(TypeName(self) + "(" + strings.Join(parts, ", ") + ")"), nil
	}, "self")

	// KeyError shows its key the way repr does.
	def(KeyErrorType, "__str__", func(self *Value) (*Value, error) {
		args := excArgs(self)
		if len(args) != 1 {
			return CallPos(classLookup(BaseExceptionType, "__str__"), self)
		}
		r, err := Repr(args[0])
		if err != nil {
			return nil, err
		}
		return Str(r), nil
	}, "self")
}
