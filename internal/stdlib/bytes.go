package stdlib

import (
	"fmt"
	"strings"

	"pyrt/internal/object"
)

const hostBytes = "bytes"

func bytesOf(v *object.Value) ([]byte, bool) {
	b, ok := v.Host(hostBytes).([]byte)
	return b, ok
}

func selfBytes(self *object.Value) ([]byte, error) {
	b, ok := bytesOf(self)
	if !ok {
		return nil, object.Raisef(object.TypeErrorType, "descriptor requires a 'bytes' object but received '%s'", object.TypeName(self))
	}
	return b, nil
}

func byteValues(b []byte) []*object.Value {
	vals := make([]*object.Value, len(b))
	for i, c := range b {
		vals[i] = object.Int(int64(c))
	}
	return vals
}

// BytesType is an immutable sequence of ints in range(0, 256).
var BytesType = object.DefineClass("bytes").
	In("builtins").
	Static("__new__", func(cls, source *object.Value) (*object.Value, error) {
		var b []byte
		err := object.ForEach(source, func(v *object.Value) error {
			n, ok := object.AsInt(v)
			if !ok {
				return object.Raisef(object.TypeErrorType, "'%s' object cannot be interpreted as an integer", object.TypeName(v))
			}
			if n < 0 || n > 255 {
				return object.Raisef(object.ValueErrorType, "bytes must be in range(0, 256)")
			}
			b = append(b, byte(n))
			return nil
		})
		if err != nil {
			return nil, err
		}
		inst := object.NewInstance(cls, nil)
		inst.SetHost(hostBytes, b)
		return inst, nil
	}, object.Arg("cls"), object.Default("iterable_of_ints", object.Tuple())).
	Method("__init__", func(self, source *object.Value) error {
		return nil
	}, object.Arg("self"), object.Default("iterable_of_ints", object.Tuple())).
	Method("__len__", func(self *object.Value) (*object.Value, error) {
		b, err := selfBytes(self)
		if err != nil {
			return nil, err
		}
		return object.Int(int64(len(b))), nil
	}, object.Arg("self")).
	Method("__iter__", func(self *object.Value) (*object.Value, error) {
		b, err := selfBytes(self)
		if err != nil {
			return nil, err
		}
		return object.Iter(object.Tuple(byteValues(b)...))
	}, object.Arg("self")).
	Method("__getitem__", func(self, index *object.Value) (*object.Value, error) {
		b, err := selfBytes(self)
		if err != nil {
			return nil, err
		}
		i, ok := object.AsInt(index)
		if !ok {
			return nil, object.Raisef(object.TypeErrorType, "byte indices must be integers, not %s", object.TypeName(index))
		}
		if i < 0 {
			i += int64(len(b))
		}
		if i < 0 || i >= int64(len(b)) {
			return nil, object.Raisef(object.IndexErrorType, "index out of range")
		}
		return object.Int(int64(b[i])), nil
	}, object.Names("self", "index")...).
	Method("__eq__", func(self, other *object.Value) (*object.Value, error) {
		a, err := selfBytes(self)
		if err != nil {
			return nil, err
		}
		b, ok := bytesOf(other)
		return object.Bool(ok && string(a) == string(b)), nil
	}, object.Names("self", "other")...).
	Method("__hash__", func(self *object.Value) (*object.Value, error) {
		b, err := selfBytes(self)
		if err != nil {
			return nil, err
		}
		h, err := object.Hash(object.Str(string(b)))
		if err != nil {
			return nil, err
		}
		return object.Int(h), nil
	}, object.Arg("self")).
	Method("__repr__", func(self *object.Value) (*object.Value, error) {
		b, err := selfBytes(self)
		if err != nil {
			return nil, err
		}
		return object.Str(bytesRepr(b)), nil
	}, object.Arg("self")).
	MustBuild()

func bytesRepr(b []byte) string {
	var sb strings.Builder
	sb.WriteString("b'")
	for _, c := range b {
		switch {
		case c == '\'' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
