package stdlib

import (
	"strings"
	"sync"
	"unicode/utf8"

	"pyrt/internal/module"
	"pyrt/internal/object"
)

const hostBuffer = "buffer"

type stringBuffer struct {
	mu     sync.Mutex
	b      strings.Builder
	closed bool
}

func bufferOf(self *object.Value) (*stringBuffer, error) {
	buf, ok := self.Host(hostBuffer).(*stringBuffer)
	if !ok {
		return nil, object.Raisef(object.ValueErrorType, "I/O operation on uninitialized object")
	}
	return buf, nil
}

// open locks buf, failing once it is closed.
func (buf *stringBuffer) open() error {
	buf.mu.Lock()
	if buf.closed {
		buf.mu.Unlock()
		return object.Raisef(object.ValueErrorType, "I/O operation on closed file.")
	}
	return nil
}

func closeBuffer(self *object.Value) error {
	buf, err := bufferOf(self)
	if err != nil {
		return err
	}
	buf.mu.Lock()
	buf.closed = true
	buf.mu.Unlock()
	return nil
}

// StringIOType is an in-memory text stream.
var StringIOType = object.DefineClass("StringIO").
	In("io").
	Static("__new__", func(cls, initial *object.Value) (*object.Value, error) {
		buf := &stringBuffer{}
		if initial != object.None {
			s, ok := object.AsString(initial)
			if !ok {
				return nil, object.Raisef(object.TypeErrorType, "initial_value must be str or None, not %s", object.TypeName(initial))
			}
			buf.b.WriteString(s)
		}
		inst := object.NewInstance(cls, nil)
		inst.SetHost(hostBuffer, buf)
		return inst, nil
	}, object.Arg("cls"), object.Default("initial_value", object.Str(""))).
	Method("__init__", func(self, initial *object.Value) error {
		return nil
	}, object.Arg("self"), object.Default("initial_value", object.Str(""))).
	Method("write", func(self, s *object.Value) (*object.Value, error) {
		buf, err := bufferOf(self)
		if err != nil {
			return nil, err
		}
		text, ok := object.AsString(s)
		if !ok {
			return nil, object.Raisef(object.TypeErrorType, "string argument expected, got '%s'", object.TypeName(s))
		}
		if err := buf.open(); err != nil {
			return nil, err
		}
		buf.b.WriteString(text)
		buf.mu.Unlock()
		return object.Int(int64(utf8.RuneCountInString(text))), nil
	}, object.Names("self", "s")...).
	Method("getvalue", func(self *object.Value) (*object.Value, error) {
		buf, err := bufferOf(self)
		if err != nil {
			return nil, err
		}
		if err := buf.open(); err != nil {
			return nil, err
		}
		defer buf.mu.Unlock()
		return object.Str(buf.b.String()), nil
	}, object.Arg("self")).
	Method("close", closeBuffer, object.Arg("self")).
	Property("closed", func(self *object.Value) (*object.Value, error) {
		buf, err := bufferOf(self)
		if err != nil {
			return nil, err
		}
		buf.mu.Lock()
		defer buf.mu.Unlock()
		return object.Bool(buf.closed), nil
	}).
	Method("__enter__", func(self *object.Value) (*object.Value, error) {
		buf, err := bufferOf(self)
		if err != nil {
			return nil, err
		}
		if err := buf.open(); err != nil {
			return nil, err
		}
		buf.mu.Unlock()
		return self, nil
	}, object.Arg("self")).
	Method("__exit__", func(self, excInfo *object.Value) (*object.Value, error) {
		return object.False, closeBuffer(self)
	}, object.Arg("self"), object.Star("exc_info")).
	MustBuild()

func execIO(imp *module.Importer, opts *Options) module.Exec {
	return func(mod *object.Value) error {
		return populate(mod, set("StringIO", StringIOType))
	}
}
