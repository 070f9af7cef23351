package object

import "fmt"

// NewModule creates an empty module value named name.
func NewModule(name string) *Value {
	m := NewInstance(ModuleType, nil)
	initModule(m, name, None)
	return m
}

func initModule(m *Value, name string, doc *Value) {
	mustPut(m, "__name__", Str(name))
	mustPut(m, "__doc__", doc)
	mustPut(m, "__package__", None)
	mustPut(m, "__loader__", None)
	mustPut(m, "__spec__", None)
}

// ModuleName returns a module's __name__, or "" when it has none.
func ModuleName(m *Value) string {
	s, _ := AsString(m.attrs.Get("__name__"))
	return s
}

func setupModule() {
	defStatic(ModuleType, "__new__", func(args []*Value) (*Value, error) {
		return NewInstance(args[0], nil), nil
	}, "cls", "*args", "**kwargs")
	defSig(ModuleType, "__init__", func(self, name, doc *Value) error {
		s, ok := AsString(name)
		if !ok {
			return Raisef(TypeErrorType, "module.__init__() argument 'name' must be str, not %s", TypeName(name))
		}
		initModule(self, s, doc)
		return nil
	}, Arg("self"), Arg("name"), Default("doc", None))
	def(ModuleType, "__repr__", func(self *Value) (*Value, error) {
		return Str(fmt.Sprintf("<module '%s'>", ModuleName(self))), nil
	}, "self")
}
