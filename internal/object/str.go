package object

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func Str(s string) *Value { return NewInstance(StrType, s) }

// AsString returns the text of a str value or of a str subclass instance.
func AsString(v *Value) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.payload.(string)
	return s, ok
}

func quoteStr(s string) string {
	q := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = `"`
	}
	var b strings.Builder
	b.WriteString(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		case string(r) == q:
			b.WriteString(`\` + q)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(q)
	return b.String()
}

// casing returns a function applying a fresh Caser; Casers keep state
// between calls and cannot be shared.
func casing(newCaser func() cases.Caser) func(string) string {
	return func(s string) string { return newCaser().String(s) }
}

func strArg(fname string, v *Value) (string, error) {
	s, ok := AsString(v)
	if !ok {
		return "", Raisef(TypeErrorType, "%s() argument must be str, not %s", fname, TypeName(v))
	}
	return s, nil
}

func strMethod(name string, fn func(string) string) {
	def(StrType, name, func(self *Value) (*Value, error) {
		return Str(fn(self.payload.(string))), nil
	}, "self")
}

func setupStr() {
	defStaticSig(StrType, "__new__", func(cls, v *Value) (*Value, error) {
		s, err := ToStr(v)
		if err != nil {
			return nil, err
		}
		return NewInstance(cls, s), nil
	}, Arg("cls"), Default("object", Str("")))
	def(StrType, "__repr__", func(self *Value) (*Value, error) {
		return Str(quoteStr(self.payload.(string))), nil
	}, "self")
	def(StrType, "__str__", func(self *Value) (*Value, error) {
		if self.Class() == StrType {
			return self, nil
		}
		return Str(self.payload.(string)), nil
	}, "self")
	def(StrType, "__len__", func(self *Value) (*Value, error) {
		return Int(int64(len([]rune(self.payload.(string))))), nil
	}, "self")
	def(StrType, "__eq__", func(self, other *Value) (*Value, error) {
		o, ok := AsString(other)
		return Bool(ok && o == self.payload.(string)), nil
	}, "self", "other")
	def(StrType, "__lt__", func(self, other *Value) (*Value, error) {
		o, err := strArg("__lt__", other)
		if err != nil {
			return nil, err
		}
		return Bool(self.payload.(string) < o), nil
	}, "self", "other")
	def(StrType, "__le__", func(self, other *Value) (*Value, error) {
		o, err := strArg("__le__", other)
		if err != nil {
			return nil, err
		}
		return Bool(self.payload.(string) <= o), nil
	}, "self", "other")
	def(StrType, "__hash__", func(self *Value) (*Value, error) {
		return Int(int64(fnv64(self.payload.(string)))), nil
	}, "self")
	def(StrType, "__add__", func(self, other *Value) (*Value, error) {
		o, ok := AsString(other)
		if !ok {
			return nil, Raisef(TypeErrorType, "can only concatenate str (not \"%s\") to str", TypeName(other))
		}
		return Str(self.payload.(string) + o), nil
	}, "self", "other")
	def(StrType, "__contains__", func(self, sub *Value) (*Value, error) {
		o, err := strArg("__contains__", sub)
		if err != nil {
			return nil, err
		}
		return Bool(strings.Contains(self.payload.(string), o)), nil
	}, "self", "sub")
	def(StrType, "__getitem__", func(self, idx *Value) (*Value, error) {
		runes := []rune(self.payload.(string))
		i, err := seqIndex(idx, len(runes), "string")
		if err != nil {
			return nil, err
		}
		return Str(string(runes[i])), nil
	}, "self", "index")
	def(StrType, "__iter__", func(self *Value) (*Value, error) {
		runes := []rune(self.payload.(string))
		out := make([]*Value, len(runes))
		for i, r := range runes {
			out[i] = Str(string(r))
		}
		return SeqIter(out), nil
	}, "self")

	strMethod("upper", casing(func() cases.Caser { return cases.Upper(language.Und) }))
	strMethod("lower", casing(func() cases.Caser { return cases.Lower(language.Und) }))
	strMethod("title", casing(func() cases.Caser { return cases.Title(language.Und) }))
	strMethod("casefold", casing(func() cases.Caser { return cases.Fold() }))
	strMethod("strip", strings.TrimSpace)

	def(StrType, "startswith", func(self, prefix *Value) (*Value, error) {
		p, err := strArg("startswith", prefix)
		if err != nil {
			return nil, err
		}
		return Bool(strings.HasPrefix(self.payload.(string), p)), nil
	}, "self", "prefix")
	def(StrType, "endswith", func(self, suffix *Value) (*Value, error) {
		p, err := strArg("endswith", suffix)
		if err != nil {
			return nil, err
		}
		return Bool(strings.HasSuffix(self.payload.(string), p)), nil
	}, "self", "suffix")
	def(StrType, "replace", func(self, old, repl *Value) (*Value, error) {
		o, err := strArg("replace", old)
		if err != nil {
			return nil, err
		}
		r, err := strArg("replace", repl)
		if err != nil {
			return nil, err
		}
		return Str(strings.ReplaceAll(self.payload.(string), o, r)), nil
	}, "self", "old", "new")
	defSig(StrType, "split", func(self, sep *Value) (*Value, error) {
		s := self.payload.(string)
		var parts []string
		if sep == None {
			parts = strings.Fields(s)
		} else {
			p, err := strArg("split", sep)
			if err != nil {
				return nil, err
			}
			if p == "" {
				return nil, Raisef(ValueErrorType, "empty separator")
			}
			parts = strings.Split(s, p)
		}
		out := make([]*Value, len(parts))
		for i, p := range parts {
			out[i] = Str(p)
		}
		return List(out...), nil
	}, Arg("self"), Default("sep", None))
	def(StrType, "join", func(self, items *Value) (*Value, error) {
		var parts []string
		err := ForEach(items, func(item *Value) error {
			s, ok := AsString(item)
			if !ok {
				return Raisef(TypeErrorType, "sequence item %d: expected str instance, %s found", len(parts), TypeName(item))
			}
			parts = append(parts, s)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return Str(strings.Join(parts, self.payload.(string))), nil
	}, "self", "iterable")
	def(StrType, "format", func(args []*Value) (*Value, error) {
		return strFormat(args[0].payload.(string), ArgsFrom(args[1], args[2]))
	}, "self", "*args", "**kwargs")
}

// strFormat supports the "{}", "{0}" and "{name}" replacement fields.
func strFormat(format string, args Args) (*Value, error) {
	var b strings.Builder
	auto := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c == '}' && i+1 < len(format) && format[i+1] == '}' {
			b.WriteByte('}')
			i++
			continue
		}
		if c != '{' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(format) && format[i+1] == '{' {
			b.WriteByte('{')
			i++
			continue
		}
		end := strings.IndexByte(format[i:], '}')
		if end < 0 {
			return nil, Raisef(ValueErrorType, "Single '{' encountered in format string")
		}
		field := format[i+1 : i+end]
		i += end

		var v *Value
		switch {
		case field == "":
			if auto >= len(args.Positional) {
				return nil, Raisef(IndexErrorType, "Replacement index %d out of range for positional args tuple", auto)
			}
			v = args.Positional[auto]
			auto++
		case field[0] >= '0' && field[0] <= '9':
			n := 0
			for _, d := range field {
				if d < '0' || d > '9' {
					return nil, Raisef(ValueErrorType, "invalid format field %q", field)
				}
				n = n*10 + int(d-'0')
			}
			if n >= len(args.Positional) {
				return nil, Raisef(IndexErrorType, "Replacement index %d out of range for positional args tuple", n)
			}
			v = args.Positional[n]
		default:
			for _, k := range args.Keywords {
				if k.Name == field {
					v = k.Value
				}
			}
			if v == nil {
				return nil, keyError(Str(field))
			}
		}
		s, err := ToStr(v)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
	}
	return Str(b.String()), nil
}
