package object

import (
	"fmt"
	"strings"
)

type ParamKind uint8

const (
	ParamPlain ParamKind = iota
	ParamVarArgs
	ParamVarKeywords
)

// Param is one slot of a native callable's signature. A nil Default means
// the parameter is required.
type Param struct {
	Name    string
	Default *Value
	Kind    ParamKind
}

func Arg(name string) Param { return Param{Name: name} }

func Default(name string, v *Value) Param { return Param{Name: name, Default: v} }

func Star(name string) Param { return Param{Name: name, Kind: ParamVarArgs} }

func StarStar(name string) Param { return Param{Name: name, Kind: ParamVarKeywords} }

// Names turns plain names into params; a leading "*" or "**" marks the
// collecting slots.
func Names(names ...string) []Param {
	out := make([]Param, len(names))
	for i, n := range names {
		switch {
		case strings.HasPrefix(n, "**"):
			out[i] = StarStar(n[2:])
		case strings.HasPrefix(n, "*"):
			out[i] = Star(n[1:])
		default:
			out[i] = Arg(n)
		}
	}
	return out
}

// Signature maps call arguments onto a native handler's slots. Defaults are
// fixed when the signature is built.
type Signature struct {
	params []Param
	varArg int
	varKw  int
}

func NewSignature(params ...Param) (*Signature, error) {
	s := &Signature{params: append([]Param(nil), params...), varArg: -1, varKw: -1}
	seen := map[string]bool{}
	sawDefault := false
	for i, p := range s.params {
		if p.Name == "" {
			return nil, fmt.Errorf("signature: parameter %d has no name", i)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("signature: duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
		if s.varKw >= 0 {
			return nil, fmt.Errorf("signature: parameter %q follows **%s", p.Name, s.params[s.varKw].Name)
		}
		switch p.Kind {
		case ParamVarArgs:
			if s.varArg >= 0 {
				return nil, fmt.Errorf("signature: more than one *args parameter")
			}
			s.varArg = i
		case ParamVarKeywords:
			s.varKw = i
		default:
			if p.Default != nil {
				sawDefault = true
			} else if sawDefault && s.varArg < 0 {
				return nil, fmt.Errorf("signature: required parameter %q follows a parameter with a default", p.Name)
			}
		}
	}
	return s, nil
}

func MustSignature(params ...Param) *Signature {
	s, err := NewSignature(params...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len is the number of slots Bind fills.
func (s *Signature) Len() int { return len(s.params) }

func (s *Signature) Params() []Param { return append([]Param(nil), s.params...) }

func (s *Signature) String() string {
	parts := make([]string, len(s.params))
	for i, p := range s.params {
		switch {
		case p.Kind == ParamVarArgs:
			parts[i] = "*" + p.Name
		case p.Kind == ParamVarKeywords:
			parts[i] = "**" + p.Name
		case p.Default != nil:
			parts[i] = p.Name + "=" + safeRepr(p.Default)
		default:
			parts[i] = p.Name
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// positional is the number of slots that positional arguments may fill.
func (s *Signature) positional() int {
	if s.varArg >= 0 {
		return s.varArg
	}
	if s.varKw >= 0 {
		return s.varKw
	}
	return len(s.params)
}

// Bind resolves args into one value per slot: positionals left to right,
// then keywords by name, then defaults. *args slots receive a tuple and
// **kwargs slots a dict.
func (s *Signature) Bind(fname string, args Args) ([]*Value, error) {
	slots := make([]*Value, len(s.params))
	npos := s.positional()

	var extra []*Value
	for i, a := range args.Positional {
		if i < npos {
			slots[i] = a
			continue
		}
		if s.varArg < 0 {
			return nil, Raisef(TypeErrorType, "%s() takes %d positional arguments but %d were given",
				fname, npos, len(args.Positional))
		}
		extra = append(extra, a)
	}
	if s.varArg >= 0 {
		slots[s.varArg] = Tuple(extra...)
	}

	var kw *Value
	if s.varKw >= 0 {
		kw = NewDict()
		slots[s.varKw] = kw
	}
	for _, k := range args.Keywords {
		i := s.index(k.Name)
		if i < 0 {
			if kw == nil {
				return nil, Raisef(TypeErrorType, "%s() got an unexpected keyword argument '%s'", fname, k.Name)
			}
			kw.payload.(*Dict).setString(k.Name, k.Value)
			continue
		}
		if slots[i] != nil {
			return nil, Raisef(TypeErrorType, "%s() got multiple values for argument '%s'", fname, k.Name)
		}
		slots[i] = k.Value
	}

	for i, p := range s.params {
		if slots[i] != nil {
			continue
		}
		if p.Default == nil {
			return nil, Raisef(TypeErrorType, "%s() missing required argument: '%s'", fname, p.Name)
		}
		slots[i] = p.Default
	}
	return slots, nil
}

func (s *Signature) index(name string) int {
	for i, p := range s.params {
		if p.Kind == ParamPlain && p.Name == name {
			return i
		}
	}
	return -1
}

type Keyword struct {
	Name  string
	Value *Value
}

// Args are the arguments of one call before binding.
type Args struct {
	Positional []*Value
	Keywords   []Keyword
}

// Pos builds positional-only arguments.
func Pos(vals ...*Value) Args { return Args{Positional: vals} }

// Kw returns a copy of a with one more keyword argument.
func (a Args) Kw(name string, v *Value) Args {
	a.Keywords = append(append([]Keyword(nil), a.Keywords...), Keyword{Name: name, Value: v})
	return a
}

func (a Args) prepend(v *Value) Args {
	pos := make([]*Value, 0, len(a.Positional)+1)
	pos = append(pos, v)
	a.Positional = append(pos, a.Positional...)
	return a
}

// ArgsFrom rebuilds call arguments from a bound *args tuple and **kwargs
// dict, as native forwarding handlers receive them.
func ArgsFrom(star, starStar *Value) Args {
	var a Args
	if star != nil {
		a.Positional, _ = Elems(star)
	}
	if starStar != nil {
		if d, ok := starStar.payload.(*Dict); ok {
			for _, k := range d.Keys() {
				v, _, _ := d.Get(k)
				s, _ := k.payload.(string)
				a.Keywords = append(a.Keywords, Keyword{Name: s, Value: v})
			}
		}
	}
	return a
}
