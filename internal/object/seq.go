package object

import "strings"

type tupleData struct{ elems []*Value }

type listData struct{ elems []*Value }

func Tuple(elems ...*Value) *Value {
	return NewInstance(TupleType, &tupleData{elems: elems})
}

func List(elems ...*Value) *Value {
	return NewInstance(ListType, &listData{elems: elems})
}

// Elems returns the elements of a tuple or list. The slice of a list is
// live; callers must not keep it across mutations.
func Elems(v *Value) ([]*Value, bool) {
	if v == nil {
		return nil, false
	}
	switch p := v.payload.(type) {
	case *tupleData:
		return p.elems, true
	case *listData:
		return p.elems, true
	}
	return nil, false
}

// ToSlice drains any iterable into a fresh slice.
func ToSlice(v *Value) ([]*Value, error) {
	if elems, ok := Elems(v); ok {
		return append([]*Value(nil), elems...), nil
	}
	var out []*Value
	err := ForEach(v, func(item *Value) error {
		out = append(out, item)
		return nil
	})
	return out, err
}

// seqIndex normalizes a possibly negative index.
func seqIndex(idx *Value, n int, what string) (int, error) {
	i, ok := AsInt(idx)
	if !ok {
		return 0, Raisef(TypeErrorType, "%s indices must be integers, not %s", what, TypeName(idx))
	}
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, Raisef(IndexErrorType, "%s index out of range", what)
	}
	return int(i), nil
}

func reprSeq(elems []*Value, open, close string) (*Value, error) {
	var b strings.Builder
	b.WriteString(open)
	for i, e := range elems {
		if i > 0 {
			b.WriteString(", ")
		}
		r, err := Repr(e)
		if err != nil {
			return nil, err
		}
		b.WriteString(r)
	}
	if open == "(" && len(elems) == 1 {
		b.WriteString(",")
	}
	b.WriteString(close)
	return Str(b.String()), nil
}

func seqEqual(a, b []*Value) (bool, error) {
	if len(a) != len(b) {
		return false, nil
	}
	for i := range a {
		eq, err := Equal(a[i], b[i])
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

func seqContains(elems []*Value, x *Value) (bool, error) {
	for _, e := range elems {
		eq, err := Equal(e, x)
		if err != nil || eq {
			return eq, err
		}
	}
	return false, nil
}

// defSequence installs the methods tuple and list share.
func defSequence(cls *Value, what, open, close string) {
	def(cls, "__repr__", func(self *Value) (*Value, error) {
		elems, _ := Elems(self)
		return reprSeq(elems, open, close)
	}, "self")
	def(cls, "__len__", func(self *Value) (*Value, error) {
		elems, _ := Elems(self)
		return Int(int64(len(elems))), nil
	}, "self")
	def(cls, "__getitem__", func(self, idx *Value) (*Value, error) {
		elems, _ := Elems(self)
		i, err := seqIndex(idx, len(elems), what)
		if err != nil {
			return nil, err
		}
		return elems[i], nil
	}, "self", "index")
	def(cls, "__iter__", func(self *Value) (*Value, error) {
		return seqIterOf(self), nil
	}, "self")
	def(cls, "__contains__", func(self, x *Value) (*Value, error) {
		elems, _ := Elems(self)
		ok, err := seqContains(elems, x)
		if err != nil {
			return nil, err
		}
		return Bool(ok), nil
	}, "self", "value")
	def(cls, "__eq__", func(self, other *Value) (*Value, error) {
		if !IsInstance(other, cls) {
			return False, nil
		}
		a, _ := Elems(self)
		b, _ := Elems(other)
		eq, err := seqEqual(a, b)
		if err != nil {
			return nil, err
		}
		return Bool(eq), nil
	}, "self", "other")
	def(cls, "index", func(self, x *Value) (*Value, error) {
		elems, _ := Elems(self)
		for i, e := range elems {
			eq, err := Equal(e, x)
			if err != nil {
				return nil, err
			}
			if eq {
				return Int(int64(i)), nil
			}
		}
		return nil, Raisef(ValueErrorType, "%s.index(x): x not in %s", cls.Name(), cls.Name())
	}, "self", "value")
}

func setupTuple() {
	defStaticSig(TupleType, "__new__", func(cls, src *Value) (*Value, error) {
		var elems []*Value
		if src != missing {
			var err error
			if elems, err = ToSlice(src); err != nil {
				return nil, err
			}
		}
		return NewInstance(cls, &tupleData{elems: elems}), nil
	}, Arg("cls"), Default("iterable", missing))
	defSequence(TupleType, "tuple", "(", ")")
	def(TupleType, "__hash__", func(self *Value) (*Value, error) {
		n, err := Hash(self)
		if err != nil {
			return nil, err
		}
		return Int(n), nil
	}, "self")
}

func setupList() {
	defStatic(ListType, "__new__", func(args []*Value) (*Value, error) {
		return NewInstance(args[0], &listData{}), nil
	}, "cls", "*args", "**kwargs")
	defSig(ListType, "__init__", func(self, src *Value) error {
		l := self.payload.(*listData)
		l.elems = l.elems[:0]
		if src == missing {
			return nil
		}
		elems, err := ToSlice(src)
		if err != nil {
			return err
		}
		l.elems = elems
		return nil
	}, Arg("self"), Default("iterable", missing))
	defSequence(ListType, "list", "[", "]")
	def(ListType, "__setitem__", func(self, idx, v *Value) error {
		l := self.payload.(*listData)
		i, err := seqIndex(idx, len(l.elems), "list assignment")
		if err != nil {
			return err
		}
		l.elems[i] = v
		return nil
	}, "self", "index", "value")
	def(ListType, "append", func(self, v *Value) error {
		l := self.payload.(*listData)
		l.elems = append(l.elems, v)
		return nil
	}, "self", "object")
	def(ListType, "extend", func(self, src *Value) error {
		items, err := ToSlice(src)
		if err != nil {
			return err
		}
		l := self.payload.(*listData)
		l.elems = append(l.elems, items...)
		return nil
	}, "self", "iterable")
	def(ListType, "insert", func(self, idx, v *Value) error {
		l := self.payload.(*listData)
		i, ok := AsInt(idx)
		if !ok {
			return Raisef(TypeErrorType, "'%s' object cannot be interpreted as an integer", TypeName(idx))
		}
		n := int64(len(l.elems))
		if i < 0 {
			i = max(i+n, 0)
		}
		i = min(i, n)
		l.elems = append(l.elems, nil)
		copy(l.elems[i+1:], l.elems[i:])
		l.elems[i] = v
		return nil
	}, "self", "index", "object")
	defSig(ListType, "pop", func(self, idx *Value) (*Value, error) {
		l := self.payload.(*listData)
		if len(l.elems) == 0 {
			return nil, Raisef(IndexErrorType, "pop from empty list")
		}
		i, err := seqIndex(idx, len(l.elems), "pop")
		if err != nil {
			return nil, err
		}
		v := l.elems[i]
		l.elems = append(l.elems[:i], l.elems[i+1:]...)
		return v, nil
	}, Arg("self"), Default("index", Int(-1)))
}
