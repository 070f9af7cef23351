package object

import "fmt"

// NextFunc produces the next element; ok is false once exhausted.
type NextFunc func() (v *Value, ok bool, err error)

type nativeIter struct {
	next NextFunc
	done bool
}

// NewIterator wraps a Go step function as an iterator value.
func NewIterator(next NextFunc) *Value {
	return NewInstance(IteratorType, &nativeIter{next: next})
}

// SeqIter iterates over a fixed slice.
func SeqIter(elems []*Value) *Value {
	i := 0
	return NewIterator(func() (*Value, bool, error) {
		if i >= len(elems) {
			return nil, false, nil
		}
		i++
		return elems[i-1], true, nil
	})
}

// seqIterOf iterates a tuple or list, seeing appends made while iterating.
func seqIterOf(seq *Value) *Value {
	i := 0
	return NewIterator(func() (*Value, bool, error) {
		elems, _ := Elems(seq)
		if i >= len(elems) {
			return nil, false, nil
		}
		i++
		return elems[i-1], true, nil
	})
}

func (it *nativeIter) step() (*Value, bool, error) {
	if it.done {
		return nil, false, nil
	}
	v, ok, err := it.next()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		it.done = true
	}
	return v, ok, nil
}

// Iter returns an iterator over v by calling its class's __iter__.
func Iter(v *Value) (*Value, error) {
	res, ok, err := callSpecial(v, "__iter__")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Raisef(TypeErrorType, "'%s' object is not iterable", TypeName(v))
	}
	return res, nil
}

// Next advances an iterator. A StopIteration raised by __next__ is reported
// as ok == false rather than as an error.
func Next(it *Value) (*Value, bool, error) {
	if ni, isNative := it.payload.(*nativeIter); isNative && it.Class() == IteratorType {
		return ni.step()
	}
	res, ok, err := callSpecial(it, "__next__")
	if err != nil {
		if IsStopIteration(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !ok {
		return nil, false, Raisef(TypeErrorType, "'%s' object is not an iterator", TypeName(it))
	}
	return res, true, nil
}

// ForEach calls fn for every element of an iterable.
func ForEach(v *Value, fn func(*Value) error) error {
	if elems, ok := Elems(v); ok && v.Class() == TupleType {
		for _, e := range elems {
			if err := fn(e); err != nil {
				return err
			}
		}
		return nil
	}
	it, err := Iter(v)
	if err != nil {
		return err
	}
	for {
		item, ok, err := Next(it)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(item); err != nil {
			return err
		}
	}
}

// Enumerate yields (index, element) tuples.
func Enumerate(iterable *Value, start int64) (*Value, error) {
	it, err := Iter(iterable)
	if err != nil {
		return nil, err
	}
	i := start
	return NewIterator(func() (*Value, bool, error) {
		v, ok, err := Next(it)
		if err != nil || !ok {
			return nil, false, err
		}
		i++
		return Tuple(Int(i-1), v), true, nil
	}), nil
}

// Zip yields tuples until the shortest iterable runs out.
func Zip(iterables ...*Value) (*Value, error) {
	its := make([]*Value, len(iterables))
	for i, src := range iterables {
		it, err := Iter(src)
		if err != nil {
			return nil, err
		}
		its[i] = it
	}
	return NewIterator(func() (*Value, bool, error) {
		if len(its) == 0 {
			return nil, false, nil
		}
		row := make([]*Value, len(its))
		for i, it := range its {
			v, ok, err := Next(it)
			if err != nil || !ok {
				return nil, false, err
			}
			row[i] = v
		}
		return Tuple(row...), true, nil
	}), nil
}

type rangeData struct{ start, stop, step int64 }

func (r rangeData) len() int64 {
	switch {
	case r.step > 0 && r.start < r.stop:
		return (r.stop - r.start + r.step - 1) / r.step
	case r.step < 0 && r.start > r.stop:
		return (r.start - r.stop - r.step - 1) / -r.step
	}
	return 0
}

// Range builds a range value.
func Range(start, stop, step int64) (*Value, error) {
	if step == 0 {
		return nil, Raisef(ValueErrorType, "range() arg 3 must not be zero")
	}
	return NewInstance(RangeType, rangeData{start, stop, step}), nil
}

func setupIter() {
	def(IteratorType, "__iter__", func(self *Value) (*Value, error) {
		return self, nil
	}, "self")
	def(IteratorType, "__next__", func(self *Value) (*Value, error) {
		ni, ok := self.payload.(*nativeIter)
		if !ok {
			return nil, Raisef(TypeErrorType, "'%s' object is not an iterator", TypeName(self))
		}
		v, more, err := ni.step()
		if err != nil {
			return nil, err
		}
		if !more {
			return nil, Raise(NewException(StopIterationType))
		}
		return v, nil
	}, "self")

	defStatic(RangeType, "__new__", func(args []*Value) (*Value, error) {
		rest, _ := Elems(args[1])
		nums := make([]int64, len(rest))
		for i, a := range rest {
			n, ok := AsInt(a)
			if !ok {
				return nil, Raisef(TypeErrorType, "'%s' object cannot be interpreted as an integer", TypeName(a))
			}
			nums[i] = n
		}
		switch len(nums) {
		case 1:
			return Range(0, nums[0], 1)
		case 2:
			return Range(nums[0], nums[1], 1)
		case 3:
			return Range(nums[0], nums[1], nums[2])
		}
		return nil, Raisef(TypeErrorType, "range expected 1 to 3 arguments, got %d", len(nums))
	}, "cls", "*args")
	def(RangeType, "__len__", func(self *Value) (*Value, error) {
		return Int(self.payload.(rangeData).len()), nil
	}, "self")
	def(RangeType, "__iter__", func(self *Value) (*Value, error) {
		r := self.payload.(rangeData)
		var i int64
		n := r.len()
		return NewIterator(func() (*Value, bool, error) {
			if i >= n {
				return nil, false, nil
			}
			i++
			return Int(r.start + (i-1)*r.step), true, nil
		}), nil
	}, "self")
	def(RangeType, "__repr__", func(self *Value) (*Value, error) {
		r := self.payload.(rangeData)
		if r.step == 1 {
			return Str(fmt.Sprintf("range(%d, %d)", r.start, r.stop)), nil
		}
		return Str(fmt.Sprintf("range(%d, %d, %d)", r.start, r.stop, r.step)), nil
	}, "self")
}
