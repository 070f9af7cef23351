package object

import (
	"sort"
	"strings"
)

// Dict is an insertion-ordered mapping. Deleted slots are left as holes
// and squeezed out once they outnumber live entries.
type Dict struct {
	keys  []*Value
	vals  []*Value
	index map[HashKey]int
	holes int
}

// NewDict creates an empty dict value. Dict values keep their own
// attributes in a bootstrapStore.
func NewDict() *Value {
	return newBootstrapInstance(DictType, &Dict{index: map[HashKey]int{}})
}

// DictOf builds a dict with string keys, inserted in sorted order.
func DictOf(pairs map[string]*Value) *Value {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d := NewDict()
	for _, k := range keys {
		d.payload.(*Dict).setString(k, pairs[k])
	}
	return d
}

// AsDict returns v's dict payload.
func AsDict(v *Value) (*Dict, bool) {
	d, ok := v.payload.(*Dict)
	return d, ok
}

func (d *Dict) Len() int { return len(d.index) }

func (d *Dict) Get(k *Value) (*Value, bool, error) {
	hk, err := HashKeyOf(k)
	if err != nil {
		return nil, false, err
	}
	i, ok := d.index[hk]
	if !ok {
		return nil, false, nil
	}
	return d.vals[i], true, nil
}

func (d *Dict) Set(k, v *Value) error {
	hk, err := HashKeyOf(k)
	if err != nil {
		return err
	}
	d.set(hk, k, v)
	return nil
}

func (d *Dict) Delete(k *Value) (bool, error) {
	hk, err := HashKeyOf(k)
	if err != nil {
		return false, err
	}
	return d.delete(hk), nil
}

func (d *Dict) set(hk HashKey, k, v *Value) {
	if i, ok := d.index[hk]; ok {
		d.vals[i] = v
		return
	}
	d.index[hk] = len(d.keys)
	d.keys = append(d.keys, k)
	d.vals = append(d.vals, v)
}

func (d *Dict) delete(hk HashKey) bool {
	i, ok := d.index[hk]
	if !ok {
		return false
	}
	delete(d.index, hk)
	d.keys[i], d.vals[i] = nil, nil
	d.holes++
	if d.holes > len(d.index) {
		d.squeeze()
	}
	return true
}

func (d *Dict) squeeze() {
	keys := make([]*Value, 0, len(d.index))
	vals := make([]*Value, 0, len(d.index))
	for i, k := range d.keys {
		if k == nil {
			continue
		}
		hk, _ := HashKeyOf(k)
		d.index[hk] = len(keys)
		keys = append(keys, k)
		vals = append(vals, d.vals[i])
	}
	d.keys, d.vals, d.holes = keys, vals, 0
}

func (d *Dict) getString(s string) (*Value, bool) {
	i, ok := d.index[strKey(s)]
	if !ok {
		return nil, false
	}
	return d.vals[i], true
}

func (d *Dict) setString(s string, v *Value) {
	d.set(strKey(s), Str(s), v)
}

func (d *Dict) deleteString(s string) bool { return d.delete(strKey(s)) }

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []*Value {
	out := make([]*Value, 0, len(d.index))
	for _, k := range d.keys {
		if k != nil {
			out = append(out, k)
		}
	}
	return out
}

// Items returns key/value pairs in insertion order.
func (d *Dict) Items() [][2]*Value {
	out := make([][2]*Value, 0, len(d.index))
	for i, k := range d.keys {
		if k != nil {
			out = append(out, [2]*Value{k, d.vals[i]})
		}
	}
	return out
}

func (d *Dict) Values() []*Value {
	out := make([]*Value, 0, len(d.index))
	for i, k := range d.keys {
		if k != nil {
			out = append(out, d.vals[i])
		}
	}
	return out
}

func keyError(k *Value) error {
	return Raise(NewException(KeyErrorType, k))
}

func setupDict() {
	defStatic(DictType, "__new__", func(args []*Value) (*Value, error) {
		cls := args[0]
		v := NewDict()
		if cls != DictType {
			v = NewInstance(cls, v.payload)
		}
		return v, nil
	}, "cls", "*args", "**kwargs")
	def(DictType, "__init__", func(self, src, kw *Value) error {
		d := self.payload.(*Dict)
		if srcArgs, _ := Elems(src); len(srcArgs) > 0 {
			if len(srcArgs) > 1 {
				return Raisef(TypeErrorType, "dict expected at most 1 argument, got %d", len(srcArgs))
			}
			if err := d.update(srcArgs[0]); err != nil {
				return err
			}
		}
		return d.update(kw)
	}, "self", "*args", "**kwargs")
	def(DictType, "__repr__", func(self *Value) (*Value, error) {
		var b strings.Builder
		b.WriteByte('{')
		for i, kv := range self.payload.(*Dict).Items() {
			if i > 0 {
				b.WriteString(", ")
			}
			k, err := Repr(kv[0])
			if err != nil {
				return nil, err
			}
			v, err := Repr(kv[1])
			if err != nil {
				return nil, err
			}
			b.WriteString(k + ": " + v)
		}
		b.WriteByte('}')
		return Str(b.String()), nil
	}, "self")
	def(DictType, "__len__", func(self *Value) (*Value, error) {
		return Int(int64(self.payload.(*Dict).Len())), nil
	}, "self")
	def(DictType, "__getitem__", func(self, k *Value) (*Value, error) {
		v, ok, err := self.payload.(*Dict).Get(k)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, keyError(k)
		}
		return v, nil
	}, "self", "key")
	def(DictType, "__setitem__", func(self, k, v *Value) error {
		return self.payload.(*Dict).Set(k, v)
	}, "self", "key", "value")
	def(DictType, "__delitem__", func(self, k *Value) error {
		ok, err := self.payload.(*Dict).Delete(k)
		if err != nil {
			return err
		}
		if !ok {
			return keyError(k)
		}
		return nil
	}, "self", "key")
	def(DictType, "__contains__", func(self, k *Value) (*Value, error) {
		_, ok, err := self.payload.(*Dict).Get(k)
		if err != nil {
			return nil, err
		}
		return Bool(ok), nil
	}, "self", "key")
	def(DictType, "__iter__", func(self *Value) (*Value, error) {
		return SeqIter(self.payload.(*Dict).Keys()), nil
	}, "self")
	def(DictType, "keys", func(self *Value) (*Value, error) {
		return List(self.payload.(*Dict).Keys()...), nil
	}, "self")
	def(DictType, "values", func(self *Value) (*Value, error) {
		return List(self.payload.(*Dict).Values()...), nil
	}, "self")
	def(DictType, "items", func(self *Value) (*Value, error) {
		items := self.payload.(*Dict).Items()
		out := make([]*Value, len(items))
		for i, kv := range items {
			out[i] = Tuple(kv[0], kv[1])
		}
		return List(out...), nil
	}, "self")
	defSig(DictType, "get", func(self, k, dflt *Value) (*Value, error) {
		v, ok, err := self.payload.(*Dict).Get(k)
		if err != nil {
			return nil, err
		}
		if !ok {
			return dflt, nil
		}
		return v, nil
	}, Arg("self"), Arg("key"), Default("default", None))
	defSig(DictType, "pop", func(self, k, dflt *Value) (*Value, error) {
		d := self.payload.(*Dict)
		v, ok, err := d.Get(k)
		if err != nil {
			return nil, err
		}
		if !ok {
			if dflt == missing {
				return nil, keyError(k)
			}
			return dflt, nil
		}
		_, err = d.Delete(k)
		return v, err
	}, Arg("self"), Arg("key"), Default("default", missing))
	defSig(DictType, "setdefault", func(self, k, dflt *Value) (*Value, error) {
		d := self.payload.(*Dict)
		v, ok, err := d.Get(k)
		if err != nil || ok {
			return v, err
		}
		return dflt, d.Set(k, dflt)
	}, Arg("self"), Arg("key"), Default("default", None))
	def(DictType, "update", func(self, src, kw *Value) error {
		d := self.payload.(*Dict)
		srcArgs, _ := Elems(src)
		for _, s := range srcArgs {
			if err := d.update(s); err != nil {
				return err
			}
		}
		return d.update(kw)
	}, "self", "*args", "**kwargs")
}

// update merges a dict or an iterable of pairs.
func (d *Dict) update(src *Value) error {
	if other, ok := src.payload.(*Dict); ok {
		for _, kv := range other.Items() {
			if err := d.Set(kv[0], kv[1]); err != nil {
				return err
			}
		}
		return nil
	}
	return ForEach(src, func(item *Value) error {
		pair, err := ToSlice(item)
		if err != nil {
			return err
		}
		if len(pair) != 2 {
			return Raisef(ValueErrorType, "dictionary update sequence element has length %d; 2 is required", len(pair))
		}
		return d.Set(pair[0], pair[1])
	})
}
