package object

import "sort"

// Store backs a value's own attributes. It is only mutated through the
// owning value's AttrManager.
type Store interface {
	Load(name string) (*Value, bool)
	Save(name string, v *Value)
	Remove(name string) bool
	Keys() []string
}

// bootstrapStore is a plain map. Built-in classes are created with it
// before the dict type exists, and dict values use it for themselves.
type bootstrapStore struct {
	m map[string]*Value
}

func newBootstrapStore() *bootstrapStore {
	return &bootstrapStore{m: map[string]*Value{}}
}

func (s *bootstrapStore) Load(name string) (*Value, bool) {
	v, ok := s.m[name]
	return v, ok
}

func (s *bootstrapStore) Save(name string, v *Value) { s.m[name] = v }

func (s *bootstrapStore) Remove(name string) bool {
	if _, ok := s.m[name]; !ok {
		return false
	}
	delete(s.m, name)
	return true
}

func (s *bootstrapStore) Keys() []string {
	out := make([]string, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// dictStore keeps attributes in a dict value that is created on first write
// and exposed as __dict__.
type dictStore struct {
	d *Value
}

func newDictStore() *dictStore { return &dictStore{} }

func (s *dictStore) dict() *Dict {
	if s.d == nil {
		s.d = NewDict()
	}
	return s.d.payload.(*Dict)
}

func (s *dictStore) Load(name string) (*Value, bool) {
	if name == "__dict__" {
		s.dict()
		return s.d, true
	}
	if s.d == nil {
		return nil, false
	}
	return s.dict().getString(name)
}

func (s *dictStore) Save(name string, v *Value) { s.dict().setString(name, v) }

func (s *dictStore) Remove(name string) bool {
	if s.d == nil {
		return false
	}
	return s.dict().deleteString(name)
}

func (s *dictStore) Keys() []string {
	if s.d == nil {
		return nil
	}
	var out []string
	for _, k := range s.dict().Keys() {
		if str, ok := k.payload.(string); ok {
			out = append(out, str)
		}
	}
	sort.Strings(out)
	return out
}
