package object

import (
	"sync"
	"weak"
)

// weakSet tracks values without keeping them alive. Entries whose value
// has been collected are dropped whenever the set is compacted.
type weakSet struct {
	mu      sync.Mutex
	items   []weak.Pointer[Value]
	compact int
}

func (s *weakSet) add(v *Value) {
	p := weak.Make(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) >= s.compact {
		s.sweep()
		s.compact = max(64, 2*len(s.items))
	}
	s.items = append(s.items, p)
}

// sweep drops dead entries. Callers hold mu.
func (s *weakSet) sweep() []*Value {
	live := s.items[:0]
	out := make([]*Value, 0, len(s.items))
	for _, it := range s.items {
		if v := it.Value(); v != nil {
			live = append(live, it)
			out = append(out, v)
		}
	}
	clear(s.items[len(live):])
	s.items = live
	return out
}

// snapshot returns the live members. The lock is released before the
// caller touches any member.
func (s *weakSet) snapshot() []*Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweep()
}
