package object

import "sort"

type keySortEntry struct {
	key      *Value
	rank     int
	intVal   int64
	strVal   string
	typeName string
	repr     string
}

const (
	keyRankBool = iota
	keyRankInt
	keyRankString
	keyRankOther
)

// SortedKeys returns the dict's keys in a deterministic order independent of
// insertion: bool < int < str < everything else; within a kind, numeric or
// lexicographic ascending, and other keys by type name then repr.
func SortedKeys(d *Dict) []*Value {
	if d == nil || d.Len() == 0 {
		return nil
	}
	keys := d.Keys()
	entries := make([]keySortEntry, 0, len(keys))
	for _, k := range keys {
		e := keySortEntry{key: k}
		switch p := k.payload.(type) {
		case int64:
			e.rank = keyRankInt
			if k.Class() == BoolType {
				e.rank = keyRankBool
			}
			e.intVal = p
		case string:
			e.rank = keyRankString
			e.strVal = p
		default:
			e.rank = keyRankOther
			e.typeName = TypeName(k)
			e.repr = safeRepr(k)
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a := entries[i]
		b := entries[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		switch a.rank {
		case keyRankBool, keyRankInt:
			return a.intVal < b.intVal
		case keyRankString:
			return a.strVal < b.strVal
		default:
			if a.typeName != b.typeName {
				return a.typeName < b.typeName
			}
			return a.repr < b.repr
		}
	})

	out := make([]*Value, len(entries))
	for i, e := range entries {
		out[i] = e.key
	}
	return out
}

// Sort orders vals in place with __lt__. The first comparison error stops
// the sort and is returned.
func Sort(vals []*Value) error {
	var firstErr error
	sort.SliceStable(vals, func(i, j int) bool {
		if firstErr != nil {
			return false
		}
		less, err := Less(vals[i], vals[j])
		if err != nil {
			firstErr = err
			return false
		}
		return less
	})
	return firstErr
}
