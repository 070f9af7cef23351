package object

import (
	"hash/maphash"
	"strconv"
	"strings"
)

type hashKind uint8

const (
	hashNone hashKind = iota
	hashInt
	hashStr
	hashTuple
	hashIdentity
)

// HashKey is the comparable form of a dict key. Strings, ints (bools
// included), None and tuples of those compare by value; everything else
// compares by identity.
type HashKey struct {
	kind hashKind
	i    int64
	s    string
	p    *Value
}

func strKey(s string) HashKey { return HashKey{kind: hashStr, s: s} }

// HashKeyOf returns v's dict key. Lists and dicts are unhashable.
func HashKeyOf(v *Value) (HashKey, error) {
	switch p := v.payload.(type) {
	case string:
		return strKey(p), nil
	case int64:
		return HashKey{kind: hashInt, i: p}, nil
	case *tupleData:
		var b strings.Builder
		for _, e := range p.elems {
			k, err := HashKeyOf(e)
			if err != nil {
				return HashKey{}, err
			}
			writeKey(&b, k)
		}
		return HashKey{kind: hashTuple, s: b.String()}, nil
	case *listData, *Dict:
		return HashKey{}, Raisef(TypeErrorType, "unhashable type: '%s'", TypeName(v))
	}
	if v == None {
		return HashKey{kind: hashNone}, nil
	}
	return HashKey{kind: hashIdentity, p: v}, nil
}

// writeKey appends a length-prefixed encoding so nested tuples stay
// unambiguous.
func writeKey(b *strings.Builder, k HashKey) {
	b.WriteByte(byte('0' + k.kind))
	switch k.kind {
	case hashInt:
		b.WriteString(strconv.FormatInt(k.i, 10))
		b.WriteByte(';')
	case hashStr, hashTuple:
		b.WriteString(strconv.Itoa(len(k.s)))
		b.WriteByte(':')
		b.WriteString(k.s)
	case hashIdentity:
		b.WriteString(strconv.FormatUint(identityHash(k.p), 16))
		b.WriteByte(';')
	}
}

var identitySeed = maphash.MakeSeed()

func identityHash(v *Value) uint64 {
	return maphash.Comparable(identitySeed, v)
}

// fnv64 hashes text the same way on every run.
func fnv64(s string) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	var h uint64 = offset64
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

// Hash returns the value's hash: stable for strings, ints and tuples,
// otherwise the class's __hash__.
func Hash(v *Value) (int64, error) {
	switch p := v.payload.(type) {
	case string:
		return int64(fnv64(p)), nil
	case int64:
		return p, nil
	case *tupleData, *listData, *Dict:
		k, err := HashKeyOf(v)
		if err != nil {
			return 0, err
		}
		return int64(fnv64(k.s)), nil
	}
	res, ok, err := callSpecial(v, "__hash__")
	if err != nil {
		return 0, err
	}
	if !ok {
		return int64(identityHash(v)), nil
	}
	n, isInt := AsInt(res)
	if !isInt {
		return 0, Raisef(TypeErrorType, "__hash__ method should return an integer")
	}
	return n, nil
}
