package idxmap

import (
	"fmt"
	"math"
)

// Key is the set of types usable as map keys: any integer kind, including
// named types such as `type NodeID uint32`. The integer value of a key is
// its identity and its slot index.
type Key interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// MaxKeyIndex is the largest slot index a map accepts on insertion.
// Row positions are stored as uint32 with zero reserved for "vacant".
const MaxKeyIndex = math.MaxUint32 - 1

// keyIndex converts k into a slot index. Negative keys, and keys past
// MaxKeyIndex, have no slot.
//
//go:nosplit
func keyIndex[K Key](k K) (uint, bool) {
	if k < 0 || uint64(k) > MaxKeyIndex {
		return 0, false
	}
	return uint(k), true
}

// mustKeyIndex is keyIndex for writers: a key without a slot is a
// contract violation.
func mustKeyIndex[K Key](k K) uint {
	i, ok := keyIndex(k)
	if !ok {
		panic(fmt.Errorf("%w: %v", ErrKeyOutOfRange, k))
	}
	return i
}
