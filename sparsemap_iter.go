package idxmap

import (
	"iter"

	"github.com/bits-and-blooms/bitset"
)

// Range calls yield for every entry in ascending key order until yield
// returns false. The map must not be modified during the iteration.
func (m *SparseMap[K, V]) Range(yield func(key K, value V) bool) {
	n := uint(len(m.values))
	for i, ok := m.live.NextSet(0); ok && i < n; i, ok = m.live.NextSet(i + 1) {
		if !yield(K(i), m.values[i]) {
			return
		}
	}
}

// RangeKeys to iterate over all keys
func (m *SparseMap[K, V]) RangeKeys(yield func(key K) bool) {
	n := uint(len(m.values))
	for i, ok := m.live.NextSet(0); ok && i < n; i, ok = m.live.NextSet(i + 1) {
		if !yield(K(i)) {
			return
		}
	}
}

// RangeValues to iterate over all values
func (m *SparseMap[K, V]) RangeValues(yield func(value V) bool) {
	n := uint(len(m.values))
	for i, ok := m.live.NextSet(0); ok && i < n; i, ok = m.live.NextSet(i + 1) {
		if !yield(m.values[i]) {
			return
		}
	}
}

// All is the iterator version of Range.
func (m *SparseMap[K, V]) All() iter.Seq2[K, V] {
	return m.Range
}

// Keys is the iterator version for iterating over all keys.
func (m *SparseMap[K, V]) Keys() iter.Seq[K] {
	return m.RangeKeys
}

// Values is the iterator version for iterating over all values.
func (m *SparseMap[K, V]) Values() iter.Seq[V] {
	return m.RangeValues
}

// AllRef iterates over keys and pointers to their values, allowing the
// values to be updated in place.
func (m *SparseMap[K, V]) AllRef() iter.Seq2[K, *V] {
	return func(yield func(K, *V) bool) {
		n := uint(len(m.values))
		for i, ok := m.live.NextSet(0); ok && i < n; i, ok = m.live.NextSet(i + 1) {
			if !yield(K(i), &m.values[i]) {
				return
			}
		}
	}
}

// ValuesRef iterates over pointers to the values.
func (m *SparseMap[K, V]) ValuesRef() iter.Seq[*V] {
	return func(yield func(*V) bool) {
		for _, v := range m.AllRef() {
			if !yield(v) {
				return
			}
		}
	}
}

// Backward iterates over the entries in descending key order.
func (m *SparseMap[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		it := m.Iter()
		for {
			k, v, ok := it.NextBack()
			if !ok || !yield(k, v) {
				return
			}
		}
	}
}

// Iter returns a double-ended cursor over the entries in ascending key
// order.
func (m *SparseMap[K, V]) Iter() *SparseIter[K, V] {
	return &SparseIter[K, V]{
		values: m.values,
		live:   &m.live,
		back:   uint(len(m.values)),
		left:   m.size,
	}
}

// Drain moves all entries into the returned cursor and leaves the map
// empty. The map's backing arrays are released.
func (m *SparseMap[K, V]) Drain() *SparseIter[K, V] {
	live := m.live
	it := &SparseIter[K, V]{
		values: m.values,
		live:   &live,
		back:   uint(len(m.values)),
		left:   m.size,
	}
	m.values = nil
	m.live = bitset.BitSet{}
	m.size = 0
	return it
}

// SparseIter is a double-ended cursor over SparseMap slots, skipping
// holes. Len always reports the exact number of entries left.
type SparseIter[K Key, V any] struct {
	values []V
	live   *bitset.BitSet
	front  uint // next slot to inspect from the front
	back   uint // one past the next slot to inspect from the back
	left   int
}

// Len returns the number of entries not yet yielded from either end.
func (it *SparseIter[K, V]) Len() int {
	return it.left
}

func (it *SparseIter[K, V]) nextIndex() (uint, bool) {
	if it.left == 0 {
		return 0, false
	}
	i, ok := it.live.NextSet(it.front)
	if !ok || i >= it.back {
		return 0, false
	}
	it.front = i + 1
	it.left--
	return i, true
}

func (it *SparseIter[K, V]) nextBackIndex() (uint, bool) {
	if it.left == 0 {
		return 0, false
	}
	for i := it.back; i > it.front; i-- {
		if it.live.Test(i - 1) {
			it.back = i - 1
			it.left--
			return i - 1, true
		}
	}
	return 0, false
}

// Next yields the entry with the lowest remaining key.
func (it *SparseIter[K, V]) Next() (key K, value V, ok bool) {
	i, ok := it.nextIndex()
	if !ok {
		return
	}
	return K(i), it.values[i], true
}

// NextBack yields the entry with the highest remaining key.
func (it *SparseIter[K, V]) NextBack() (key K, value V, ok bool) {
	i, ok := it.nextBackIndex()
	if !ok {
		return
	}
	return K(i), it.values[i], true
}

// NextRef is Next yielding a pointer to the value.
func (it *SparseIter[K, V]) NextRef() (key K, value *V, ok bool) {
	i, ok := it.nextIndex()
	if !ok {
		return
	}
	return K(i), &it.values[i], true
}

// NextBackRef is NextBack yielding a pointer to the value.
func (it *SparseIter[K, V]) NextBackRef() (key K, value *V, ok bool) {
	i, ok := it.nextBackIndex()
	if !ok {
		return
	}
	return K(i), &it.values[i], true
}

// All consumes the remaining entries in ascending key order.
func (it *SparseIter[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for {
			k, v, ok := it.Next()
			if !ok || !yield(k, v) {
				return
			}
		}
	}
}

// Clone returns an independent cursor at the same position.
func (it *SparseIter[K, V]) Clone() *SparseIter[K, V] {
	c := *it
	return &c
}
