package idxmap

import "iter"

// Range calls yield for every entry in row order until yield returns
// false. The map must not be modified during the iteration.
func (m *VecMap[K, V]) Range(yield func(key K, value V) bool) {
	for i := range m.rows {
		e := &m.rows[i]
		if !yield(e.Key, e.Value) {
			return
		}
	}
}

// RangeKeys to iterate over all keys
func (m *VecMap[K, V]) RangeKeys(yield func(key K) bool) {
	for i := range m.rows {
		if !yield(m.rows[i].Key) {
			return
		}
	}
}

// RangeValues to iterate over all values
func (m *VecMap[K, V]) RangeValues(yield func(value V) bool) {
	for i := range m.rows {
		if !yield(m.rows[i].Value) {
			return
		}
	}
}

// All is the iterator version of Range.
func (m *VecMap[K, V]) All() iter.Seq2[K, V] {
	return m.Range
}

// Keys is the iterator version for iterating over all keys.
func (m *VecMap[K, V]) Keys() iter.Seq[K] {
	return m.RangeKeys
}

// Values is the iterator version for iterating over all values.
func (m *VecMap[K, V]) Values() iter.Seq[V] {
	return m.RangeValues
}

// AllRef iterates over keys and pointers to their values, allowing the
// values to be updated in place.
func (m *VecMap[K, V]) AllRef() iter.Seq2[K, *V] {
	return func(yield func(K, *V) bool) {
		for i := range m.rows {
			e := &m.rows[i]
			if !yield(e.Key, &e.Value) {
				return
			}
		}
	}
}

// ValuesRef iterates over pointers to the values.
func (m *VecMap[K, V]) ValuesRef() iter.Seq[*V] {
	return func(yield func(*V) bool) {
		for i := range m.rows {
			if !yield(&m.rows[i].Value) {
				return
			}
		}
	}
}

// Backward iterates over the entries in reverse row order.
func (m *VecMap[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := len(m.rows) - 1; i >= 0; i-- {
			e := &m.rows[i]
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Iter returns a double-ended cursor over the entries in row order.
func (m *VecMap[K, V]) Iter() *Iter[K, V] {
	return &Iter[K, V]{rows: m.rows, back: len(m.rows)}
}

// Drain moves all entries into the returned cursor and leaves the map
// empty. The map's backing arrays are released.
func (m *VecMap[K, V]) Drain() *Iter[K, V] {
	it := &Iter[K, V]{rows: m.rows, back: len(m.rows)}
	m.rows = nil
	m.slots = nil
	return it
}

// Iter is a double-ended cursor over VecMap rows. Len always reports the
// exact number of entries left between both ends.
type Iter[K Key, V any] struct {
	rows  []EntryOf[K, V]
	front int
	back  int
}

// Len returns the number of entries not yet yielded from either end.
func (it *Iter[K, V]) Len() int {
	return it.back - it.front
}

// Next yields the entry at the front.
func (it *Iter[K, V]) Next() (key K, value V, ok bool) {
	if it.front == it.back {
		return
	}
	e := &it.rows[it.front]
	it.front++
	return e.Key, e.Value, true
}

// NextBack yields the entry at the back.
func (it *Iter[K, V]) NextBack() (key K, value V, ok bool) {
	if it.front == it.back {
		return
	}
	it.back--
	e := &it.rows[it.back]
	return e.Key, e.Value, true
}

// NextRef is Next yielding a pointer to the value.
func (it *Iter[K, V]) NextRef() (key K, value *V, ok bool) {
	if it.front == it.back {
		return
	}
	e := &it.rows[it.front]
	it.front++
	return e.Key, &e.Value, true
}

// NextBackRef is NextBack yielding a pointer to the value.
func (it *Iter[K, V]) NextBackRef() (key K, value *V, ok bool) {
	if it.front == it.back {
		return
	}
	it.back--
	e := &it.rows[it.back]
	return e.Key, &e.Value, true
}

// All consumes the remaining entries front to back.
func (it *Iter[K, V]) All() iter.Seq2[K, V] {
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
func (it *Iter[K, V]) Clone() *Iter[K, V] {
	c := *it
	return &c
}
