package idxmap

import "fmt"

// SparseEntry is a cursor on a single key of a SparseMap, obtained with
// SparseMap.Entry. It carries the key's slot index so that completing a
// get-or-store does not convert the key again.
//
// A SparseEntry is only valid until the map is modified through any other
// path. Unlike Entry, it only detects that its slot became vacant (panicking
// with ErrStaleEntry); a key deleted and stored again behind the entry goes
// unnoticed, and the entry then acts on the new value.
type SparseEntry[K Key, V any] struct {
	m        *SparseMap[K, V]
	key      K
	idx      uint
	inRange  bool
	occupied bool
}

// Entry returns the entry for key, classified as occupied or vacant.
func (m *SparseMap[K, V]) Entry(key K) *SparseEntry[K, V] {
	e := &SparseEntry[K, V]{m: m, key: key}
	e.idx, e.inRange = keyIndex(key)
	e.occupied = e.inRange && e.idx < uint(len(m.values)) && m.live.Test(e.idx)
	return e
}

// Key returns the entry's key.
func (e *SparseEntry[K, V]) Key() K {
	return e.key
}

// Occupied reports whether the key is present.
func (e *SparseEntry[K, V]) Occupied() bool {
	return e.occupied
}

func (e *SparseEntry[K, V]) slot() *V {
	if !e.occupied {
		panic(fmt.Errorf("%w: key %v", ErrVacantEntry, e.key))
	}
	if e.idx >= uint(len(e.m.values)) || !e.m.live.Test(e.idx) {
		panic(fmt.Errorf("%w: key %v", ErrStaleEntry, e.key))
	}
	return &e.m.values[e.idx]
}

// Load returns the value of an occupied entry.
func (e *SparseEntry[K, V]) Load() V {
	return *e.slot()
}

// Ref returns a pointer to the value of an occupied entry. The pointer is
// valid until the next mutation of the map.
func (e *SparseEntry[K, V]) Ref() *V {
	return e.slot()
}

// Swap replaces the value of an occupied entry and returns the old one.
func (e *SparseEntry[K, V]) Swap(value V) (previous V) {
	p := e.slot()
	previous, *p = *p, value
	return previous
}

// Store sets the entry's value, filling the slot if the entry is vacant,
// and returns a pointer to the stored value.
func (e *SparseEntry[K, V]) Store(value V) *V {
	if e.occupied {
		p := e.slot()
		*p = value
		return p
	}
	if !e.inRange {
		mustKeyIndex(e.key)
	}
	if e.idx < uint(len(e.m.values)) && e.m.live.Test(e.idx) {
		panic(fmt.Errorf("%w: key %v", ErrStaleEntry, e.key))
	}
	e.m.put(e.idx, value)
	e.occupied = true
	return &e.m.values[e.idx]
}

// Delete removes an occupied entry and returns its value.
func (e *SparseEntry[K, V]) Delete() V {
	e.slot()
	e.occupied = false
	return e.m.take(e.idx)
}

// DeleteEntry is Delete returning the key as well.
func (e *SparseEntry[K, V]) DeleteEntry() (K, V) {
	return e.key, e.Delete()
}

// OrStore returns a pointer to the entry's value, storing value first if
// the entry is vacant.
func (e *SparseEntry[K, V]) OrStore(value V) *V {
	if e.occupied {
		return e.slot()
	}
	return e.Store(value)
}

// OrStoreFn is OrStore with a lazily computed value.
func (e *SparseEntry[K, V]) OrStoreFn(valueFn func() V) *V {
	if e.occupied {
		return e.slot()
	}
	return e.Store(valueFn())
}

// OrDefault is OrStore with the zero value of V.
func (e *SparseEntry[K, V]) OrDefault() *V {
	var zero V
	return e.OrStore(zero)
}

// AndModify calls fn on the value of an occupied entry and returns the
// entry for further chaining.
func (e *SparseEntry[K, V]) AndModify(fn func(value *V)) *SparseEntry[K, V] {
	if e.occupied {
		fn(e.slot())
	}
	return e
}

// String implements fmt.Stringer.
func (e *SparseEntry[K, V]) String() string {
	if e.occupied {
		return fmt.Sprintf("OccupiedEntry(%v)", e.key)
	}
	return fmt.Sprintf("VacantEntry(%v)", e.key)
}
