package idxmap

import "fmt"

// Entry is a cursor on a single key of a VecMap, obtained with
// VecMap.Entry. It records whether the key was present and where its row
// lives, so completing a get-or-store does not look the key up again.
//
// An Entry is only valid until the map is modified through any other
// path. Using it afterwards panics with ErrStaleEntry.
type Entry[K Key, V any] struct {
	m        *VecMap[K, V]
	key      K
	idx      uint
	pos      int
	inRange  bool
	occupied bool
}

// Entry returns the entry for key, classified as occupied or vacant.
func (m *VecMap[K, V]) Entry(key K) *Entry[K, V] {
	e := &Entry[K, V]{m: m, key: key}
	e.idx, e.inRange = keyIndex(key)
	if e.inRange {
		e.pos, e.occupied = m.slot(e.idx)
	}
	return e
}

// Key returns the entry's key.
func (e *Entry[K, V]) Key() K {
	return e.key
}

// Occupied reports whether the key is present.
func (e *Entry[K, V]) Occupied() bool {
	return e.occupied
}

// row returns the entry's row, panicking if the entry is vacant or no
// longer matches the map.
func (e *Entry[K, V]) row() *EntryOf[K, V] {
	if !e.occupied {
		panic(fmt.Errorf("%w: key %v", ErrVacantEntry, e.key))
	}
	m := e.m
	if e.pos >= len(m.rows) || m.rows[e.pos].Key != e.key ||
		e.idx >= uint(len(m.slots)) || m.slots[e.idx] != uint32(e.pos+1) {
		panic(fmt.Errorf("%w: key %v", ErrStaleEntry, e.key))
	}
	return &m.rows[e.pos]
}

// Load returns the value of an occupied entry.
func (e *Entry[K, V]) Load() V {
	return e.row().Value
}

// Ref returns a pointer to the value of an occupied entry. The pointer is
// valid until the next mutation of the map.
func (e *Entry[K, V]) Ref() *V {
	return &e.row().Value
}

// Swap replaces the value of an occupied entry and returns the old one.
func (e *Entry[K, V]) Swap(value V) (previous V) {
	r := e.row()
	previous, r.Value = r.Value, value
	return previous
}

// Store sets the entry's value, appending a row if the entry is vacant,
// and returns a pointer to the stored value. The entry is occupied
// afterwards.
func (e *Entry[K, V]) Store(value V) *V {
	if e.occupied {
		r := e.row()
		r.Value = value
		return &r.Value
	}
	if !e.inRange {
		mustKeyIndex(e.key)
	}
	if _, ok := e.m.slot(e.idx); ok {
		panic(fmt.Errorf("%w: key %v", ErrStaleEntry, e.key))
	}
	e.pos = e.m.push(e.idx, e.key, value)
	e.occupied = true
	return &e.m.rows[e.pos].Value
}

// Delete removes an occupied entry and returns its value. The entry is
// vacant afterwards.
func (e *Entry[K, V]) Delete() V {
	e.row()
	e.m.slots[e.idx] = 0
	e.occupied = false
	return e.m.swapRemove(e.pos)
}

// DeleteEntry is Delete returning the key as well.
func (e *Entry[K, V]) DeleteEntry() (K, V) {
	return e.key, e.Delete()
}

// OrStore returns a pointer to the entry's value, storing value first if
// the entry is vacant.
func (e *Entry[K, V]) OrStore(value V) *V {
	if e.occupied {
		return e.Ref()
	}
	return e.Store(value)
}

// OrStoreFn is OrStore with a lazily computed value; valueFn is only
// called when the entry is vacant.
func (e *Entry[K, V]) OrStoreFn(valueFn func() V) *V {
	if e.occupied {
		return e.Ref()
	}
	return e.Store(valueFn())
}

// OrDefault is OrStore with the zero value of V.
func (e *Entry[K, V]) OrDefault() *V {
	var zero V
	return e.OrStore(zero)
}

// AndModify calls fn on the value of an occupied entry and returns the
// entry for further chaining. It does nothing on a vacant entry.
func (e *Entry[K, V]) AndModify(fn func(value *V)) *Entry[K, V] {
	if e.occupied {
		fn(e.Ref())
	}
	return e
}

// String implements fmt.Stringer.
func (e *Entry[K, V]) String() string {
	if e.occupied {
		return fmt.Sprintf("OccupiedEntry(%v)", e.key)
	}
	return fmt.Sprintf("VacantEntry(%v)", e.key)
}
