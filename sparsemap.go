package idxmap

import (
	"fmt"
	"iter"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// SparseMap is a map for small non-negative integer keys that stores each
// value directly at the index of its key, with an occupancy bitset marking
// the live slots.
//
// Compared to VecMap there is no separate index and nothing ever moves:
// deleting a key leaves a hole. Iteration is in ascending key order and
// skips the holes, so its cost depends on the highest key rather than on
// the number of entries. Storage never shrinks below the highest live key.
//
// The zero value is an empty map ready to use. Like VecMap, a SparseMap is
// single-writer.
type SparseMap[K Key, V any] struct {
	values []V
	live   bitset.BitSet
	size   int
	cfg    *MapConfig
}

// NewSparseMap creates a new SparseMap. Direct initialization is also
// supported.
//
// Parameters:
//   - WithMaxKeyHint (or WithPresize) option for the initial slot count
//   - WithWorkers, WithPool, WithLogger options for the Par* methods
func NewSparseMap[K Key, V any](options ...func(*MapConfig)) *SparseMap[K, V] {
	m := &SparseMap[K, V]{}
	m.Init(options...)
	return m
}

// Init (re)initializes the map with the given options, dropping any
// stored entries.
func (m *SparseMap[K, V]) Init(options ...func(*MapConfig)) {
	c := newMapConfig(options)
	m.cfg = c
	m.values = nil
	m.live = bitset.BitSet{}
	m.size = 0
	if n := max(c.maxKeyHint, c.sizeHint); n > 0 {
		m.values = make([]V, n)
		m.live = *bitset.New(uint(n))
	}
}

// CollectSparseMap builds a SparseMap from a sequence of pairs, as
// repeated Store calls.
func CollectSparseMap[K Key, V any](seq iter.Seq2[K, V], options ...func(*MapConfig)) *SparseMap[K, V] {
	m := NewSparseMap[K, V](options...)
	m.Extend(seq)
	return m
}

func (m *SparseMap[K, V]) find(key K) (uint, bool) {
	i, ok := keyIndex(key)
	if !ok || i >= uint(len(m.values)) || !m.live.Test(i) {
		return 0, false
	}
	return i, true
}

// Load returns the value stored under key, if any.
func (m *SparseMap[K, V]) Load(key K) (value V, ok bool) {
	if i, ok := m.find(key); ok {
		return m.values[i], true
	}
	return
}

// LoadRef returns a pointer to the value stored under key, or nil.
// The pointer is valid until the next mutation of the map.
func (m *SparseMap[K, V]) LoadRef(key K) *V {
	if i, ok := m.find(key); ok {
		return &m.values[i]
	}
	return nil
}

// HasKey reports whether key is present.
func (m *SparseMap[K, V]) HasKey(key K) bool {
	_, ok := m.find(key)
	return ok
}

// Store sets the value for a key.
func (m *SparseMap[K, V]) Store(key K, value V) {
	m.Swap(key, value)
}

// Swap stores value under key and returns the previous value, if any.
// Panics with ErrKeyOutOfRange for keys that cannot be slot indexes.
func (m *SparseMap[K, V]) Swap(key K, value V) (previous V, loaded bool) {
	i := mustKeyIndex(key)
	if i < uint(len(m.values)) && m.live.Test(i) {
		previous, m.values[i] = m.values[i], value
		return previous, true
	}
	m.put(i, value)
	return
}

// put fills the vacant slot i.
func (m *SparseMap[K, V]) put(i uint, value V) {
	if i >= uint(len(m.values)) {
		m.values = append(m.values, make([]V, int(i)+1-len(m.values))...)
	}
	m.values[i] = value
	m.live.Set(i)
	m.size++
}

// LoadAndDelete deletes the value for a key, returning the previous value
// if any. No other slot is touched.
func (m *SparseMap[K, V]) LoadAndDelete(key K) (value V, loaded bool) {
	i, ok := m.find(key)
	if !ok {
		return
	}
	return m.take(i), true
}

// take empties the live slot i and returns its value.
func (m *SparseMap[K, V]) take(i uint) V {
	var zero V
	value := m.values[i]
	m.values[i] = zero
	m.live.Clear(i)
	m.size--
	return value
}

// Delete deletes the value for a key.
func (m *SparseMap[K, V]) Delete(key K) {
	m.LoadAndDelete(key)
}

// Retain keeps only the entries for which keep returns true, visiting
// them in ascending key order. Failing slots are emptied in place.
// keep must not modify the map.
func (m *SparseMap[K, V]) Retain(keep func(key K, value V) bool) {
	n := uint(len(m.values))
	for i, ok := m.live.NextSet(0); ok && i < n; i, ok = m.live.NextSet(i + 1) {
		if !keep(K(i), m.values[i]) {
			m.take(i)
		}
	}
}

// highest returns the index of the highest live slot, or -1.
func (m *SparseMap[K, V]) highest() int {
	if m.size == 0 {
		return -1
	}
	for i := len(m.values) - 1; i >= 0; i-- {
		if m.live.Test(uint(i)) {
			return i
		}
	}
	return -1
}

// Shrink truncates the slots past the highest live key, in a single
// backward scan, and releases the excess capacity. Calling it again
// without intervening inserts has no effect.
func (m *SparseMap[K, V]) Shrink() {
	hi := m.highest()
	m.values = fitSlice(m.values, hi+1)
	if hi < 0 {
		m.live = bitset.BitSet{}
		return
	}
	m.live.Shrink(uint(hi))
}

// Clear deletes all entries. Slot capacity is kept.
func (m *SparseMap[K, V]) Clear() {
	clear(m.values)
	m.live.ClearAll()
	m.size = 0
}

// Size returns the number of entries. This is an O(1) operation.
func (m *SparseMap[K, V]) Size() int {
	return m.size
}

// IsZero reports whether the map holds no entries.
func (m *SparseMap[K, V]) IsZero() bool {
	return m.size == 0
}

// Cap returns the number of addressable slots.
func (m *SparseMap[K, V]) Cap() int {
	return len(m.values)
}

// Equal reports whether m and other hold the same keys with equal values.
// Insertion history and slot capacity do not matter.
func (m *SparseMap[K, V]) Equal(other *SparseMap[K, V], eq func(V, V) bool) bool {
	if m.size != other.size {
		return false
	}
	for k, v := range m.Range {
		w, ok := other.Load(k)
		if !ok || !eq(v, w) {
			return false
		}
	}
	return true
}

// EqualSparseMap is Equal for comparable values.
func EqualSparseMap[K Key, V comparable](a, b *SparseMap[K, V]) bool {
	return a.Equal(b, func(x, y V) bool { return x == y })
}

// Clone returns a copy of the map with the same configuration.
// Values are copied shallowly.
func (m *SparseMap[K, V]) Clone() *SparseMap[K, V] {
	return &SparseMap[K, V]{
		values: slices.Clone(m.values),
		live:   *m.live.Clone(),
		size:   m.size,
		cfg:    m.cfg,
	}
}

// Extend stores every pair of seq, as repeated Store calls.
func (m *SparseMap[K, V]) Extend(seq iter.Seq2[K, V]) {
	for k, v := range seq {
		m.Store(k, v)
	}
}

// BatchStore stores all entries and reports, per entry, the previous value
// and whether the key was already present.
func (m *SparseMap[K, V]) BatchStore(entries []EntryOf[K, V]) (previous []V, loaded []bool) {
	if len(entries) == 0 {
		return
	}
	previous = make([]V, len(entries))
	loaded = make([]bool, len(entries))
	for i, e := range entries {
		previous[i], loaded[i] = m.Swap(e.Key, e.Value)
	}
	return
}

// FromMap stores every entry of source.
func (m *SparseMap[K, V]) FromMap(source map[K]V) {
	for k, v := range source {
		m.Store(k, v)
	}
}

// ToMap collects all entries into a map[K]V.
func (m *SparseMap[K, V]) ToMap() map[K]V {
	a := make(map[K]V, m.size)
	for k, v := range m.Range {
		a[k] = v
	}
	return a
}

// Entries returns the entries in ascending key order.
func (m *SparseMap[K, V]) Entries() []EntryOf[K, V] {
	a := make([]EntryOf[K, V], 0, m.size)
	for k, v := range m.Range {
		a = append(a, EntryOf[K, V]{Key: k, Value: v})
	}
	return a
}

// String implements fmt.Stringer, printing at most 1024 entries in key
// order.
func (m *SparseMap[K, V]) String() string {
	return formatEntries("SparseMap", m.size, m.All())
}

// GoString implements fmt.GoStringer with the slot layout, for debugging.
func (m *SparseMap[K, V]) GoString() string {
	return fmt.Sprintf("SparseMap{size: %d, slots: %d, live: %s}", m.size, len(m.values), m.live.String())
}
