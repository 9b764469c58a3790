package idxmap

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// VecMap is a map for small, dense, non-negative integer keys.
//
// Entries are kept densely packed in rows, in insertion order. A slot
// array addressed directly by the key's integer value records where each
// key's row lives, so lookups, inserts and deletes are O(1) without
// hashing. Memory for the slot array is proportional to the largest key
// ever stored.
//
// Deleting a key moves the last row into the freed position (swap-remove),
// so row order is insertion order modulo earlier deletions. Retain, on the
// other hand, preserves the relative order of the surviving rows.
//
// The zero value is an empty map ready to use. A VecMap is not safe for
// concurrent mutation: one writer at a time, or any number of readers with
// no writer. The Par* methods fan out reads and disjoint writes over the
// rows; see parallel.go.
type VecMap[K Key, V any] struct {
	// slots[key] is the row position of key plus one; zero means vacant.
	slots []uint32
	rows  []EntryOf[K, V]
	cfg   *MapConfig
}

// EntryOf is a key-value pair. It is the row type of VecMap and the item
// type of bulk loads.
type EntryOf[K Key, V any] struct {
	Key   K `json:"key"`
	Value V `json:"value"`
}

// NewVecMap creates a new VecMap. Direct initialization is also supported.
//
// Parameters:
//   - WithPresize option for initial row capacity
//   - WithMaxKeyHint option for initial slot array length
//   - WithWorkers, WithPool, WithLogger options for the Par* methods
func NewVecMap[K Key, V any](options ...func(*MapConfig)) *VecMap[K, V] {
	m := &VecMap[K, V]{}
	m.Init(options...)
	return m
}

// Init (re)initializes the map with the given options, dropping any
// stored entries.
func (m *VecMap[K, V]) Init(options ...func(*MapConfig)) {
	c := newMapConfig(options)
	m.cfg = c
	m.rows = nil
	m.slots = nil
	if c.sizeHint > 0 {
		m.rows = make([]EntryOf[K, V], 0, c.sizeHint)
	}
	if c.maxKeyHint > 0 {
		m.slots = make([]uint32, c.maxKeyHint)
	}
}

// FromEntries builds a VecMap from a list of pairs. Duplicate keys follow
// Store semantics: the last value wins and keeps the first position.
func FromEntries[K Key, V any](entries []EntryOf[K, V], options ...func(*MapConfig)) *VecMap[K, V] {
	m := NewVecMap[K, V](append([]func(*MapConfig){WithPresize(len(entries))}, options...)...)
	for _, e := range entries {
		m.Store(e.Key, e.Value)
	}
	return m
}

// CollectVecMap builds a VecMap from a sequence of pairs, as repeated
// Store calls.
func CollectVecMap[K Key, V any](seq iter.Seq2[K, V], options ...func(*MapConfig)) *VecMap[K, V] {
	m := NewVecMap[K, V](options...)
	m.Extend(seq)
	return m
}

// slot returns the row position recorded for slot index i.
//
//go:nosplit
func (m *VecMap[K, V]) slot(i uint) (int, bool) {
	if i < uint(len(m.slots)) {
		if s := m.slots[i]; s != 0 {
			return int(s - 1), true
		}
	}
	return 0, false
}

func (m *VecMap[K, V]) find(key K) (pos int, ok bool) {
	i, ok := keyIndex(key)
	if !ok {
		return 0, false
	}
	return m.slot(i)
}

// growSlots extends the slot array so that index i is addressable.
func (m *VecMap[K, V]) growSlots(i uint) {
	if i < uint(len(m.slots)) {
		return
	}
	m.slots = append(m.slots, make([]uint32, int(i)+1-len(m.slots))...)
}

// push appends a new row for key at slot index i and returns its position.
// The slot must be vacant.
func (m *VecMap[K, V]) push(i uint, key K, value V) int {
	m.growSlots(i)
	pos := len(m.rows)
	m.rows = append(m.rows, EntryOf[K, V]{Key: key, Value: value})
	m.slots[i] = uint32(pos + 1)
	return pos
}

// Load returns the value stored under key, if any.
func (m *VecMap[K, V]) Load(key K) (value V, ok bool) {
	if pos, ok := m.find(key); ok {
		return m.rows[pos].Value, true
	}
	return
}

// LoadRef returns a pointer to the value stored under key, or nil.
// The pointer is valid until the next mutation of the map.
func (m *VecMap[K, V]) LoadRef(key K) *V {
	if pos, ok := m.find(key); ok {
		return &m.rows[pos].Value
	}
	return nil
}

// HasKey reports whether key is present.
func (m *VecMap[K, V]) HasKey(key K) bool {
	_, ok := m.find(key)
	return ok
}

// Store sets the value for a key.
func (m *VecMap[K, V]) Store(key K, value V) {
	m.Swap(key, value)
}

// Swap stores value under key and returns the previous value, if any.
// An existing key keeps its row position; a new key is appended.
// Panics with ErrKeyOutOfRange for keys that cannot be slot indexes.
func (m *VecMap[K, V]) Swap(key K, value V) (previous V, loaded bool) {
	i := mustKeyIndex(key)
	if pos, ok := m.slot(i); ok {
		e := &m.rows[pos]
		previous, e.Value = e.Value, value
		return previous, true
	}
	m.push(i, key, value)
	return
}

// LoadAndDelete deletes the value for a key, returning the previous value
// if any.
//
// The last row is moved into the freed position and its slot is rewritten
// to point at it, so no other row moves.
func (m *VecMap[K, V]) LoadAndDelete(key K) (value V, loaded bool) {
	i, ok := keyIndex(key)
	if !ok {
		return
	}
	pos, ok := m.slot(i)
	if !ok {
		return
	}
	m.slots[i] = 0
	return m.swapRemove(pos), true
}

// swapRemove removes the row at pos, whose slot has already been cleared.
func (m *VecMap[K, V]) swapRemove(pos int) V {
	value := m.rows[pos].Value
	last := len(m.rows) - 1
	if pos != last {
		moved := m.rows[last]
		m.rows[pos] = moved
		// back-pointer repair for the relocated row
		m.slots[uint(moved.Key)] = uint32(pos + 1)
	}
	m.rows[last] = EntryOf[K, V]{}
	m.rows = m.rows[:last]
	return value
}

// Delete deletes the value for a key.
func (m *VecMap[K, V]) Delete(key K) {
	m.LoadAndDelete(key)
}

// Retain keeps only the entries for which keep returns true.
//
// Every entry is visited exactly once in row order. Surviving rows keep
// their relative order; their slots are rewritten as they shift down.
// keep must not modify the map.
func (m *VecMap[K, V]) Retain(keep func(key K, value V) bool) {
	m.compact(func(_ int, e *EntryOf[K, V]) bool {
		return keep(e.Key, e.Value)
	})
}

// compact is the order-preserving filter behind Retain and ParRetain.
// If keep panics, the entry being visited and all unvisited ones are kept
// and the rows are closed up before the panic continues.
func (m *VecMap[K, V]) compact(keep func(pos int, e *EntryOf[K, V]) bool) {
	w, r := 0, 0
	done := false
	defer func() {
		if done {
			return
		}
		for ; r < len(m.rows); r++ {
			if w != r {
				e := m.rows[r]
				m.rows[w] = e
				m.slots[uint(e.Key)] = uint32(w + 1)
			}
			w++
		}
		m.truncate(w)
	}()
	for ; r < len(m.rows); r++ {
		e := &m.rows[r]
		if !keep(r, e) {
			m.slots[uint(e.Key)] = 0
			continue
		}
		if w != r {
			m.rows[w] = *e
			m.slots[uint(e.Key)] = uint32(w + 1)
		}
		w++
	}
	done = true
	m.truncate(w)
}

// truncate drops rows from position n on, zeroing them for the GC.
func (m *VecMap[K, V]) truncate(n int) {
	clear(m.rows[n:])
	m.rows = m.rows[:n]
}

// Shrink drops the vacant slots past the highest live key and releases
// the excess capacity of both backing arrays. Calling it again without
// intervening inserts has no effect.
func (m *VecMap[K, V]) Shrink() {
	hi := -1
	for i := len(m.slots) - 1; i >= 0; i-- {
		if m.slots[i] != 0 {
			hi = i
			break
		}
	}
	m.slots = fitSlice(m.slots, hi+1)
	m.rows = fitSlice(m.rows, len(m.rows))
}

// fitSlice returns the first n elements of s in a slice whose capacity is
// exactly n.
func fitSlice[T any](s []T, n int) []T {
	if n == 0 {
		return nil
	}
	if cap(s) == n {
		return s[:n]
	}
	return append(make([]T, 0, n), s[:n]...)
}

// Reserve grows the row capacity, if necessary, to guarantee space for
// another n entries.
func (m *VecMap[K, V]) Reserve(n int) {
	if n > 0 {
		m.rows = slices.Grow(m.rows, n)
	}
}

// Clear deletes all entries. Capacity is kept.
func (m *VecMap[K, V]) Clear() {
	clear(m.slots)
	m.truncate(0)
}

// Size returns the number of entries. This is an O(1) operation.
func (m *VecMap[K, V]) Size() int {
	return len(m.rows)
}

// IsZero reports whether the map holds no entries.
func (m *VecMap[K, V]) IsZero() bool {
	return len(m.rows) == 0
}

// Cap returns the row capacity.
func (m *VecMap[K, V]) Cap() int {
	return cap(m.rows)
}

// Equal reports whether m and other hold equal rows in the same order.
// The slot arrays are not compared.
func (m *VecMap[K, V]) Equal(other *VecMap[K, V], eq func(V, V) bool) bool {
	if len(m.rows) != len(other.rows) {
		return false
	}
	for i := range m.rows {
		a, b := &m.rows[i], &other.rows[i]
		if a.Key != b.Key || !eq(a.Value, b.Value) {
			return false
		}
	}
	return true
}

// EqualVecMap is Equal for comparable values.
func EqualVecMap[K Key, V comparable](a, b *VecMap[K, V]) bool {
	return a.Equal(b, func(x, y V) bool { return x == y })
}

// Clone returns a copy of the map with the same configuration.
// Values are copied shallowly.
func (m *VecMap[K, V]) Clone() *VecMap[K, V] {
	return &VecMap[K, V]{
		slots: slices.Clone(m.slots),
		rows:  slices.Clone(m.rows),
		cfg:   m.cfg,
	}
}

// Extend stores every pair of seq, as repeated Store calls.
func (m *VecMap[K, V]) Extend(seq iter.Seq2[K, V]) {
	for k, v := range seq {
		m.Store(k, v)
	}
}

// BatchStore stores all entries and reports, per entry, the previous value
// and whether the key was already present.
func (m *VecMap[K, V]) BatchStore(entries []EntryOf[K, V]) (previous []V, loaded []bool) {
	if len(entries) == 0 {
		return
	}
	previous = make([]V, len(entries))
	loaded = make([]bool, len(entries))
	m.Reserve(len(entries))
	for i, e := range entries {
		previous[i], loaded[i] = m.Swap(e.Key, e.Value)
	}
	return
}

// FromMap stores every entry of source. Rows are appended in the
// builtin map's iteration order.
func (m *VecMap[K, V]) FromMap(source map[K]V) {
	m.Reserve(len(source))
	for k, v := range source {
		m.Store(k, v)
	}
}

// ToMap collects all entries into a map[K]V.
func (m *VecMap[K, V]) ToMap() map[K]V {
	a := make(map[K]V, len(m.rows))
	for _, e := range m.rows {
		a[e.Key] = e.Value
	}
	return a
}

// Entries returns a copy of the rows in row order.
func (m *VecMap[K, V]) Entries() []EntryOf[K, V] {
	return slices.Clone(m.rows)
}

// String implements fmt.Stringer, printing at most 1024 entries in row
// order.
func (m *VecMap[K, V]) String() string {
	return formatEntries("VecMap", m.Size(), m.All())
}

const stringLimit = 1024

func formatEntries[K Key, V any](name string, size int, all iter.Seq2[K, V]) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('[')
	n := 0
	for k, v := range all {
		if n == stringLimit {
			fmt.Fprintf(&sb, " ...+%d", size-n)
			break
		}
		if n > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%v:%v", k, v)
		n++
	}
	sb.WriteByte(']')
	return sb.String()
}
