package idxmap

// The slot array is split into chunks aligned on bitset words, so each
// worker owns whole occupancy words and the values they cover.

// ParRange calls fn for every entry, fanning the slots out over up to
// WithWorkers goroutines. Calls happen in no particular order; fn must be
// safe for concurrent use. The map must not be modified meanwhile.
func (m *SparseMap[K, V]) ParRange(fn func(key K, value V)) {
	n := len(m.values)
	chunkSize, chunks := m.cfg.plan(n, bitsetWordBits)
	m.cfg.run(n, chunkSize, chunks, func(_, start, end int) {
		m.rangeChunk(start, end, func(i uint) {
			fn(K(i), m.values[i])
		})
	})
}

// ParRangeRef is ParRange with a pointer to each value. Every value is
// handed to exactly one worker, so fn may write through the pointer it
// receives, but must not touch other entries.
func (m *SparseMap[K, V]) ParRangeRef(fn func(key K, value *V)) {
	n := len(m.values)
	chunkSize, chunks := m.cfg.plan(n, bitsetWordBits)
	m.cfg.run(n, chunkSize, chunks, func(_, start, end int) {
		m.rangeChunk(start, end, func(i uint) {
			fn(K(i), &m.values[i])
		})
	})
}

// rangeChunk calls fn for every live slot in [start, end).
func (m *SparseMap[K, V]) rangeChunk(start, end int, fn func(i uint)) {
	for i, ok := m.live.NextSet(uint(start)); ok && i < uint(end); i, ok = m.live.NextSet(i + 1) {
		fn(i)
	}
}

// ParCount returns the number of entries satisfying pred, evaluated in
// parallel.
func (m *SparseMap[K, V]) ParCount(pred func(key K, value V) bool) int {
	return ParReduceSparse(m, func(k K, v V) int {
		if pred(k, v) {
			return 1
		}
		return 0
	}, func(a, b int) int { return a + b }, 0)
}

// ParRetain is Retain with keep evaluated and applied in parallel.
// Workers empty failing slots of their own chunk and each subtracts its
// removal count from a shared falling counter once; the map's size is
// taken from that counter after all workers have finished, also when keep
// panics.
func (m *SparseMap[K, V]) ParRetain(keep func(key K, value V) bool) {
	n := len(m.values)
	chunkSize, chunks := m.cfg.plan(n, bitsetWordBits)
	var falling fallingCounter
	falling.n.Store(int64(m.size))
	defer func() { m.size = int(falling.n.Load()) }()
	m.cfg.run(n, chunkSize, chunks, func(_, start, end int) {
		var zero V
		removed := int64(0)
		defer func() {
			if removed != 0 {
				falling.n.Add(-removed)
			}
		}()
		// Test stays inside this chunk's words, unlike NextSet which may
		// read ahead into a word another worker is clearing.
		for i := uint(start); i < uint(end); i++ {
			if !m.live.Test(i) || keep(K(i), m.values[i]) {
				continue
			}
			m.live.Clear(i)
			m.values[i] = zero
			removed++
		}
	})
}

// ParReduceSparse is ParReduce for a SparseMap.
func ParReduceSparse[K Key, V any, R any](
	m *SparseMap[K, V],
	mapFn func(key K, value V) R,
	reduce func(a, b R) R,
	zero R,
) R {
	n := len(m.values)
	chunkSize, chunks := m.cfg.plan(n, bitsetWordBits)
	results := make([]paddedSlot[R], chunks)
	m.cfg.run(n, chunkSize, chunks, func(chunk, start, end int) {
		acc := zero
		m.rangeChunk(start, end, func(i uint) {
			acc = reduce(acc, mapFn(K(i), m.values[i]))
		})
		results[chunk].v = acc
	})
	acc := zero
	for i := range results {
		acc = reduce(acc, results[i].v)
	}
	return acc
}
