package idxmap

// ParRange calls fn for every entry, fanning the rows out over up to
// WithWorkers goroutines. Calls happen in no particular order; fn must be
// safe for concurrent use. The map must not be modified meanwhile.
func (m *VecMap[K, V]) ParRange(fn func(key K, value V)) {
	rows := m.rows
	chunkSize, chunks := m.cfg.plan(len(rows), 0)
	m.cfg.run(len(rows), chunkSize, chunks, func(_, start, end int) {
		for i := start; i < end; i++ {
			fn(rows[i].Key, rows[i].Value)
		}
	})
}

// ParRangeRef is ParRange with a pointer to each value. Every value is
// handed to exactly one worker, so fn may write through the pointer it
// receives, but must not touch other entries.
func (m *VecMap[K, V]) ParRangeRef(fn func(key K, value *V)) {
	rows := m.rows
	chunkSize, chunks := m.cfg.plan(len(rows), 0)
	m.cfg.run(len(rows), chunkSize, chunks, func(_, start, end int) {
		for i := start; i < end; i++ {
			fn(rows[i].Key, &rows[i].Value)
		}
	})
}

// ParCount returns the number of entries satisfying pred, evaluated in
// parallel.
func (m *VecMap[K, V]) ParCount(pred func(key K, value V) bool) int {
	return ParReduce(m, func(k K, v V) int {
		if pred(k, v) {
			return 1
		}
		return 0
	}, func(a, b int) int { return a + b }, 0)
}

// ParRetain is Retain with keep evaluated in parallel. The compaction that
// follows runs on the caller, so the surviving rows keep their relative
// order exactly as with Retain.
func (m *VecMap[K, V]) ParRetain(keep func(key K, value V) bool) {
	rows := m.rows
	mask := make([]bool, len(rows))
	chunkSize, chunks := m.cfg.plan(len(rows), 0)
	m.cfg.run(len(rows), chunkSize, chunks, func(_, start, end int) {
		for i := start; i < end; i++ {
			mask[i] = keep(rows[i].Key, rows[i].Value)
		}
	})
	m.compact(func(pos int, _ *EntryOf[K, V]) bool {
		return mask[pos]
	})
}

// ParReduce maps every entry of m with mapFn and folds the results with
// reduce, in parallel. reduce must be associative and commutative, as
// entries are combined in no particular order; zero must be its identity.
func ParReduce[K Key, V any, R any](
	m *VecMap[K, V],
	mapFn func(key K, value V) R,
	reduce func(a, b R) R,
	zero R,
) R {
	rows := m.rows
	chunkSize, chunks := m.cfg.plan(len(rows), 0)
	results := make([]paddedSlot[R], chunks)
	m.cfg.run(len(rows), chunkSize, chunks, func(chunk, start, end int) {
		acc := zero
		for i := start; i < end; i++ {
			acc = reduce(acc, mapFn(rows[i].Key, rows[i].Value))
		}
		results[chunk].v = acc
	})
	acc := zero
	for i := range results {
		acc = reduce(acc, results[i].v)
	}
	return acc
}
