package idxmap

import (
	"bytes"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcParallelism(t *testing.T) {
	size, chunks := calcParallelism(100, 256, 8)
	assert.Equal(t, 100, size)
	assert.Equal(t, 1, chunks)

	size, chunks = calcParallelism(1000, 256, 8)
	assert.Equal(t, 3, chunks)
	assert.Equal(t, 334, size)

	size, chunks = calcParallelism(100000, 256, 4)
	assert.Equal(t, 4, chunks)
	assert.Equal(t, 25000, size)
}

func TestMapConfig_PlanAligned(t *testing.T) {
	c := newMapConfig([]func(*MapConfig){WithWorkers(3)})
	size, chunks := c.plan(1000, bitsetWordBits)
	require.Zero(t, size%bitsetWordBits)
	require.Equal(t, 384, size)
	require.Equal(t, 3, chunks)
	require.GreaterOrEqual(t, size*chunks, 1000)

	var nilCfg *MapConfig
	_, chunks = nilCfg.plan(10, 0)
	require.Equal(t, 1, chunks)
}

func TestVecMap_ParCount(t *testing.T) {
	m := NewVecMap[int, int](WithWorkers(4))
	for i := 0; i < 1000; i++ {
		m.Store(i, i)
	}
	require.Equal(t, 500, m.ParCount(func(k, _ int) bool { return k%2 == 0 }))
	require.Equal(t, 1000, m.ParCount(func(int, int) bool { return true }))
}

func TestVecMap_ParRangeRef(t *testing.T) {
	m := NewVecMap[int, int](WithWorkers(4))
	for i := 0; i < 1000; i++ {
		m.Store(i, i)
	}
	m.ParRangeRef(func(_ int, v *int) { *v *= 2 })
	m.ParRangeRef(func(_ int, v *int) { *v++ })
	for k, v := range m.All() {
		require.Equal(t, k*2+1, v)
	}

	var sum atomic.Int64
	m.ParRange(func(_ int, v int) { sum.Add(int64(v)) })
	require.Equal(t, int64(1000*999+1000), sum.Load())
}

func TestVecMap_ParReduce(t *testing.T) {
	m := NewVecMap[uint32, int](WithWorkers(8))
	want := 0
	for i := uint32(0); i < 5000; i++ {
		m.Store(i, int(i%17))
		want += int(i % 17)
	}
	got := ParReduce(m, func(_ uint32, v int) int { return v }, func(a, b int) int { return a + b }, 0)
	require.Equal(t, want, got)

	maxKey := ParReduce(m, func(k uint32, _ int) uint32 { return k }, func(a, b uint32) uint32 { return max(a, b) }, 0)
	require.Equal(t, uint32(4999), maxKey)
}

func TestVecMap_ParRetainMatchesRetain(t *testing.T) {
	build := func() *VecMap[int, int] {
		m := NewVecMap[int, int](WithWorkers(4))
		for i := 0; i < 3000; i++ {
			m.Store((i*7919)%4001, i)
		}
		for i := 0; i < 4001; i += 5 {
			m.Delete(i)
		}
		return m
	}
	keep := func(k, v int) bool { return (k+v)%3 != 0 }

	serial, parallel := build(), build()
	serial.Retain(keep)
	parallel.ParRetain(keep)
	require.True(t, EqualVecMap(serial, parallel))
	checkVecMap(t, parallel)
}

func TestSparseMap_ParRetain(t *testing.T) {
	m := NewSparseMap[int, int](WithWorkers(4))
	for i := 0; i < 5000; i++ {
		if i%3 != 0 {
			m.Store(i, i)
		}
	}
	serial := m.Clone()
	keep := func(k, _ int) bool { return k%4 != 1 }

	m.ParRetain(keep)
	serial.Retain(keep)

	require.True(t, EqualSparseMap(serial, m))
	checkSparseMap(t, m)
	require.Equal(t, serial.Size(), m.Size())
	for i := 1; i < 5000; i += 4 {
		require.False(t, m.HasKey(i))
	}
}

func TestSparseMap_ParRangeAndCount(t *testing.T) {
	m := NewSparseMap[int, int](WithWorkers(4))
	for i := 0; i < 1000; i++ {
		m.Store(i, i)
	}
	require.Equal(t, 500, m.ParCount(func(k, _ int) bool { return k%2 == 0 }))

	m.ParRangeRef(func(_ int, v *int) { *v = *v * 2 })

	var mu sync.Mutex
	seen := make(map[int]int)
	m.ParRange(func(k, v int) {
		mu.Lock()
		seen[k] = v
		mu.Unlock()
	})
	require.Len(t, seen, 1000)
	for k, v := range seen {
		require.Equal(t, 2*k, v)
	}

	total := ParReduceSparse(m, func(_ int, v int) int { return v }, func(a, b int) int { return a + b }, 0)
	require.Equal(t, 999*1000, total)
}

func TestParallel_SmallMapRunsInline(t *testing.T) {
	m := NewVecMap[int, int]()
	for i := 0; i < 10; i++ {
		m.Store(i, i)
	}
	// Without a fan-out the callback runs on the caller, in row order.
	var order []int
	m.ParRange(func(k, _ int) { order = append(order, k) })
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestParallel_Pool(t *testing.T) {
	pool, err := ants.NewPool(2)
	require.NoError(t, err)
	defer pool.Release()

	m := NewVecMap[int, int](WithWorkers(4), WithPool(pool))
	s := NewSparseMap[int, int](WithWorkers(4), WithPool(pool))
	for i := 0; i < 2000; i++ {
		m.Store(i, 1)
		s.Store(i, 1)
	}
	require.Equal(t, 2000, ParReduce(m, func(_ int, v int) int { return v }, func(a, b int) int { return a + b }, 0))
	s.ParRetain(func(k, _ int) bool { return k < 1000 })
	require.Equal(t, 1000, s.Size())
	checkSparseMap(t, s)
}

func TestParallel_ReleasedPoolRunsInline(t *testing.T) {
	pool, err := ants.NewPool(2)
	require.NoError(t, err)
	pool.Release()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := NewVecMap[int, int](WithWorkers(4), WithPool(pool), WithLogger(logger))
	for i := 0; i < 2000; i++ {
		m.Store(i, i)
	}
	require.Equal(t, 1000, m.ParCount(func(k, _ int) bool { return k < 1000 }))
	require.Contains(t, buf.String(), "pool rejected chunk")
	require.Contains(t, buf.String(), "parallel dispatch")
}

func TestParallel_PanicPropagates(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := NewVecMap[int, int](WithWorkers(4), WithLogger(logger))
	for i := 0; i < 4096; i++ {
		m.Store(i, i)
	}
	var visited atomic.Int64
	require.PanicsWithValue(t, "boom", func() {
		m.ParRange(func(k, _ int) {
			if k == 3000 {
				panic("boom")
			}
			visited.Add(1)
		})
	})
	// Other chunks ran to completion before the panic surfaced.
	require.GreaterOrEqual(t, visited.Load(), int64(3*1024))
	require.Contains(t, buf.String(), "parallel worker panicked")

	checkVecMap(t, m)
	require.Equal(t, 4096, m.Size())

	// The keep mask is never applied when a predicate panics.
	require.PanicsWithValue(t, "retain boom", func() {
		m.ParRetain(func(k, _ int) bool {
			if k == 4000 {
				panic("retain boom")
			}
			return k%2 == 0
		})
	})
	checkVecMap(t, m)
	require.Equal(t, 4096, m.Size())

	s := NewSparseMap[int, int](WithWorkers(4))
	for i := 0; i < 4096; i++ {
		s.Store(i, i)
	}
	require.PanicsWithValue(t, "sparse boom", func() {
		s.ParRetain(func(k, _ int) bool {
			if k == 4000 {
				panic("sparse boom")
			}
			return k%2 == 0
		})
	})
	// Slots cleared before the panic stay cleared and the live counter
	// follows them.
	checkSparseMap(t, s)
	require.Less(t, s.Size(), 4096)
	require.GreaterOrEqual(t, s.Size(), 2048)
	for i := 0; i < 3072; i += 2 {
		require.True(t, s.HasKey(i))
	}
	for i := 1; i < 3072; i += 2 {
		require.False(t, s.HasKey(i))
	}
	require.True(t, s.HasKey(4000))

	s.ParRetain(func(k, _ int) bool { return k%2 == 0 })
	checkSparseMap(t, s)
	require.Equal(t, 2048, s.Size())
}

func TestSparseMap_RetainPanicKeepsCounter(t *testing.T) {
	s := NewSparseMap[int, int]()
	for i := 0; i < 100; i++ {
		s.Store(i, i)
	}
	require.Panics(t, func() {
		s.ParRetain(func(k, _ int) bool {
			if k == 50 {
				panic("stop")
			}
			return k%2 == 0
		})
	})
	checkSparseMap(t, s)
	require.Equal(t, 75, s.Size())
}
