package idxmap

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"
)

const (
	// minParallelItems defines the minimum number of items required for parallel processing.
	// Below this threshold, serial processing is used to avoid the overhead of goroutine creation.
	minParallelItems = 256
	// bitsetWordBits is the chunk alignment for SparseMap fan-outs, so that
	// two workers never write the same occupancy word.
	bitsetWordBits = 64
)

// CacheLineSize is used in structure padding to prevent false sharing.
// It's automatically calculated using the `golang.org/x/sys` package.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// paddedSlot holds one per-chunk result on its own cache line.
type paddedSlot[R any] struct {
	v R
	_ cpu.CacheLinePad
}

// fallingCounter is the live count shared by the workers of a parallel
// retain. Each worker applies a single decrement.
type fallingCounter struct {
	//lint:ignore U1000 prevents false sharing
	pad [(CacheLineSize - unsafe.Sizeof(struct {
		n atomic.Int64
	}{})%CacheLineSize) % CacheLineSize]byte
	n atomic.Int64
}

// calcParallelism calculates the number of goroutines for parallel processing.
//
// Parameters:
//   - items: Number of items to process.
//   - threshold: Minimum threshold to enable parallel processing.
//   - number of available CPU cores
//
// Returns:
//   - chunks: Suggested degree of parallelism (number of goroutines).
//   - chunkSize: Number of items processed per goroutine
func calcParallelism(items, threshold, cpus int) (chunkSize, chunks int) {
	// If the items is too small, use single-threaded processing.
	if items <= threshold {
		return items, 1
	}

	chunks = min(items/threshold, cpus)

	chunkSize = (items + chunks - 1) / chunks

	return chunkSize, chunks
}

// plan splits items for a fan-out. A non-zero align rounds the chunk size
// up to a multiple of align.
func (c *MapConfig) plan(items, align int) (chunkSize, chunks int) {
	chunkSize, chunks = calcParallelism(items, minParallelItems, c.parallelism())
	if chunks > 1 && align > 1 {
		chunkSize = (chunkSize + align - 1) / align * align
		chunks = (items + chunkSize - 1) / chunkSize
	}
	return
}

// workerPanic is the first panic recovered from a chunk.
type workerPanic struct {
	value any
}

// run calls process for every chunk of [0, items) and returns after all
// of them have finished. With a single chunk, process runs on the caller.
// A panic in any chunk is re-raised on the caller once every chunk is done.
func (c *MapConfig) run(items, chunkSize, chunks int, process func(chunk, start, end int)) {
	if chunks <= 1 {
		process(0, 0, items)
		return
	}

	log := c.log()
	log.Debug("idxmap: parallel dispatch",
		"items", items, "chunks", chunks, "chunkSize", chunkSize, "pooled", c.workerPool() != nil)

	var failed atomic.Pointer[workerPanic]
	guard := func(chunk int) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("idxmap: parallel worker panicked", "chunk", chunk, "panic", r)
				failed.CompareAndSwap(nil, &workerPanic{value: r})
			}
		}()
		process(chunk, chunk*chunkSize, min((chunk+1)*chunkSize, items))
	}

	if pool := c.workerPool(); pool != nil {
		var wg sync.WaitGroup
		wg.Add(chunks)
		for i := 0; i < chunks; i++ {
			if err := pool.Submit(func() {
				defer wg.Done()
				guard(i)
			}); err != nil {
				log.Warn("idxmap: pool rejected chunk, running inline", "chunk", i, "error", err)
				guard(i)
				wg.Done()
			}
		}
		wg.Wait()
	} else {
		var g errgroup.Group
		g.SetLimit(c.parallelism())
		for i := 0; i < chunks; i++ {
			g.Go(func() error {
				guard(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	if p := failed.Load(); p != nil {
		panic(p.value)
	}
}
