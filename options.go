package idxmap

import (
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
)

// MapConfig defines configurable VecMap and SparseMap options.
type MapConfig struct {
	sizeHint   int
	maxKeyHint int
	workers    int
	pool       *ants.Pool
	logger     *slog.Logger
}

// WithPresize configures a new VecMap with capacity enough to hold
// sizeHint entries without reallocating its rows. A SparseMap has no rows:
// there it pre-allocates sizeHint key-addressed slots, covering keys 0 to
// sizeHint-1, like WithMaxKeyHint(sizeHint-1). If sizeHint is zero or
// negative, the value is ignored.
func WithPresize(sizeHint int) func(*MapConfig) {
	return func(c *MapConfig) {
		c.sizeHint = sizeHint
	}
}

// WithMaxKeyHint pre-sizes the slot array so that keys up to and
// including maxKey are addressable without growth. Negative values are
// ignored.
func WithMaxKeyHint(maxKey int) func(*MapConfig) {
	return func(c *MapConfig) {
		c.maxKeyHint = maxKey + 1
	}
}

// WithWorkers bounds the number of goroutines used by the Par* methods.
// Defaults to runtime.GOMAXPROCS(0).
func WithWorkers(n int) func(*MapConfig) {
	return func(c *MapConfig) {
		c.workers = n
	}
}

// WithPool runs the chunks of the Par* methods on an externally owned
// ants pool instead of spawning goroutines per call. The pool is not
// released by the map.
func WithPool(pool *ants.Pool) func(*MapConfig) {
	return func(c *MapConfig) {
		c.pool = pool
	}
}

// WithLogger sets the logger used by the parallel layer. By default the
// map is silent.
func WithLogger(logger *slog.Logger) func(*MapConfig) {
	return func(c *MapConfig) {
		c.logger = logger
	}
}

func newMapConfig(options []func(*MapConfig)) *MapConfig {
	c := &MapConfig{}
	for _, o := range options {
		o(c)
	}
	return c
}

// parallelism returns the worker count for a fan-out.
func (c *MapConfig) parallelism() int {
	if c == nil || c.workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.workers
}

func (c *MapConfig) workerPool() *ants.Pool {
	if c == nil {
		return nil
	}
	return c.pool
}

func (c *MapConfig) log() *slog.Logger {
	if c == nil || c.logger == nil {
		return discardLogger
	}
	return c.logger
}

var discardLogger = slog.New(slog.DiscardHandler)
