package resource

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/hupe1980/faultkit/internal/errs"
)

// ErrMemoryLimitExceeded is returned when a reservation would exceed the
// memory limit. It matches errs.ErrAllocation with errors.Is.
var ErrMemoryLimitExceeded = fmt.Errorf("%w: memory limit exceeded", errs.ErrAllocation)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for buffers held at once.
	// If 0, usage is only tracked.
	MemoryLimitBytes int64

	// MaxWorkers is the maximum number of concurrent trials.
	// If 0, defaults to 1.
	MaxWorkers int64

	// IOLimitBytesPerSec caps output throughput. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages memory, worker and IO budgets.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	workers *semaphore.Weighted

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Reserve claims bytes of memory without blocking and returns the function
// that gives them back.
func (c *Controller) Reserve(bytes int64) (release func(), err error) {
	if c == nil || bytes <= 0 {
		return func() {}, nil
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return func() {}, fmt.Errorf("%w: need %d bytes, limit %d, in use %d",
			ErrMemoryLimitExceeded, bytes, c.cfg.MemoryLimitBytes, c.memUsed.Load())
	}
	c.memUsed.Add(bytes)

	return c.releaser(bytes), nil
}

// Acquire claims bytes of memory, blocking until they are available or ctx
// is done. A request larger than the whole limit fails immediately.
func (c *Controller) Acquire(ctx context.Context, bytes int64) (release func(), err error) {
	if c == nil || bytes <= 0 {
		return func() {}, nil
	}

	if c.memSem != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			return func() {}, fmt.Errorf("%w: need %d bytes, limit %d",
				ErrMemoryLimitExceeded, bytes, c.cfg.MemoryLimitBytes)
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return func() {}, err
		}
	}
	c.memUsed.Add(bytes)

	return c.releaser(bytes), nil
}

func (c *Controller) releaser(bytes int64) func() {
	var once atomic.Bool
	return func() {
		if once.Swap(true) {
			return
		}
		if c.memSem != nil {
			c.memSem.Release(bytes)
		}
		c.memUsed.Add(-bytes)
	}
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MaxWorkers returns the configured worker limit (1 for a nil controller).
func (c *Controller) MaxWorkers() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxWorkers)
}

// AcquireWorker blocks until a worker slot is free or ctx is done.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.workers.Acquire(ctx, 1)
}

// ReleaseWorker returns a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workers.Release(1)
}

// WaitIO blocks until the IO limit admits bytes. Requests larger than the
// limiter burst are admitted in burst-sized steps.
func (c *Controller) WaitIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
