// Package resource provides admission control for store operations.
package resource

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultIOBurstBytes is the smallest burst a Controller uses. It is large
// enough to admit a maximum-size value in one request.
const DefaultIOBurstBytes = 1 << 16

// Config holds resource limits.
type Config struct {
	// MaxConcurrentOps is the maximum number of operations admitted at once.
	// If 0, concurrency is unlimited.
	MaxConcurrentOps int64

	// IOLimitBytesPerSec is the maximum read/write throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64

	// IOBurstBytes is the largest single IO request admitted by the limiter.
	// If 0, defaults to max(IOLimitBytesPerSec, DefaultIOBurstBytes). Smaller
	// values are raised to DefaultIOBurstBytes.
	IOBurstBytes int
}

// Controller bounds in-flight operations and IO throughput.
//
// A nil *Controller admits everything.
type Controller struct {
	cfg Config

	opSem    *semaphore.Weighted // nil if unlimited
	inFlight atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxConcurrentOps > 0 {
		c.opSem = semaphore.NewWeighted(cfg.MaxConcurrentOps)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		burst := cfg.IOBurstBytes
		if burst <= 0 {
			burst = int(cfg.IOLimitBytesPerSec)
		}
		burst = max(burst, DefaultIOBurstBytes)
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), burst)
	}

	return c
}

// AcquireOp reserves an operation slot.
// Blocks until a slot is free or ctx is canceled.
func (c *Controller) AcquireOp(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.opSem != nil {
		if err := c.opSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.inFlight.Add(1)
	return nil
}

// TryAcquireOp attempts to reserve an operation slot without blocking.
func (c *Controller) TryAcquireOp() bool {
	if c == nil {
		return true
	}
	if c.opSem != nil && !c.opSem.TryAcquire(1) {
		return false
	}
	c.inFlight.Add(1)
	return true
}

// ReleaseOp releases an operation slot.
func (c *Controller) ReleaseOp() {
	if c == nil {
		return
	}
	c.inFlight.Add(-1)
	if c.opSem != nil {
		c.opSem.Release(1)
	}
}

// InFlight returns the number of admitted operations not yet released.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// Burst returns the largest request AcquireIO can admit, or 0 if IO is
// unlimited.
func (c *Controller) Burst() int {
	if c == nil || c.ioLimiter == nil {
		return 0
	}
	return c.ioLimiter.Burst()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
//
// A request that cannot be admitted before ctx ends returns an error matching
// ctx.Err(), or context.DeadlineExceeded when the limiter knows up front that
// the wait would outlast the deadline.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil || bytes <= 0 {
		return nil
	}
	if err := c.ioLimiter.WaitN(ctx, bytes); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if _, ok := ctx.Deadline(); ok {
			return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		return err
	}
	return nil
}
