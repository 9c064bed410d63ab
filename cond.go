package skinnymutex

import (
	"context"
	"sync"
)

// ExternalCond is the contract a caller-supplied, business-level condition
// variable must satisfy to be used with Mutex.Wait / Mutex.WaitDeadline. It
// mirrors pthread_cond_wait's contract (atomically unlock l, block until
// signaled or ctx is done, relock l before returning) without binding a
// fixed Locker at construction time the way sync.Cond does — the skinny
// mutex's backing lock is not stable across promotion/demotion, so it must
// be supplied per call.
type ExternalCond interface {
	// Wait atomically unlocks l, blocks until Signal/Broadcast is called
	// or ctx is done, then relocks l before returning.
	Wait(ctx context.Context, l sync.Locker) error
}

// Cond is a ready-to-use ExternalCond, implemented with the "replace on
// broadcast" channel pattern: waiters select on a channel that Broadcast
// closes and replaces, which is the idiomatic way to give a Go condition
// variable both an arbitrary per-call Locker and context cancellation,
// neither of which sync.Cond supports.
//
// The zero value is ready to use.
type Cond struct {
	mu sync.Mutex
	ch chan struct{}
}

func (c *Cond) ch_() chan struct{} {
	if c.ch == nil {
		c.ch = make(chan struct{})
	}
	return c.ch
}

// Signal and Broadcast are equivalent for Cond: a channel close wakes every
// current waiter, so there is no cheaper way to wake "at least one".
func (c *Cond) Signal() { c.Broadcast() }

// Broadcast wakes all goroutines currently blocked in Wait.
func (c *Cond) Broadcast() {
	c.mu.Lock()
	ch := c.ch_()
	c.ch = make(chan struct{})
	c.mu.Unlock()
	close(ch)
}

// Wait implements ExternalCond.
func (c *Cond) Wait(ctx context.Context, l sync.Locker) error {
	c.mu.Lock()
	ch := c.ch_()
	c.mu.Unlock()

	l.Unlock()
	defer l.Lock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
