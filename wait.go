package skinnymutex

import (
	"context"
	"time"
)

// Wait requires the caller to hold x. It releases x (so another waiter may
// acquire it), blocks on c until signaled or ctx is canceled, then
// re-acquires x before returning — even if c.Wait returns an error.
func (x *Mutex) Wait(ctx context.Context, c ExternalCond) error {
	return x.wait(ctx, c, nil)
}

// WaitDeadline is Wait with an additional absolute deadline; it returns
// context.DeadlineExceeded if the deadline elapses first.
func (x *Mutex) WaitDeadline(ctx context.Context, c ExternalCond, deadline time.Time) error {
	return x.wait(ctx, c, &deadline)
}

func (x *Mutex) wait(ctx context.Context, c ExternalCond, deadline *time.Time) error {
	f, err := obtainHeld(&x.w)
	if err != nil {
		return err
	}

	// fat remains pinned by the holder's pseudo-reference throughout,
	// which is still in place: we are that holder.
	if f.waiters > 0 {
		f.cond.Signal()
	}
	f.held = false

	waitCtx := ctx
	if deadline != nil {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithDeadline(ctx, *deadline)
		defer cancel()
	}

	defer fatLock(f)

	return c.Wait(waitCtx, &f.mu)
}
