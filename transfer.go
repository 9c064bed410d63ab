package skinnymutex

import (
	"context"
)

// Transfer atomically releases a and acquires b. A concurrent
// VetoTransfer(b) observed between release and acquire causes
// Transfer to fail with ErrAgain instead of succeeding, leaving a
// re-acquired and b untouched by this call.
//
// The caller must hold a; on success it holds b instead. On ErrAgain or any
// other error, the caller again holds a.
func (a *Mutex) Transfer(ctx context.Context, b *Mutex) error {
	var fatB *fat
	for {
		bHead := b.w.load()
		if bHead == nil {
			if !b.w.cas(bHead, &lockedSentinel) {
				continue
			}
			// b was neither held nor contended: the simple case.
			if err := a.Unlock(); err != nil {
				// Unwind: restore b to unlocked to recover to the
				// original state.
				return composeErrors(err, b.Unlock())
			}
			return nil
		}

		f, retry := getFat(&b.w, bHead)
		if retry {
			continue
		}
		fatB = f
		break
	}

	fatB.refcount++
	transferGen := fatB.transferGen

	// We are going to wait to acquire b, so a must be released. Try the
	// easy way first.
	if !a.w.cas(&lockedSentinel, nil) {
		// a has contention: we cannot hold two fat mutexes at once
		// without risking deadlock, so drop b's mutex first.
		fatB.mu.Unlock()
		err := a.unlockSlow()
		fatB.mu.Lock()
		if err != nil {
			releaseFat(&b.w, fatB)
			return err
		}
	}

	fatB.transfers++
	fatB.waiters++

	// fat.cond is a sync.Cond, which has no notion of context
	// cancellation; a watcher goroutine turns ctx.Done() into a
	// Broadcast so the wait loop below wakes up and re-checks ctx.Err()
	// instead of blocking past cancellation.
	if done := ctx.Done(); done != nil {
		stop := make(chan struct{})
		defer close(stop)
		go func() {
			select {
			case <-done:
				fatB.mu.Lock()
				fatB.cond.Broadcast()
				fatB.mu.Unlock()
			case <-stop:
			}
		}()
	}

	for {
		if !fatB.held {
			fatB.transfers--
			fatB.waiters--
			fatB.held = true
			fatB.mu.Unlock()
			return nil
		}

		if fatB.transferGen != transferGen {
			break // vetoed
		}

		if err := ctx.Err(); err != nil {
			break
		}

		fatB.cond.Wait()
	}

	fatB.transfers--
	fatB.waiters--
	var waitErr error
	if err := ctx.Err(); err != nil {
		waitErr = err
	} else {
		waitErr = ErrAgain
	}
	if releaseFat(&b.w, fatB) {
		a.trace("demote", nil)
	}
	return composeErrors(waitErr, a.Lock())
}

// VetoTransfer requires the caller to hold x. It causes any Transfer calls
// currently pending against x (i.e. waiting specifically to receive a
// hand-off, not a plain Lock) to fail with ErrAgain, by bumping x's veto
// generation and waking them to notice the change. Transfers that start
// after VetoTransfer returns are unaffected (they observe the new
// generation from the start).
func (x *Mutex) VetoTransfer() error {
	for {
		head := x.w.load()
		if head == &lockedSentinel {
			// Held, but no fat: no transfer could possibly be
			// pending.
			return nil
		}
		if head == nil {
			return ErrNotOwner
		}

		f, retry := pegAndLock(&x.w, head)
		if retry {
			continue
		}

		if !f.held {
			f.mu.Unlock()
			return ErrNotOwner
		}

		f.transferGen++
		if f.transfers > 0 {
			f.cond.Broadcast()
		}
		f.mu.Unlock()
		x.trace("veto", nil)
		return nil
	}
}
