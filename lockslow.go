package skinnymutex

// fatLock is called with fat.mu held and the caller's refcount contribution
// already added; it waits out any current holder, then marks the mutex
// held and returns with fat.mu unlocked.
//
// There is no cancellation to defer around here: Go goroutines have no
// external cancellation signal that could interrupt sync.Cond.Wait.
func fatLock(f *fat) {
	for f.held {
		f.waiters++
		f.cond.Wait()
		f.waiters--
	}
	f.held = true
	f.mu.Unlock()
}

// lockSlow is the slow path taken when the fast CAS(nil -> &lockedSentinel)
// fails.
func (x *Mutex) lockSlow() error {
	for {
		head := x.w.load()
		if head == nil {
			if x.w.cas(head, &lockedSentinel) {
				return nil
			}
			continue
		}

		promoting := head == &lockedSentinel
		f, retry := getFat(&x.w, head)
		if retry {
			continue
		}
		if promoting {
			x.trace("promote", nil)
		}
		f.refcount++
		fatLock(f)
		return nil
	}
}

// obtainHeld loops getFat until the resulting fat reports held, returning
// it locked; if it is not held, the mutex was not owned, and ErrNotOwner is
// returned instead.
func obtainHeld(w *word) (*fat, error) {
	for {
		head := w.load()
		if head == nil {
			return nil, ErrNotOwner
		}

		f, retry := getFat(w, head)
		if retry {
			continue
		}
		if f.held {
			return f, nil
		}
		f.mu.Unlock()
		return nil, ErrNotOwner
	}
}

// unlockSlow is the slow path taken when the fast CAS(&lockedSentinel -> nil)
// fails.
func (x *Mutex) unlockSlow() error {
	f, err := obtainHeld(&x.w)
	if err != nil {
		return err
	}

	f.held = false
	if f.waiters > 0 {
		f.cond.Signal()
	}
	if releaseFat(&x.w, f) {
		x.trace("demote", nil)
	}
	return nil
}
