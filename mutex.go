package skinnymutex

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Mutex is a skinny mutex: a single pointer-sized atomic word in the
// uncontended case, promoting transparently to a heap record with real
// blocking machinery under contention.
//
// The zero value is not ready to use — call Init, or use New.
type Mutex struct {
	w       word
	log     *logiface.Logger[*stumpy.Event]
	history *ring[int64]
}

// New returns an initialized, unlocked Mutex.
func New(opts ...Option) *Mutex {
	var x Mutex
	x.Init(opts...)
	return &x
}

// Init sets x to the unlocked state. It never fails, and may be called on
// the zero value of Mutex (or reused after Destroy).
func (x *Mutex) Init(opts ...Option) {
	x.w.v.Store(nil)
	x.history = newRing[int64](8)
	for _, o := range opts {
		o(x)
	}
}

// Destroy requires the mutex be unlocked (val == 0); otherwise it returns
// ErrBusy. There is nothing to release in this Go port (no OS resources are
// held while unlocked), but the operation is kept so callers can assert a
// handle is no longer in use before discarding it.
func (x *Mutex) Destroy() error {
	if x.w.load() != nil {
		return ErrBusy
	}
	return nil
}

// Lock acquires the mutex, blocking until it is available.
func (x *Mutex) Lock() error {
	if x.w.tryFastLock() {
		return nil
	}
	return x.lockSlow()
}

// TryLock attempts to acquire the mutex without blocking. It returns
// ErrBusy if the mutex is currently held.
func (x *Mutex) TryLock() error {
	for {
		head := x.w.load()
		switch {
		case head == nil:
			if x.w.cas(head, &lockedSentinel) {
				return nil
			}
		case head == &lockedSentinel:
			return ErrBusy
		default:
			f, retry := pegAndLock(&x.w, head)
			if retry {
				continue
			}
			// Bumps refcount after setting held; the order is
			// arbitrary but kept fixed and documented here.
			if f.held {
				f.mu.Unlock()
				return ErrBusy
			}
			f.held = true
			f.refcount++
			f.mu.Unlock()
			return nil
		}
	}
}

// Unlock releases the mutex. It returns ErrNotOwner if the mutex was not
// held; ownership is not tracked, so this is a best-effort check against
// observable state only.
func (x *Mutex) Unlock() error {
	if x.w.tryFastUnlock() {
		return nil
	}
	return x.unlockSlow()
}
