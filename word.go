package skinnymutex

import "sync/atomic"

// lockedSentinel is the pointer-typed stand-in for the C implementation's
// bit pattern 1 ("locked, no waiter has ever needed heavy state"). Go does
// not allow punning an integer into a pointer outside unsafe, so a real,
// distinct, never-dereferenced allocation plays that role instead: any
// *header other than nil or &lockedSentinel is a live peg or fat.
var lockedSentinel header

// word is the skinny handle: a single atomic, pointer-sized cell.
//
//	nil              -> unlocked, no heavy state allocated
//	&lockedSentinel  -> locked, no waiter has ever needed heavy state
//	anything else    -> heavy state exists; see (*header).isPeg
type word struct {
	v atomic.Pointer[header]
}

func (w *word) load() *header { return w.v.Load() }

func (w *word) cas(old, new *header) bool { return w.v.CompareAndSwap(old, new) }

func (w *word) swap(new *header) *header { return w.v.Swap(new) }

// tryFastLock attempts the wait-free uncontended acquire: nil -> &lockedSentinel.
func (w *word) tryFastLock() bool { return w.cas(nil, &lockedSentinel) }

// tryFastUnlock attempts the wait-free uncontended release: &lockedSentinel -> nil.
func (w *word) tryFastUnlock() bool { return w.cas(&lockedSentinel, nil) }
