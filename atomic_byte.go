package skinnymutex

import "sync/atomic"

// atomicU8 is a fetch-and-subtract counter bounded to [0,2] in practice
// (peg.refcount). sync/atomic has no single-byte primitive, so this wraps
// atomic.Uint32 instead; a byte's worth of range is all that's ever used.
type atomicU8 struct {
	v atomic.Uint32
}

func (a *atomicU8) init(n uint32) { a.v.Store(n) }

// subAndGet atomically subtracts n and returns the resulting value.
func (a *atomicU8) subAndGet(n uint32) uint32 {
	return a.v.Add(^(n - 1))
}
