package skinnymutex

import (
	"sync"
	"unsafe"
)

// header is the common leading field of every heap record a skinny word can
// point at (peg or fat). Its address is what the atomic word actually
// stores; isPeg distinguishes which concrete type a *header came from.
//
// peg and fat both embed header as their first field, so a *peg or *fat can
// be reinterpreted as a *header (and back) via unsafe.Pointer without
// copying — the same "struct with common prefix" trick the C original uses
// with struct common. This invariant (header must stay the first field) is
// the one thing that must never change in either struct below.
type header struct {
	isPeg bool
}

// asPeg reinterprets h as a *peg. Caller must have already checked h.isPeg.
func asPeg(h *header) *peg {
	return (*peg)(unsafe.Pointer(h))
}

// asFat reinterprets h as a *fat. Caller must have already checked !h.isPeg.
func asFat(h *header) *fat {
	return (*fat)(unsafe.Pointer(h))
}

// peg is a small record published into the skinny word to pin a fat against
// reclamation while a goroutine walks the chain to reach it. See pegAndLock
// for the full protocol.
type peg struct {
	header

	// refcount is the number of live references to this peg: the
	// goroutine that created it, and the skinny word pointing at it.
	// Never exceeds 2; updated with atomic fetch-and-subtract since a
	// peg may be retired concurrently by its owner and by a later
	// goroutine walking the same secondary chain.
	refcount atomicU8

	// next is the previously-observed head: another peg, or the fat at
	// the end of the chain.
	next *header
}

// fat is the heavy structure: the blocking mutex, condition variable, and
// contention bookkeeping a Mutex promotes to once it is actually contended
// or a waiter needs blocking state.
type fat struct {
	header

	mu   sync.Mutex
	cond *sync.Cond

	// held reports whether the logical mutex is currently owned. Guarded
	// by mu.
	held bool

	// waiters is the number of goroutines blocked on cond awaiting
	// acquire or transfer. Guarded by mu.
	waiters int

	// refcount is offset by -1: it counts every reference to fat except
	// the primary chain (which is absorbed into the offset). Guarded by
	// mu except during the peg-protocol steps, where the owner is
	// guaranteed unique by construction.
	refcount int64

	// transferGen is a monotonically nondecreasing veto generation
	// counter. Guarded by mu.
	transferGen int64

	// transfers is the number of goroutines currently waiting
	// specifically to receive a transfer. Guarded by mu.
	transfers int
}

func newFat(held bool) *fat {
	f := &fat{held: held}
	if held {
		// The pseudo-reference from the holding goroutine, expressed
		// as a real +1: the primary chain itself contributes 0 under
		// the offset-by-1 encoding, so this +1 is the holder alone.
		f.refcount = 1
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}
