package skinnymutex

import "golang.org/x/exp/constraints"

// ring is a small fixed-capacity ring buffer that overwrites its oldest
// entry once full. It is a simplified sibling of catrate's ringBuffer: that
// one supports arbitrary-position insert (for maintaining a sorted window
// of event deadlines); contention history only ever appends at the front
// and evicts from the back, so the general insert-at-index machinery isn't
// needed here.
type ring[E constraints.Ordered] struct {
	s    []E
	next int
	n    int
}

func newRing[E constraints.Ordered](capacity int) *ring[E] {
	return &ring[E]{s: make([]E, capacity)}
}

func (r *ring[E]) push(v E) {
	if len(r.s) == 0 {
		return
	}
	r.s[r.next] = v
	r.next = (r.next + 1) % len(r.s)
	if r.n < len(r.s) {
		r.n++
	}
}

// slice returns the buffered values, oldest first.
func (r *ring[E]) slice() []E {
	out := make([]E, r.n)
	if r.n == 0 {
		return out
	}
	start := (r.next - r.n + len(r.s)) % len(r.s)
	for i := range out {
		out[i] = r.s[(start+i)%len(r.s)]
	}
	return out
}
