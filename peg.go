package skinnymutex

// pegAndLock implements the pegging reclamation protocol: given a skinny
// word and a previously-observed head (a *peg or *fat), it publishes
// a peg to pin the chain, walks to the fat, locks it, then retires the
// chain of pegs it walked through (including its own), possibly freeing
// some of them.
//
// It returns (fat, false) with fat.mu held on success, or (nil, true) if the
// word had gone back to nil or &lockedSentinel (the promotion disappeared) —
// the caller should reload word.load() and retry. If the word merely points
// at a different chain, the peg is re-linked onto it and installed there.
func pegAndLock(w *word, head *header) (*fat, bool) {
	p := &peg{next: head}
	p.header.isPeg = true
	p.refcount.init(2)

	for !w.cas(head, &p.header) {
		head = w.load()
		if head == nil || head == &lockedSentinel {
			// The fat this peg would have pinned is gone; back out.
			return nil, true
		}
		p.next = head
	}

	// The peg is installed, so the rest of the chain cannot disappear
	// from under us. Walk past any further pegs to find the fat.
	n := head
	for n.isPeg {
		n = asPeg(n).next
	}
	f := asFat(n)
	f.mu.Lock()

	// The fat is locked and pinned by us holding its mutex, so we can
	// release our peg now. Demote the primary chain back to "direct",
	// capturing whatever the word pointed to at that instant.
	old := w.swap(&f.header)

	// Setting the word to &f.header has theoretically created a new
	// reference to the fat (e.g. from a concurrent secondary chain that
	// formed in the interim). Assume so for now; the walk below will
	// reverse this if no such chain actually materialized.
	f.refcount++

	// First walk: starting at the old head, retire strangers' pegs one by
	// one, purely to decide where the second walk (below) should start
	// and with what decrement. This loop never retires our own peg (p) —
	// it only ever decides that. decr is reset at the top of every
	// iteration: whether our own peg is found "fresh" (not yet walked
	// past by anyone) only depends on *this* iteration, not on how many
	// strangers were retired on the way to it.
	n = old
	var decr uint32
	for {
		decr = 2
		if n == &p.header {
			// Reached our own peg without anyone else having walked
			// past it: both of its contributions (creator, chain)
			// are still outstanding.
			break
		}
		decr = 1
		if n == &f.header {
			// Reached the fat directly: no new chain actually
			// materialized, so undo the preemptive increment. Our
			// own peg was already walked past by someone else, so
			// only its creator contribution remains.
			f.refcount--
			break
		}
		cp := asPeg(n)
		if cp.refcount.subAndGet(1) != 0 {
			// A secondary chain remains pinned by this stranger
			// peg; whoever eventually frees it will continue the
			// walk. Our own peg (further down, if at all) was
			// already walked past, so only its creator
			// contribution remains.
			break
		}
		n = cp.next
	}

	// Second walk: unconditionally retire our own peg (p) using the
	// decrement the first walk determined, cascading onward through
	// whatever it frees, exactly as the first walk would have had it
	// continued. This always runs, regardless of why the first walk
	// stopped.
	cp := p
	for {
		if cp.refcount.subAndGet(decr) != 0 {
			return f, false
		}
		next := cp.next
		if next == &f.header {
			f.refcount--
			return f, false
		}
		cp = asPeg(next)
		decr = 1
	}
}
