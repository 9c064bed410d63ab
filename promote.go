package skinnymutex

// getFat dispatches on the word's current head: promote a bare word (nil
// or &lockedSentinel) or otherwise peg-and-lock the existing chain.
func getFat(w *word, head *header) (*fat, bool) {
	if head == nil || head == &lockedSentinel {
		return promote(w, head)
	}
	return pegAndLock(w, head)
}

// promote allocates a fat, locks it, and installs it in place of head. On a
// losing CAS race it reports retry; the caller reloads word.load().
//
// Go's allocator has no recoverable out-of-memory path, so unlike a C
// malloc-backed equivalent this cannot fail.
func promote(w *word, head *header) (*fat, bool) {
	f := newFat(head == &lockedSentinel)
	f.mu.Lock()

	if w.cas(head, &f.header) {
		return f, false
	}
	f.mu.Unlock()
	return nil, true
}

// releaseFat is called with fat.mu held. It decrements refcount and, if
// that was the last reference and the word can be CAS'd back to nil
// (meaning no peg sits on the primary chain either), the fat is retired.
func releaseFat(w *word, f *fat) (freed bool) {
	f.refcount--
	if f.refcount == 0 {
		freed = w.cas(&f.header, nil)
	}
	// No explicit free: the GC reclaims f once it is no longer referenced
	// by any chain, peg, or waiter.
	f.mu.Unlock()
	return freed
}
