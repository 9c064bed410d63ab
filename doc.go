// Package skinnymutex implements a mutual-exclusion primitive whose
// unlocked, uncontended state occupies exactly one machine word and incurs
// no heap allocation. When contention arises the mutex transparently
// promotes itself to a heavier structure carrying the blocking machinery
// (a sync.Mutex plus a sync.Cond), and demotes back to the one-word form
// once no goroutine is involved any more.
//
// The interesting engineering is safe memory reclamation of the heavy
// structure under lock-free promotion/demotion ("pegging", a lightweight
// alternative to hazard pointers), and a lock-transfer protocol that
// atomically hands a held Mutex off to another Mutex while respecting the
// wait queue and supporting veto.
package skinnymutex
