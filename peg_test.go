package skinnymutex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPegAndLock_manyConcurrentPeggers exercises the chain-walk/retirement
// protocol directly: many goroutines race to peg the same already-promoted
// fat simultaneously, and every one of them must observe the same *fat and
// leave it with a sane refcount once all of them have released.
func TestPegAndLock_manyConcurrentPeggers(t *testing.T) {
	var w word
	f := newFat(true)
	f.refcount = 1
	w.v.Store(&f.header)

	const n = 64
	var (
		start sync.WaitGroup
		ready sync.WaitGroup
		done  sync.WaitGroup
	)
	start.Add(1)
	ready.Add(n)
	done.Add(n)

	results := make([]*fat, n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer done.Done()
			ready.Done()
			start.Wait()
			got, retry := pegAndLock(&w, w.load())
			for retry {
				got, retry = pegAndLock(&w, w.load())
			}
			got.refcount++ // each concurrent observer holds its own reference
			results[i] = got
			releaseFat(&w, got)
		}()
	}

	ready.Wait()
	start.Done()
	done.Wait()

	for i, got := range results {
		assert.Same(t, f, got, "goroutine %d observed a different fat", i)
	}

	// The original holder's reference is still outstanding (f.held was
	// true, refcount started at 1 for that holder), so the word must
	// still point at f.
	assert.Equal(t, &f.header, w.load())
}

// TestPegAndLock_manyConcurrentPeggers_fullyReleasedSettlesToNil drives the
// same many-pegger race as above, but additionally releases the original
// holder's reference once every pegger has observed and released its own.
// Every peg's refcount must reach 0 exactly once (whichever of its two
// retirement events — its own creator's pass, or some other walker's pass
// over it as a stranger — comes second), so once all outstanding references
// are gone the word must settle back to nil: a leaked peg refcount keeps the
// primary chain alive forever.
func TestPegAndLock_manyConcurrentPeggers_fullyReleasedSettlesToNil(t *testing.T) {
	var w word
	f := newFat(true)
	f.refcount = 1
	w.v.Store(&f.header)

	const n = 64
	var (
		start sync.WaitGroup
		ready sync.WaitGroup
		done  sync.WaitGroup
	)
	start.Add(1)
	ready.Add(n)
	done.Add(n)

	for i := 0; i < n; i++ {
		go func() {
			defer done.Done()
			ready.Done()
			start.Wait()
			got, retry := pegAndLock(&w, w.load())
			for retry {
				got, retry = pegAndLock(&w, w.load())
			}
			got.refcount++
			releaseFat(&w, got)
		}()
	}

	ready.Wait()
	start.Done()
	done.Wait()

	f.mu.Lock()
	releaseFat(&w, f)

	assert.Nil(t, w.load())
}

func TestPegAndLock_headChangedConcurrently_retries(t *testing.T) {
	var w word
	w.v.Store(nil)

	head := w.load()
	w.v.Store(&lockedSentinel) // simulate a concurrent fast-lock

	_, retry := pegAndLock(&w, head)
	assert.True(t, retry)
}

func TestGetFat_promotesBareWord(t *testing.T) {
	var w word
	w.v.Store(nil)

	f, retry := getFat(&w, w.load())
	assert.False(t, retry)
	assert.False(t, f.held)
	f.mu.Unlock()
}

func TestGetFat_promotesLockedSentinel(t *testing.T) {
	var w word
	w.v.Store(&lockedSentinel)

	f, retry := getFat(&w, w.load())
	assert.False(t, retry)
	assert.True(t, f.held)
	f.mu.Unlock()
}

func TestReleaseFat_lastRefFreesWord(t *testing.T) {
	var w word
	f := newFat(false)
	f.refcount = 1
	w.v.Store(&f.header)

	f.mu.Lock()
	freed := releaseFat(&w, f)
	assert.True(t, freed)
	assert.Nil(t, w.load())
}

func TestReleaseFat_remainingRefsKeepsWord(t *testing.T) {
	var w word
	f := newFat(false)
	f.refcount = 2
	w.v.Store(&f.header)

	f.mu.Lock()
	freed := releaseFat(&w, f)
	assert.False(t, freed)
	assert.Equal(t, &f.header, w.load())
}
