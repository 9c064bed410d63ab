package skinnymutex

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransfer_toUnlockedMutex(t *testing.T) {
	a := New()
	b := New()

	assert.Nil(t, a.Lock())
	assert.Nil(t, a.Transfer(context.Background(), b))

	// a is released, b is now held.
	assert.Nil(t, a.Lock())
	assert.Nil(t, a.Unlock())

	assert.Equal(t, ErrBusy, b.TryLock())
	assert.Nil(t, b.Unlock())
}

func TestTransfer_waitsForHeldTarget_thenSucceeds(t *testing.T) {
	a := New()
	b := New()

	assert.Nil(t, a.Lock())
	assert.Nil(t, b.Lock())

	done := make(chan error, 1)
	go func() {
		done <- a.Transfer(context.Background(), b)
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Transfer returned before b was released")
	default:
	}

	assert.Nil(t, b.Unlock())

	select {
	case err := <-done:
		assert.Nil(t, err)
	case <-time.After(time.Second):
		t.Fatal("Transfer never completed")
	}

	// a must now be unlocked, b held by the goroutine that ran Transfer.
	assert.Nil(t, a.Lock())
	assert.Nil(t, a.Unlock())
	assert.Equal(t, ErrBusy, b.TryLock())
	assert.Nil(t, b.Unlock())
}

func TestTransfer_vetoedByConcurrentVetoTransfer(t *testing.T) {
	a := New()
	b := New()

	assert.Nil(t, a.Lock())
	assert.Nil(t, b.Lock())

	done := make(chan error, 1)
	go func() {
		done <- a.Transfer(context.Background(), b)
	}()

	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, b.VetoTransfer())

	select {
	case err := <-done:
		assert.Equal(t, ErrAgain, err)
	case <-time.After(time.Second):
		t.Fatal("Transfer never returned after veto")
	}

	// a should be held again by the caller after a vetoed transfer.
	assert.Equal(t, ErrBusy, a.TryLock())
	assert.Nil(t, a.Unlock())

	assert.Nil(t, b.Unlock())
}

func TestVetoTransfer_notOwner(t *testing.T) {
	m := New()
	assert.Equal(t, ErrNotOwner, m.VetoTransfer())
}

func TestVetoTransfer_noFatNoop(t *testing.T) {
	m := New()
	assert.Nil(t, m.Lock())
	assert.Nil(t, m.VetoTransfer())
	assert.Nil(t, m.Unlock())
}

func TestTransfer_contextCanceledWhileWaiting(t *testing.T) {
	a := New()
	b := New()

	assert.Nil(t, a.Lock())
	assert.Nil(t, b.Lock())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Transfer(ctx, b)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("Transfer never returned after context cancellation")
	}

	assert.Equal(t, ErrBusy, a.TryLock())
	assert.Nil(t, a.Unlock())
	assert.Nil(t, b.Unlock())
}
