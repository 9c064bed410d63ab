package skinnymutex

import (
	"errors"
)

var (
	// ErrBusy is returned by TryLock when the mutex is already held, and
	// by Destroy when the mutex is still locked.
	ErrBusy = errors.New("skinnymutex: busy")

	// ErrNotOwner is returned by Unlock, Wait and WaitDeadline when the
	// mutex was not held. Ownership is not tracked (no goroutine id is
	// stored anywhere in this package); this is a best-effort check based
	// only on observable state.
	ErrNotOwner = errors.New("skinnymutex: not owner")

	// ErrAgain is returned by Transfer when a concurrent VetoTransfer
	// aborted the hand-off; the source mutex is left held by the caller.
	ErrAgain = errors.New("skinnymutex: transfer vetoed")

	// ErrClosed is returned by ExternalCond implementations once they
	// have been closed.
	ErrClosed = errors.New("skinnymutex: cond closed")
)

// composeErrors implements the double-fault policy: if both errors are
// non-nil, the situation is unrecoverable (an error occurred while already
// unwinding another error) and the process is aborted after logging;
// otherwise whichever error is non-nil (if any) is returned.
func composeErrors(primary, secondary error) error {
	if secondary == nil {
		return primary
	}
	if primary == nil {
		return secondary
	}
	logger().Crit().
		Err(primary).
		Field("secondary", secondary).
		Log("skinnymutex: error while recovering from another error, aborting")
	fatalExit()
	return secondary // unreachable in practice; fatalExit does not return
}
