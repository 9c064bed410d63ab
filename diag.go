package skinnymutex

import (
	"os"
	"time"

	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// defaultLogger is the package-wide fallback structured logger, used by any
// Mutex that has not been given one of its own via WithLogger. It writes
// newline-delimited JSON to stderr, following the same construction idiom
// (LoggerFactory.New + With* options) used throughout the logiface-*
// packages this module was adapted from.
var defaultLogger = stumpy.L.New(stumpy.L.WithStumpy(
	stumpy.WithWriter(os.Stderr),
	stumpy.WithTimeField("ts"),
	stumpy.WithLevelField("level"),
	stumpy.WithMessageField("msg"),
	stumpy.WithErrorField("error"),
))

// traceLimiter caps how often contention diagnostics (promotion, demotion,
// veto) are logged per *Mutex, so a mutex thrashing under heavy contention
// cannot flood the log. One event per handle per 50ms is plenty for a human
// or a log-aggregation pipeline to see the shape of the contention without
// drowning in it.
var traceLimiter = catrate.NewLimiter(map[time.Duration]int{
	50 * time.Millisecond: 1,
})

// logger returns the effective logger for x (its own, if set, else the
// package default).
func (x *Mutex) logger() *logiface.Logger[*stumpy.Event] {
	if x != nil && x.log != nil {
		return x.log
	}
	return defaultLogger
}

// logger is the package-level accessor used from contexts (composeErrors)
// that are not scoped to a particular Mutex.
func logger() *logiface.Logger[*stumpy.Event] { return defaultLogger }

// fatalExit terminates the process after an unrecoverable double fault.
// logiface's own fatal-level handling (LevelAlert/LevelEmergency) already
// calls logiface.OsExit; this is a direct, explicit call so the behavior
// does not depend on the configured logger's level threshold.
func fatalExit() { logiface.OsExit(1) }

// trace emits a rate-limited Debug-level diagnostic for a contention event
// (promotion, demotion, veto, ...). The rate budget is per Mutex instance:
// x is the limiter category, so all event kinds of one Mutex share it.
func (x *Mutex) trace(event string, fields func(b *logiface.Builder[*stumpy.Event])) {
	l := x.logger()
	if !l.Debug().Enabled() {
		return
	}
	if _, ok := traceLimiter.Allow(x); !ok {
		return
	}
	if x != nil && x.history != nil {
		x.history.push(time.Now().UnixNano())
	}

	b := l.Debug().Str("event", event)
	if fields != nil {
		fields(b)
	}
	b.Log("skinnymutex: contention trace")
}

// ContentionHistory returns, oldest first, the Unix-nanosecond timestamps
// of the last few contention events (promotion, demotion, veto) traced for
// x. It is a diagnostic aid only: the window size is small and unconfigurable,
// and entries are only recorded when Debug-level tracing is enabled and not
// currently rate-limited.
func (x *Mutex) ContentionHistory() []int64 {
	if x.history == nil {
		return nil
	}
	return x.history.slice()
}

// Option configures a Mutex at Init time.
type Option func(*Mutex)

// WithLogger overrides the structured logger used for this Mutex's
// contention diagnostics. Double-fault reports (composeErrors) always go to
// the package default logger.
func WithLogger(l *logiface.Logger[*stumpy.Event]) Option {
	return func(x *Mutex) { x.log = l }
}
