// Package clock provides an injectable time source so deferred work can be
// driven deterministically in tests. Production code uses Real(); tests use
// Fake() and call Advance.
package clock

import "time"

// Clock is the subset of the time package the panel depends on.
type Clock interface {
	Now() time.Time

	// AfterFunc calls f once d has elapsed. The returned Timer cancels the
	// pending call.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a scheduled one-shot call.
type Timer struct {
	stop func() bool
}

// Stop prevents the call from running. It reports false when the call has
// already run or was already stopped.
func (t *Timer) Stop() bool {
	if t == nil || t.stop == nil {
		return false
	}
	return t.stop()
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	t := time.AfterFunc(d, f)
	return &Timer{stop: t.Stop}
}
