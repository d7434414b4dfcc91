package activity

import (
	"errors"
	"sync/atomic"
)

// ErrNoSample is returned by a ForegroundApp that cannot name the foreground
// process for this tick.
var ErrNoSample = errors.New("foreground process unavailable")

// Hook reports whether keyboard or mouse input happened since the last poll
// and clears the indication.
type Hook interface {
	PollAndReset() bool
}

// ForegroundApp names the process owning the foreground window. Errors are
// expected (the process may already have exited) and mean "no sample".
type ForegroundApp interface {
	Current() (string, error)
}

// Flag is a Hook fed by asynchronous input producers. Producers call Mark; the
// aggregator only ever reads and clears it.
type Flag struct {
	seen atomic.Bool
}

// Mark records that input was observed.
func (f *Flag) Mark() {
	f.seen.Store(true)
}

// PollAndReset returns whether input was observed and clears the flag.
func (f *Flag) PollAndReset() bool {
	return f.seen.Swap(false)
}

// ForegroundFunc adapts a function to ForegroundApp.
type ForegroundFunc func() (string, error)

// Current calls f.
func (f ForegroundFunc) Current() (string, error) {
	return f()
}

// NoForeground is used where no foreground detection is available; every tick
// yields no sample.
type NoForeground struct{}

// Current always returns ErrNoSample.
func (NoForeground) Current() (string, error) {
	return "", ErrNoSample
}

// Static reports the same process name on every tick.
type Static string

// Current returns the fixed name.
func (s Static) Current() (string, error) {
	return string(s), nil
}
