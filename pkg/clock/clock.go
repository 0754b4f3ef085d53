package clock

import "time"

// Clock supplies the trusted current time for maturity and grace checks.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// New returns the wall clock in UTC.
func New() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now().UTC() }

// Fixed is a settable clock for tests and replays.
type Fixed struct{ T time.Time }

func (f *Fixed) Now() time.Time { return f.T }

// Set moves the clock to the given Unix second.
func (f *Fixed) Set(unix int64) { f.T = time.Unix(unix, 0).UTC() }
