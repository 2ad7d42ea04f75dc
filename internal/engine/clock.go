package engine

import "time"

// Clock abstracts wall-clock access so period-boundary logic is testable
// without real sleeps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }
