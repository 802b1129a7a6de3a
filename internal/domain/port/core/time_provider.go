package core

import (
	"context"
	"time"
)

// Duration is a domain-specific wrapper around time.Duration
type Duration time.Duration

// Common duration constants
const (
	Millisecond Duration = Duration(time.Millisecond)
	Second               = Duration(time.Second)
	Minute               = Duration(time.Minute)
	Hour                 = Duration(time.Hour)
)

// Std converts domain Duration to time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Ticker delivers ticks for periodic jobs
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TimeProvider abstracts time operations for the domain
type TimeProvider interface {
	// Now returns the current time in the business time zone
	Now() time.Time
	Since(t time.Time) Duration
	Until(t time.Time) Duration
	WithTimeout(ctx context.Context, timeout Duration) (context.Context, context.CancelFunc)
	NewTicker(d Duration) Ticker
}
