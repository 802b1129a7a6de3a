package entity

import (
	"context"
	"time"

	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
)

var wib = time.FixedZone("WIB", 7*60*60)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time                      { return c.now }
func (c fixedClock) Since(t time.Time) coreport.Duration { return coreport.Duration(c.now.Sub(t)) }
func (c fixedClock) Until(t time.Time) coreport.Duration { return coreport.Duration(t.Sub(c.now)) }
func (c fixedClock) NewTicker(coreport.Duration) coreport.Ticker {
	panic("not used")
}

func (c fixedClock) WithTimeout(ctx context.Context, d coreport.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.Std())
}
