package time

import (
	"context"
	"time"
	_ "time/tzdata"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
)

// RealTimeProvider implements the TimeProvider interface with the wall clock.
// Now is reported in the business location so day and month buckets follow it.
type RealTimeProvider struct {
	loc *time.Location
}

// NewRealTimeProvider creates a time provider for the named location, e.g. "Asia/Jakarta"
func NewRealTimeProvider(location string) (*RealTimeProvider, error) {
	loc := time.Local
	if location != "" {
		var err error
		loc, err = time.LoadLocation(location)
		if err != nil {
			return nil, err
		}
	}
	return &RealTimeProvider{loc: loc}, nil
}

// Location returns the business location
func (p *RealTimeProvider) Location() *time.Location {
	return p.loc
}

// Now returns the current time
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().In(p.loc)
}

// Since returns the time elapsed since t
func (p *RealTimeProvider) Since(t time.Time) core.Duration {
	return core.Duration(time.Since(t))
}

// Until returns the duration until t
func (p *RealTimeProvider) Until(t time.Time) core.Duration {
	return core.Duration(time.Until(t))
}

// WithTimeout returns a context that will be canceled after the specified timeout
func (p *RealTimeProvider) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}

// NewTicker starts a wall clock ticker
func (p *RealTimeProvider) NewTicker(d core.Duration) core.Ticker {
	return &realTicker{t: time.NewTicker(d.Std())}
}

type realTicker struct{ t *time.Ticker }

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }
