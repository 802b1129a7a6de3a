package random

import (
	"math/rand/v2"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
)

// Source draws from the auto-seeded global generator, which is safe for
// concurrent use. Unique numbers are not secrets.
type Source struct{}

// NewSource returns the process-wide random source
func NewSource() core.RandomSource {
	return Source{}
}

// Int63n returns a value in [0, n)
func (Source) Int63n(n int64) int64 {
	return rand.Int64N(n)
}
