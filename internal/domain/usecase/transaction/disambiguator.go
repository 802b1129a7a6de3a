package transaction

import (
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
)

// Allocation defaults
const (
	DefaultUniqueMin   = 1
	DefaultUniqueMax   = 499
	DefaultMaxAttempts = 50
)

// DisambiguatorConfig bounds the unique number draw
type DisambiguatorConfig struct {
	UniqueMin   int64
	UniqueMax   int64
	MaxAttempts int
}

// AmountDisambiguator picks the final amount of a new transaction so that no
// other pending transaction of the merchant has the same one. Uniqueness is
// best effort: each fee level has only UniqueMax-UniqueMin+1 slots.
type AmountDisambiguator struct {
	random      coreport.RandomSource
	uniqueMin   int64
	uniqueMax   int64
	maxAttempts int
}

// NewAmountDisambiguator creates a disambiguator, filling zero config values with defaults
func NewAmountDisambiguator(random coreport.RandomSource, cfg DisambiguatorConfig) *AmountDisambiguator {
	if random == nil {
		panic("random source cannot be nil")
	}
	if cfg.UniqueMin <= 0 {
		cfg.UniqueMin = DefaultUniqueMin
	}
	if cfg.UniqueMax < cfg.UniqueMin {
		cfg.UniqueMax = DefaultUniqueMax
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &AmountDisambiguator{
		random:      random,
		uniqueMin:   cfg.UniqueMin,
		uniqueMax:   cfg.UniqueMax,
		maxAttempts: cfg.MaxAttempts,
	}
}

// MaxAttempts returns the draw limit per allocation
func (d *AmountDisambiguator) MaxAttempts() int {
	return d.maxAttempts
}

// Quote computes the fee and draws a unique number whose total is not in taken
func (d *AmountDisambiguator) Quote(
	merchantID uint64,
	method *entity.PaymentMethod,
	base int64,
	taken map[int64]struct{},
) (entity.AmountQuote, error) {
	quote := entity.AmountQuote{Base: base, Fee: method.FeeFor(base)}
	span := d.uniqueMax - d.uniqueMin + 1

	for attempt := 0; attempt < d.maxAttempts; attempt++ {
		quote.Unique = d.uniqueMin + d.random.Int63n(span)
		if _, exists := taken[quote.Total()]; !exists {
			return quote, nil
		}
	}

	return entity.AmountQuote{}, errs.NewAllocationError(merchantID, base, quote.Fee, d.maxAttempts)
}

func amountSet(amounts []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(amounts))
	for _, a := range amounts {
		set[a] = struct{}{}
	}
	return set
}
