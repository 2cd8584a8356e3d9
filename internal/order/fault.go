package order

import "math/rand"

// Injector decides whether a status update should fail artificially.
// It exists for chaos testing; production runs use a zero rate.
type Injector interface {
	ShouldFail() bool
}

type rateInjector struct {
	rate float64
}

// NewRateInjector fails a fraction of calls given by rate in [0,1].
func NewRateInjector(rate float64) Injector {
	return rateInjector{rate: rate}
}

func (r rateInjector) ShouldFail() bool {
	return r.rate > 0 && rand.Float64() < r.rate
}

type nopInjector struct{}

// NopInjector never fails.
func NopInjector() Injector { return nopInjector{} }

func (nopInjector) ShouldFail() bool { return false }
