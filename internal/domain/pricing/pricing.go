package pricing

import "math"

// Options are the recognized pricing knobs. Each is independently
// overridable from configuration; zero values fall back to the defaults.
type Options struct {
	BaseFare            float64
	RatePerKm           float64
	PoolDiscount        float64
	DetourPenaltyWeight float64
	SurgeMultiplier     float64
}

// DefaultOptions returns the standard tariff.
func DefaultOptions() Options {
	return Options{
		BaseFare:            100,
		RatePerKm:           12,
		PoolDiscount:        0.15,
		DetourPenaltyWeight: 0.5,
		SurgeMultiplier:     1.0,
	}
}

// Calculator converts distance and detour into a monetary amount.
// It is pure: no I/O, no failure modes for valid numeric inputs.
type Calculator struct {
	opts Options
}

// NewCalculator builds a calculator, filling unset options from the defaults.
func NewCalculator(opts Options) *Calculator {
	def := DefaultOptions()
	if opts.BaseFare == 0 {
		opts.BaseFare = def.BaseFare
	}
	if opts.RatePerKm == 0 {
		opts.RatePerKm = def.RatePerKm
	}
	if opts.PoolDiscount == 0 {
		opts.PoolDiscount = def.PoolDiscount
	}
	if opts.DetourPenaltyWeight == 0 {
		opts.DetourPenaltyWeight = def.DetourPenaltyWeight
	}
	if opts.SurgeMultiplier == 0 {
		opts.SurgeMultiplier = def.SurgeMultiplier
	}
	return &Calculator{opts: opts}
}

// Price computes the fare for a ride of the given direct distance that
// incurs the given detour, rounded to 2 decimal places (half-up):
//
//	base       = baseFare + distanceKm*ratePerKm
//	penalty    = base * (detourPercent/100) * detourPenaltyWeight
//	discounted = (base+penalty) * (1-poolDiscount)
//	final      = discounted * surgeMultiplier
func (c *Calculator) Price(distanceKm, detourPercent float64) float64 {
	base := c.opts.BaseFare + distanceKm*c.opts.RatePerKm
	penalty := base * (detourPercent / 100) * c.opts.DetourPenaltyWeight
	discounted := (base + penalty) * (1 - c.opts.PoolDiscount)
	final := discounted * c.opts.SurgeMultiplier
	return round2(final)
}

// round2 rounds to 2 decimals, halves up.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
