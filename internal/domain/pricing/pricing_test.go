package pricing

import "testing"

func TestPriceDefaults(t *testing.T) {
	calc := NewCalculator(DefaultOptions())

	tests := []struct {
		name          string
		distanceKm    float64
		detourPercent float64
		want          float64
	}{
		// base=100, discounted=85.00
		{"zero distance zero detour", 0, 0, 85.00},
		// base=220, penalty=22, discounted=205.70
		{"ten km twenty percent detour", 10, 20, 205.70},
		// base=160, no penalty, 160*0.85=136
		{"five km no detour", 5, 0, 136.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Price(tt.distanceKm, tt.detourPercent)
			if got != tt.want {
				t.Fatalf("Price(%v, %v) = %v, want %v", tt.distanceKm, tt.detourPercent, got, tt.want)
			}
		})
	}
}

func TestPriceOverrides(t *testing.T) {
	// each option overrides independently; the rest keep their defaults
	calc := NewCalculator(Options{BaseFare: 50, SurgeMultiplier: 2})

	// base=50, discounted=42.5, surged=85
	if got := calc.Price(0, 0); got != 85.00 {
		t.Fatalf("Price with overrides = %v, want 85.00", got)
	}
}

func TestRoundingHalfUp(t *testing.T) {
	// 0.125 is exactly representable; half-up gives 0.13 where
	// round-half-to-even would give 0.12
	if got := round2(0.125); got != 0.13 {
		t.Fatalf("round2(0.125) = %v, want 0.13", got)
	}
	if got := round2(0.124); got != 0.12 {
		t.Fatalf("round2(0.124) = %v, want 0.12", got)
	}
}
