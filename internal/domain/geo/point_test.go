package geo

import (
	"math"
	"testing"
)

func TestNewPoint(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr error
	}{
		{"valid", 51.1694, 71.4491, nil},
		{"lat upper bound", 90, 0, nil},
		{"lat too high", 90.0001, 0, ErrLatitudeOutOfRange},
		{"lat too low", -91, 0, ErrLatitudeOutOfRange},
		{"lng lower bound", 0, -180, nil},
		{"lng too high", 0, 180.5, ErrLongitudeOutOfRange},
		{"lng too low", 0, -200, ErrLongitudeOutOfRange},
		{"nan lat", math.NaN(), 0, ErrLatitudeOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPoint(tt.lat, tt.lng)
			if err != tt.wantErr {
				t.Fatalf("NewPoint(%v, %v) error = %v, want %v", tt.lat, tt.lng, err, tt.wantErr)
			}
		})
	}
}

func TestHaversineKM(t *testing.T) {
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 0, Lng: 1}

	// one degree of longitude at the equator is ~111.19 km
	d := HaversineKM(a, b)
	if d < 111.0 || d > 111.4 {
		t.Fatalf("HaversineKM(equator degree) = %v, want ~111.19", d)
	}

	// symmetric
	if got := HaversineKM(b, a); math.Abs(got-d) > 1e-9 {
		t.Fatalf("HaversineKM not symmetric: %v vs %v", got, d)
	}

	// zero for coincident points
	if got := HaversineKM(a, a); got != 0 {
		t.Fatalf("HaversineKM(a, a) = %v, want 0", got)
	}

	// never negative
	if d < 0 {
		t.Fatalf("HaversineKM returned negative distance %v", d)
	}
}
