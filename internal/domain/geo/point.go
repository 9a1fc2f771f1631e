package geo

import (
	"errors"
	"math"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}

var (
	ErrLatitudeOutOfRange  = errors.New("latitude must be between -90 and 90")
	ErrLongitudeOutOfRange = errors.New("longitude must be between -180 and 180")
)

// NewPoint validates the coordinate ranges and returns a Point.
func NewPoint(lat, lng float64) (Point, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Point{}, ErrLatitudeOutOfRange
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return Point{}, ErrLongitudeOutOfRange
	}
	return Point{Lat: lat, Lng: lng}, nil
}

// HaversineKM returns the great-circle distance between a and b in kilometers.
func HaversineKM(a, b Point) float64 {
	const R = 6371.0 // Earth radius in km
	la1 := a.Lat * math.Pi / 180
	la2 := b.Lat * math.Pi / 180
	dla := (b.Lat - a.Lat) * math.Pi / 180
	dln := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dla/2)*math.Sin(dla/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dln/2)*math.Sin(dln/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return R * c
}
