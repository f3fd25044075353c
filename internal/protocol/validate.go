package protocol

import "math"

const (
	MaxLatitude  = 90.0
	MaxLongitude = 180.0
)

// Validate checks that p is a finite coordinate within the usual degree ranges.
func (p Point) Validate() error {
	return validatePoint(-1, p)
}

// ValidatePoints runs Validate over points; the error names the first offending index.
func ValidatePoints(points []Point) error {
	for i, p := range points {
		if err := validatePoint(i, p); err != nil {
			return err
		}
	}
	return nil
}

func validatePoint(index int, p Point) error {
	if !inRange(p.Latitude, MaxLatitude) {
		return &CoordinateError{Index: index, Field: "latitude", Value: p.Latitude}
	}
	if !inRange(p.Longitude, MaxLongitude) {
		return &CoordinateError{Index: index, Field: "longitude", Value: p.Longitude}
	}
	return nil
}

func inRange(v, limit float64) bool {
	if math.IsNaN(v) {
		return false
	}
	return v >= -limit && v <= limit
}
