package protocol

import "math"

// EncodeFixedPoint returns round(value * (1/scale)), rounding half away from zero.
func EncodeFixedPoint(value float64, scale Scale) (int32, error) {
	scaled := math.Round(value * (1 / float64(scale)))
	if math.IsNaN(scaled) || scaled < math.MinInt32 || scaled > math.MaxInt32 {
		return 0, &RangeError{Value: value, Scale: scale}
	}
	return int32(scaled), nil
}

// DecodeFixedPoint returns raw * scale.
func DecodeFixedPoint(raw int32, scale Scale) float64 {
	return float64(raw) * float64(scale)
}

// NewPointRecord converts p to its wire form. It fails only when a coordinate does not
// fit in int32 at ScaleCoordinate; geographic ranges are checked by Point.Validate.
func NewPointRecord(p Point) (PointRecord, error) {
	lat, err := EncodeFixedPoint(p.Latitude, ScaleCoordinate)
	if err != nil {
		return PointRecord{}, err
	}
	lng, err := EncodeFixedPoint(p.Longitude, ScaleCoordinate)
	if err != nil {
		return PointRecord{}, err
	}
	return PointRecord{Latitude: lat, Longitude: lng}, nil
}

// Point converts r back to decimal degrees.
func (r PointRecord) Point() Point {
	return Point{
		Latitude:  DecodeFixedPoint(r.Latitude, ScaleCoordinate),
		Longitude: DecodeFixedPoint(r.Longitude, ScaleCoordinate),
	}
}

// NewQualityRecord converts a measurement to its wire form.
func NewQualityRecord(value float64) (QualityRecord, error) {
	raw, err := EncodeFixedPoint(value, ScaleQuality)
	if err != nil {
		return QualityRecord{}, err
	}
	return QualityRecord{Value: raw}, nil
}

// Float returns the measurement held by r.
func (r QualityRecord) Float() float64 {
	return DecodeFixedPoint(r.Value, ScaleQuality)
}
