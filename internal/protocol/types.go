package protocol

// Scale is the real-valued size of one fixed-point unit.
type Scale float64

const (
	// ScaleCoordinate is 1e-7 degrees, about 1.1 cm at the equator.
	ScaleCoordinate Scale = 1e-7
	// ScaleQuality is 1e-3 of the measured quantity (millimetres for elevation).
	ScaleQuality Scale = 1e-3
)

// Record strides in bytes.
const (
	PointStride    = 8
	QualityStride  = 4
	CombinedStride = 12
)

// Point is a coordinate pair in decimal degrees.
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// PointRecord is the wire form of a Point.
type PointRecord struct {
	Latitude  int32
	Longitude int32
}

// QualityRecord is the wire form of a scalar measurement.
type QualityRecord struct {
	Value int32
}

// CombinedRecord is one decoded response record.
type CombinedRecord struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Quality   float64 `json:"quality"`
}

// Point returns the coordinate part of r.
func (r CombinedRecord) Point() Point {
	return Point{Latitude: r.Latitude, Longitude: r.Longitude}
}
