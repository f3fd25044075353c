package csvtext

import (
	"math"

	"github.com/danmuck/demprobe/internal/protocol"
)

const earthRadiusMetres = 6371008.8

// Haversine returns the great-circle distance between a and b in metres.
func Haversine(a, b protocol.Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMetres * math.Asin(math.Min(1, math.Sqrt(h)))
}
