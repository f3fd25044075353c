package protocol

import "encoding/binary"

// EncodePoints writes points as consecutive big-endian int32 lat/lng pairs.
// The result is 8*len(points) bytes with no header or length prefix.
func EncodePoints(points []Point) ([]byte, error) {
	buf := make([]byte, PointStride*len(points))
	for i, p := range points {
		rec, err := NewPointRecord(p)
		if err != nil {
			return nil, err
		}
		putPointRecord(buf[i*PointStride:], rec)
	}
	return buf, nil
}

// EncodeCombinedRecords writes 12-byte lat/lng/quality records.
func EncodeCombinedRecords(records []CombinedRecord) ([]byte, error) {
	buf := make([]byte, CombinedStride*len(records))
	for i, r := range records {
		point, err := NewPointRecord(r.Point())
		if err != nil {
			return nil, err
		}
		quality, err := NewQualityRecord(r.Quality)
		if err != nil {
			return nil, err
		}
		off := i * CombinedStride
		putPointRecord(buf[off:], point)
		binary.BigEndian.PutUint32(buf[off+8:off+12], uint32(quality.Value))
	}
	return buf, nil
}

// EncodeQuality writes values as consecutive 4-byte quality records.
func EncodeQuality(values []float64) ([]byte, error) {
	buf := make([]byte, QualityStride*len(values))
	for i, v := range values {
		rec, err := NewQualityRecord(v)
		if err != nil {
			return nil, err
		}
		binary.BigEndian.PutUint32(buf[i*QualityStride:], uint32(rec.Value))
	}
	return buf, nil
}

func putPointRecord(b []byte, rec PointRecord) {
	binary.BigEndian.PutUint32(b[0:4], uint32(rec.Latitude))
	binary.BigEndian.PutUint32(b[4:8], uint32(rec.Longitude))
}
