package protocol

import (
	"encoding/binary"
	"iter"

	"github.com/danmuck/demprobe/internal/protocol/frame"
)

// DecodePoints is the strict inverse of EncodePoints.
func DecodePoints(buf []byte) ([]Point, error) {
	if err := frame.Check(len(buf), PointStride); err != nil {
		return nil, err
	}
	n, _ := frame.Split(len(buf), PointStride)
	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, readPointRecord(buf[i*PointStride:]).Point())
	}
	return points, nil
}

// DecodeCombinedRecords reads every complete 12-byte record in buf.
// A trailing partial record is ignored.
func DecodeCombinedRecords(buf []byte) []CombinedRecord {
	n, _ := frame.Split(len(buf), CombinedStride)
	records := make([]CombinedRecord, 0, n)
	for _, rec := range CombinedRecords(buf) {
		records = append(records, rec)
	}
	return records
}

// DecodeCombinedRecordsStrict is DecodeCombinedRecords but rejects a trailing
// partial record with *MalformedBufferError.
func DecodeCombinedRecordsStrict(buf []byte) ([]CombinedRecord, error) {
	if err := frame.Check(len(buf), CombinedStride); err != nil {
		return nil, err
	}
	return DecodeCombinedRecords(buf), nil
}

// CombinedRecords yields the complete records in buf lazily, with their index.
func CombinedRecords(buf []byte) iter.Seq2[int, CombinedRecord] {
	return func(yield func(int, CombinedRecord) bool) {
		n, _ := frame.Split(len(buf), CombinedStride)
		for i := 0; i < n; i++ {
			if !yield(i, readCombinedRecord(buf[i*CombinedStride:])) {
				return
			}
		}
	}
}

// DecodeQualityRecords reads every complete 4-byte quality record in buf.
func DecodeQualityRecords(buf []byte) []float64 {
	n, _ := frame.Split(len(buf), QualityStride)
	values := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		rec := QualityRecord{Value: readInt32(buf[i*QualityStride:])}
		values = append(values, rec.Float())
	}
	return values
}

// DecodeQualityRecordsStrict is DecodeQualityRecords but rejects a trailing partial
// record with *MalformedBufferError.
func DecodeQualityRecordsStrict(buf []byte) ([]float64, error) {
	if err := frame.Check(len(buf), QualityStride); err != nil {
		return nil, err
	}
	return DecodeQualityRecords(buf), nil
}

func readPointRecord(b []byte) PointRecord {
	return PointRecord{
		Latitude:  readInt32(b[0:4]),
		Longitude: readInt32(b[4:8]),
	}
}

func readCombinedRecord(b []byte) CombinedRecord {
	point := readPointRecord(b[0:8]).Point()
	return CombinedRecord{
		Latitude:  point.Latitude,
		Longitude: point.Longitude,
		Quality:   DecodeFixedPoint(readInt32(b[8:12]), ScaleQuality),
	}
}

func readInt32(b []byte) int32 {
	return int32(binary.BigEndian.Uint32(b[0:4]))
}
