package render

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/danmuck/demprobe/internal/protocol"
)

// Sink receives decoded lookup results.
type Sink interface {
	Emit(ctx context.Context, records []protocol.CombinedRecord) error
}

// Text writes "lat,lng,quality" lines with 6, 6 and 1 decimal places.
type Text struct {
	W io.Writer
}

func (s Text) Emit(_ context.Context, records []protocol.CombinedRecord) error {
	for _, r := range records {
		if _, err := fmt.Fprintf(s.W, "%.6f,%.6f,%.1f\n", r.Latitude, r.Longitude, r.Quality); err != nil {
			return fmt.Errorf("render: write text: %w", err)
		}
	}
	return nil
}

// WriteQuality writes one quality value per line with 6 decimal places.
func WriteQuality(w io.Writer, values []float64) error {
	for _, v := range values {
		if _, err := fmt.Fprintf(w, "%.6f\n", v); err != nil {
			return fmt.Errorf("render: write quality: %w", err)
		}
	}
	return nil
}

// Record is the JSON form of one result.
type Record struct {
	Index     int     `json:"index"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Quality   float64 `json:"quality"`
}

func toRecords(records []protocol.CombinedRecord) []Record {
	out := make([]Record, 0, len(records))
	for i, r := range records {
		out = append(out, Record{Index: i, Latitude: r.Latitude, Longitude: r.Longitude, Quality: r.Quality})
	}
	return out
}

// JSONLines writes one JSON object per record.
type JSONLines struct {
	W io.Writer
}

func (s JSONLines) Emit(_ context.Context, records []protocol.CombinedRecord) error {
	enc := json.NewEncoder(s.W)
	for _, r := range toRecords(records) {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("render: write json: %w", err)
		}
	}
	return nil
}

// Multi fans a batch out to every sink in order and stops at the first error.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, records []protocol.CombinedRecord) error {
	for _, s := range m {
		if err := s.Emit(ctx, records); err != nil {
			return err
		}
	}
	return nil
}
