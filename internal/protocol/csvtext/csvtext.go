// Package csvtext builds the text-mode request body for the process_csv endpoint.
package csvtext

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/demprobe/internal/protocol"
)

// Header is the first line of every text-mode request.
const Header = "#,latitude,longitude,type,dist"

// Row types used by the lookup page.
const (
	TypeHome   = "HOME"
	TypeManual = "MANUAL"
)

// Row is one waypoint in a text-mode request.
type Row struct {
	Index    int
	Point    protocol.Point
	Type     string
	Distance float64
}

// Encode renders rows under Header, one comma-separated line per row.
func Encode(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(strings.Split(Header, ",")); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := validateRow(i, row); err != nil {
			return nil, err
		}
		record := []string{
			strconv.Itoa(row.Index),
			strconv.FormatFloat(row.Point.Latitude, 'f', 6, 64),
			strconv.FormatFloat(row.Point.Longitude, 'f', 6, 64),
			row.Type,
			strconv.FormatFloat(row.Distance, 'f', 1, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromPoints numbers points in order. The first is HOME and the rest MANUAL,
// each carrying its great-circle distance in metres from the previous point.
func FromPoints(points []protocol.Point) []Row {
	rows := make([]Row, 0, len(points))
	for i, p := range points {
		row := Row{Index: i, Point: p, Type: TypeManual}
		if i == 0 {
			row.Type = TypeHome
		} else {
			row.Distance = Haversine(points[i-1], p)
		}
		rows = append(rows, row)
	}
	return rows
}

func validateRow(i int, row Row) error {
	if err := row.Point.Validate(); err != nil {
		return fmt.Errorf("csvtext: row %d: %w", i, err)
	}
	return nil
}
