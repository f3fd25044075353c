package pointsrc

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/danmuck/demprobe/internal/protocol"
)

var (
	ErrNoCoordinateColumns = errors.New("pointsrc: no lat/latitude or lng/longitude heading")
	ErrShortRow            = errors.New("pointsrc: row has fewer than 2 columns")
)

// plainPair matches a first line that starts with two numbers, i.e. a file with no headings.
var plainPair = regexp.MustCompile(`^\s*[\-+0-9.]+,\s*[\-+0-9.]+(?:[,\r\n]|$)`)

// ReadCSV reads points from CSV text. A file whose first line is a numeric pair is read as plain
// lat,lng rows. Otherwise the first line names the columns and the first of latitude|lat and
// longitude|lng is used.
func ReadCSV(r io.Reader) ([]protocol.Point, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pointsrc: read csv: %w", err)
	}
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if plainPair.Match(data) {
		return readPlain(reader)
	}
	return readHeadered(reader)
}

func readPlain(reader *csv.Reader) ([]protocol.Point, error) {
	var points []protocol.Point
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return points, nil
		}
		if err != nil {
			return nil, fmt.Errorf("pointsrc: parse csv: %w", err)
		}
		if blank(row) {
			continue
		}
		line, _ := reader.FieldPos(0)
		if len(row) < 2 {
			return nil, fmt.Errorf("pointsrc: line %d: %w", line, ErrShortRow)
		}
		p, err := parsePoint(row[0], row[1])
		if err != nil {
			return nil, fmt.Errorf("pointsrc: line %d: %w", line, err)
		}
		points = append(points, p)
	}
}

func readHeadered(reader *csv.Reader) ([]protocol.Point, error) {
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoCoordinateColumns
	}
	if err != nil {
		return nil, fmt.Errorf("pointsrc: parse csv header: %w", err)
	}
	latCol, lngCol := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(name)
		if latCol < 0 && (name == "latitude" || name == "lat") {
			latCol = i
		}
		if lngCol < 0 && (name == "longitude" || name == "lng") {
			lngCol = i
		}
	}
	if latCol < 0 || lngCol < 0 {
		return nil, ErrNoCoordinateColumns
	}

	var points []protocol.Point
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return points, nil
		}
		if err != nil {
			return nil, fmt.Errorf("pointsrc: parse csv: %w", err)
		}
		if blank(row) {
			continue
		}
		line, _ := reader.FieldPos(0)
		if latCol >= len(row) || lngCol >= len(row) {
			return nil, fmt.Errorf("pointsrc: line %d: %w", line, ErrShortRow)
		}
		p, err := parsePoint(row[latCol], row[lngCol])
		if err != nil {
			return nil, fmt.Errorf("pointsrc: line %d: %w", line, err)
		}
		points = append(points, p)
	}
}

func parsePoint(latText, lngText string) (protocol.Point, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return protocol.Point{}, fmt.Errorf("latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngText), 64)
	if err != nil {
		return protocol.Point{}, fmt.Errorf("longitude: %w", err)
	}
	p := protocol.Point{Latitude: lat, Longitude: lng}
	if err := p.Validate(); err != nil {
		return protocol.Point{}, err
	}
	return p, nil
}

func blank(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
