package pointsrc

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/adrianmo/go-nmea"
	"github.com/danmuck/demprobe/internal/protocol"
	"github.com/rs/zerolog/log"
)

// ReadNMEA collects fixes from NMEA 0183 sentences until r is exhausted.
// Valid RMC fixes and GGA fixes with a non-zero quality become points; every other
// sentence, and any line that fails to parse, is skipped.
func ReadNMEA(r io.Reader) ([]protocol.Point, error) {
	var points []protocol.Point
	err := ScanNMEA(r, func(p protocol.Point) bool {
		points = append(points, p)
		return true
	})
	return points, err
}

// ScanNMEA is the streaming form of ReadNMEA. It stops early when fn returns false.
func ScanNMEA(r io.Reader, fn func(protocol.Point) bool) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			log.Debug().Int("line", lineNo).Err(err).Msg("skip nmea sentence")
			continue
		}
		p, ok := fixPoint(sentence)
		if !ok {
			continue
		}
		if err := p.Validate(); err != nil {
			log.Debug().Int("line", lineNo).Err(err).Msg("skip nmea fix")
			continue
		}
		if !fn(p) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("pointsrc: read nmea: %w", err)
	}
	return nil
}

func fixPoint(sentence nmea.Sentence) (protocol.Point, bool) {
	switch sentence.DataType() {
	case nmea.TypeRMC:
		m := sentence.(nmea.RMC)
		if m.Validity != nmea.ValidRMC {
			return protocol.Point{}, false
		}
		return protocol.Point{Latitude: m.Latitude, Longitude: m.Longitude}, true
	case nmea.TypeGGA:
		m := sentence.(nmea.GGA)
		if m.FixQuality == nmea.Invalid {
			return protocol.Point{}, false
		}
		return protocol.Point{Latitude: m.Latitude, Longitude: m.Longitude}, true
	default:
		return protocol.Point{}, false
	}
}
