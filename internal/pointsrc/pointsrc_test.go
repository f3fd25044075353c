package pointsrc

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/danmuck/demprobe/internal/protocol"
	"github.com/danmuck/demprobe/internal/testutil/testlog"
	"github.com/jacobsa/go-serial/serial"
)

func TestReadCSVPlainPairs(t *testing.T) {
	testlog.Start(t)

	in := "-36.885150,174.748030\n\n-36.886430, 174.753750,extra\r\n-36.885345,174.755895"
	points, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []protocol.Point{
		{Latitude: -36.885150, Longitude: 174.748030},
		{Latitude: -36.886430, Longitude: 174.753750},
		{Latitude: -36.885345, Longitude: 174.755895},
	}
	assertPoints(t, points, want, 1e-9)
}

func TestReadCSVHeadered(t *testing.T) {
	testlog.Start(t)

	in := "#,lat,latitude,lng,type\n0,-36.885150,99,174.748030,HOME\n1,-36.886430,99,174.753750,MANUAL\n"
	points, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []protocol.Point{
		{Latitude: -36.885150, Longitude: 174.748030},
		{Latitude: -36.886430, Longitude: 174.753750},
	}
	assertPoints(t, points, want, 1e-9)
}

func TestReadCSVErrors(t *testing.T) {
	testlog.Start(t)

	if _, err := ReadCSV(strings.NewReader("name,height\nx,1\n")); !errors.Is(err, ErrNoCoordinateColumns) {
		t.Fatalf("expected ErrNoCoordinateColumns, got %v", err)
	}
	if _, err := ReadCSV(strings.NewReader("")); !errors.Is(err, ErrNoCoordinateColumns) {
		t.Fatalf("expected ErrNoCoordinateColumns for empty input, got %v", err)
	}
	if _, err := ReadCSV(strings.NewReader("1,2\n3\n")); !errors.Is(err, ErrShortRow) {
		t.Fatalf("expected ErrShortRow, got %v", err)
	}
	_, err := ReadCSV(strings.NewReader("latitude,longitude\n95,174\n"))
	if !errors.Is(err, protocol.ErrCoordinateRange) {
		t.Fatalf("expected ErrCoordinateRange, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line number in error, got %v", err)
	}
	if _, err := ReadCSV(strings.NewReader("latitude,longitude\nabc,174\n")); err == nil {
		t.Fatalf("expected parse error for non-numeric latitude")
	}
}

const nmeaLog = `noise before the first sentence
$GPRMC,123519,A,3653.109,S,17444.882,E,022.4,084.4,230394,003.1,W*7E
$GPRMC,123520,V,3653.109,S,17444.882,E,022.4,084.4,230394,003.1,W*63
$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39
$GPGGA,123521,3653.180,S,17445.225,E,1,08,0.9,545.4,M,46.9,M,,*5F
$GPGGA,123522,3653.180,S,17445.225,E,0,00,,,M,,M,,*49
$GPRMC,123523,A,3653.1
$GPRMC,123519,A,3653.109,S,17444.882,E,022.4,084.4,230394,003.1,W*00
`

func TestReadNMEAKeepsValidFixes(t *testing.T) {
	testlog.Start(t)

	points, err := ReadNMEA(strings.NewReader(nmeaLog))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []protocol.Point{
		{Latitude: -(36 + 53.109/60), Longitude: 174 + 44.882/60},
		{Latitude: -(36 + 53.180/60), Longitude: 174 + 45.225/60},
	}
	assertPoints(t, points, want, 1e-6)
}

func TestScanNMEAStopsEarly(t *testing.T) {
	testlog.Start(t)

	seen := 0
	err := ScanNMEA(strings.NewReader(nmeaLog), func(protocol.Point) bool {
		seen++
		return false
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if seen != 1 {
		t.Fatalf("expected scan to stop after one fix, saw %d", seen)
	}
}

func TestSerialOptions(t *testing.T) {
	if _, err := serialOptions(SerialConfig{}); !errors.Is(err, ErrNoPort) {
		t.Fatalf("expected ErrNoPort, got %v", err)
	}
	opts, err := serialOptions(SerialConfig{Port: "/dev/ttyUSB0"})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.PortName != "/dev/ttyUSB0" || opts.BaudRate != 9600 {
		t.Fatalf("unexpected port options: %+v", opts)
	}
	if opts.DataBits != 8 || opts.StopBits != 1 || opts.ParityMode != serial.PARITY_NONE {
		t.Fatalf("expected 8N1 framing, got %+v", opts)
	}
	if _, err := OpenSerial(SerialConfig{}); !errors.Is(err, ErrNoPort) {
		t.Fatalf("expected OpenSerial to reject empty port, got %v", err)
	}
}

func assertPoints(t *testing.T, got, want []protocol.Point, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if math.Abs(got[i].Latitude-want[i].Latitude) > tol || math.Abs(got[i].Longitude-want[i].Longitude) > tol {
			t.Fatalf("point %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}
