package demstub

import (
	"bytes"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/demprobe/internal/protocol"
	"github.com/danmuck/demprobe/internal/testutil/testlog"
)

func TestBinaryEndpointEchoesRecords(t *testing.T) {
	testlog.Start(t)

	s := NewHandler(Options{})
	body, err := protocol.EncodePoints([]protocol.Point{{Latitude: -36.885150, Longitude: 174.748030}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, BinaryPath, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/octet-stream")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/octet-stream" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	records, err := protocol.DecodeCombinedRecordsStrict(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 || math.Abs(records[0].Quality-DefaultQuality(records[0].Point())) > 1e-9 {
		t.Fatalf("unexpected records: %+v", records)
	}
	if got := s.Batches(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("unexpected batches: %v", got)
	}
}

func TestBinaryEndpointRejectsOddLength(t *testing.T) {
	testlog.Start(t)

	s := NewHandler(Options{})
	req := httptest.NewRequest(http.MethodPost, BinaryPath, bytes.NewReader(make([]byte, 12)))
	req.Header.Set("Content-Type", "application/octet-stream")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if !strings.HasPrefix(rec.Body.String(), StatusInvalidRequest+"\n") {
		t.Fatalf("expected service error body, got %q", rec.Body.String())
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("expected text/plain, got %q", rec.Header().Get("Content-Type"))
	}
}

func TestCSVEndpoint(t *testing.T) {
	testlog.Start(t)

	s := NewHandler(Options{Quality: func(protocol.Point) float64 { return 12.5 }})
	in := "#,latitude,longitude,type,dist\n0,-36.885150,174.748030,HOME,0.0\n"
	req := httptest.NewRequest(http.MethodPost, CSVPath, strings.NewReader(in))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	want := "lat,lng,elevation\n-36.8851500,174.7480300,12.50\n"
	if rec.Body.String() != want {
		t.Fatalf("unexpected csv body:\n%q\nwant\n%q", rec.Body.String(), want)
	}
}

func TestForcedStatus(t *testing.T) {
	testlog.Start(t)

	s := NewHandler(Options{Status: http.StatusServiceUnavailable})
	req := httptest.NewRequest(http.MethodPost, BinaryPath, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestAllowOrigin(t *testing.T) {
	cases := map[string]bool{
		"null":                  true,
		"http://localhost:8080": true,
		"https://localhost":     true,
		"http://example.com":    false,
		"http://localhost.evil": false,
	}
	for origin, want := range cases {
		if got := AllowOrigin(origin); got != want {
			t.Fatalf("AllowOrigin(%q)=%v want %v", origin, got, want)
		}
	}
}

func TestPreflightFromLocalPage(t *testing.T) {
	testlog.Start(t)

	s := NewHandler(Options{})
	req := httptest.NewRequest(http.MethodOptions, BinaryPath, nil)
	req.Header.Set("Origin", "null")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "null" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
