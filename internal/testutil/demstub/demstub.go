package demstub

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danmuck/demprobe/internal/observability"
	"github.com/danmuck/demprobe/internal/pointsrc"
	"github.com/danmuck/demprobe/internal/protocol"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	BinaryPath = "/process_binary"
	CSVPath    = "/process_csv"

	// MaxPoints is the per-request limit of the lookup service.
	MaxPoints = 10000

	StatusOK             = "OK"
	StatusInvalidRequest = "INVALID_REQUEST"
)

// Options shape how the stub answers. The zero value answers every request immediately
// with one record per point and quality from DefaultQuality.
type Options struct {
	// Delay is applied before every response.
	Delay time.Duration
	// Status forces a plain-text response with this HTTP status.
	Status int
	// ServiceStatus makes the binary endpoint answer 200 text/plain "STATUS\nmessage\n\n",
	// the way the lookup service reports failures.
	ServiceStatus  string
	ServiceMessage string
	// TrailingBytes are appended to every binary response body.
	TrailingBytes []byte
	// QualityOnly makes the binary endpoint answer with 4-byte quality records.
	QualityOnly bool
	Quality     func(protocol.Point) float64
}

// Stub is an in-process lookup endpoint served over httptest.
type Stub struct {
	opts   Options
	router *gin.Engine
	server *httptest.Server

	mu       sync.Mutex
	batches  []int
	inFlight atomic.Int64
	peak     atomic.Int64
}

// DefaultQuality is a deterministic stand-in for an elevation lookup.
func DefaultQuality(p protocol.Point) float64 {
	return math.Round((math.Abs(p.Latitude)+math.Abs(p.Longitude))*1000) / 1000
}

// New starts a stub server that is closed when t finishes.
func New(t testing.TB, opts Options) *Stub {
	t.Helper()
	s := NewHandler(opts)
	s.server = httptest.NewServer(s.router)
	t.Cleanup(s.server.Close)
	return s
}

// NewHandler builds the stub router without starting a listener.
func NewHandler(opts Options) *Stub {
	if opts.Quality == nil {
		opts.Quality = DefaultQuality
	}
	gin.SetMode(gin.TestMode)
	observability.RegisterMetrics()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware("demstub"))
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: AllowOrigin,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	s := &Stub{opts: opts, router: r}
	r.POST(BinaryPath, s.track, s.handleBinary)
	r.POST(CSVPath, s.track, s.handleCSV)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

// AllowOrigin admits local pages: origin "null" (a file opened in a browser) and localhost.
func AllowOrigin(origin string) bool {
	if origin == "null" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Hostname() == "localhost"
}

func (s *Stub) URL() string {
	if s.server == nil {
		return ""
	}
	return s.server.URL
}

func (s *Stub) Handler() http.Handler {
	return s.router
}

// Batches returns the point count of every binary request received, in arrival order.
func (s *Stub) Batches() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.batches...)
}

// PeakInFlight is the highest number of requests served concurrently.
func (s *Stub) PeakInFlight() int {
	return int(s.peak.Load())
}

func (s *Stub) track(c *gin.Context) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if s.opts.Delay > 0 {
		select {
		case <-time.After(s.opts.Delay):
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}
	if s.opts.Status != 0 {
		c.String(s.opts.Status, "%s", http.StatusText(s.opts.Status))
		c.Abort()
		return
	}
	c.Next()
}

func (s *Stub) handleBinary(c *gin.Context) {
	if s.opts.ServiceStatus != "" {
		s.serviceError(c, s.opts.ServiceStatus, s.opts.ServiceMessage)
		return
	}
	if c.ContentType() != "application/octet-stream" {
		s.serviceError(c, StatusInvalidRequest, "Unknown input type")
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		s.serviceError(c, StatusInvalidRequest, err.Error())
		return
	}
	points, err := protocol.DecodePoints(body)
	if err != nil {
		s.serviceError(c, StatusInvalidRequest, "ValueError processing lat,lng coordinates: "+err.Error())
		return
	}
	if len(points) > MaxPoints {
		s.serviceError(c, StatusInvalidRequest, fmt.Sprintf("too many points: %d > %d", len(points), MaxPoints))
		return
	}
	s.mu.Lock()
	s.batches = append(s.batches, len(points))
	s.mu.Unlock()

	out, err := s.encodeAnswer(points)
	if err != nil {
		s.serviceError(c, StatusInvalidRequest, "Error looking up DEM: "+err.Error())
		return
	}
	out = append(out, s.opts.TrailingBytes...)
	c.Data(http.StatusOK, "application/octet-stream", out)
}

func (s *Stub) encodeAnswer(points []protocol.Point) ([]byte, error) {
	if s.opts.QualityOnly {
		values := make([]float64, 0, len(points))
		for _, p := range points {
			values = append(values, s.opts.Quality(p))
		}
		return protocol.EncodeQuality(values)
	}
	records := make([]protocol.CombinedRecord, 0, len(points))
	for _, p := range points {
		records = append(records, protocol.CombinedRecord{
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Quality:   s.opts.Quality(p),
		})
	}
	return protocol.EncodeCombinedRecords(records)
}

// handleCSV answers with a lat,lng,elevation table, or a "#STATUS,message," line on error.
func (s *Stub) handleCSV(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.csvError(c, StatusInvalidRequest, err.Error())
		return
	}
	points, err := pointsrc.ReadCSV(bytes.NewReader(body))
	if err != nil {
		s.csvError(c, StatusInvalidRequest, err.Error())
		return
	}
	var b strings.Builder
	b.WriteString("lat,lng,elevation\n")
	for _, p := range points {
		fmt.Fprintf(&b, "%.7f,%.7f,%.2f\n", p.Latitude, p.Longitude, s.opts.Quality(p))
	}
	c.Data(http.StatusOK, "text/plain", []byte(b.String()))
}

func (s *Stub) serviceError(c *gin.Context, status, message string) {
	c.Data(http.StatusOK, "text/plain", []byte(status+"\n"+message+"\n\n"))
}

func (s *Stub) csvError(c *gin.Context, status, message string) {
	c.Data(http.StatusOK, "text/plain", []byte("#"+status+","+message+",\n"))
}
