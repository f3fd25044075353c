package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/demprobe/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestRequestLoggerEscalatesOnServerError(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)

	var out bytes.Buffer
	logger := zerolog.New(&out).Level(zerolog.DebugLevel)

	r := gin.New()
	r.Use(RequestLogger(logger), RequestMetricsMiddleware("middleware-test"))
	r.POST("/fail", func(c *gin.Context) { c.String(http.StatusInternalServerError, "boom") })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/fail", strings.NewReader("x"))
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	line := out.String()
	if !strings.Contains(line, `"level":"error"`) || !strings.Contains(line, `"path":"/fail"`) {
		t.Fatalf("unexpected log line: %s", line)
	}
	got := testutil.ToFloat64(httpRequests.WithLabelValues("middleware-test", http.MethodPost, "/fail", "500"))
	if got != 1 {
		t.Fatalf("expected one recorded request, got %v", got)
	}
}
