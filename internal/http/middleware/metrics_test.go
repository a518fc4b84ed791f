package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func serveOnce(t *testing.T, r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestMetrics_CountsByRouteAndStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/threads/:id", func(c *gin.Context) {
		c.String(http.StatusOK, `{"id":"x"}`)
	})

	// The registry is process-global, so measure deltas.
	before := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/threads/:id", "200"))

	if w := serveOnce(t, r, http.MethodGet, "/threads/abc"); w.Code != http.StatusOK {
		t.Fatalf("GET /threads/abc = %d", w.Code)
	}
	if w := serveOnce(t, r, http.MethodGet, "/threads/def"); w.Code != http.StatusOK {
		t.Fatalf("GET /threads/def = %d", w.Code)
	}

	// Both hits collapse onto the route pattern label.
	after := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/threads/:id", "200"))
	if after != before+2 {
		t.Fatalf("counter delta = %v; want 2", after-before)
	}
}

func TestMetrics_UnmatchedRouteUsesRawPath(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())

	before := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404"))
	if w := serveOnce(t, r, http.MethodGet, "/nope"); w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d", w.Code)
	}
	after := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404"))
	if after != before+1 {
		t.Fatalf("404 counter delta = %v; want 1", after-before)
	}
}

func TestMetrics_InflightDrainsToZero(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/empty", func(c *gin.Context) {
		// 204 with no body leaves Writer.Size() at -1, which the
		// size histogram skips.
		c.Status(http.StatusNoContent)
	})

	if w := serveOnce(t, r, http.MethodGet, "/empty"); w.Code != http.StatusNoContent {
		t.Fatalf("GET /empty = %d", w.Code)
	}
	if g := testutil.ToFloat64(httpInflight); g != 0 {
		t.Fatalf("inflight gauge = %v after requests finished", g)
	}
}
