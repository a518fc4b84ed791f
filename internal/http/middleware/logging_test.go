package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// captureLogger swaps the global logger for a buffer for this test.
func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func newLoggedEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(mw...)
	return r
}

func TestRequestID_GeneratedWhenAbsent(t *testing.T) {
	r := newLoggedEngine()
	r.GET("/ping", func(c *gin.Context) {
		v, ok := c.Get(requestIDKey)
		if !ok || v == "" {
			t.Fatalf("request id missing from context")
		}
		c.Status(http.StatusOK)
	})

	w := serveOnce(t, r, http.MethodGet, "/ping")
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated %s header", requestIDHeader)
	}
}

func TestRequestID_IncomingHeaderWins(t *testing.T) {
	r := newLoggedEngine()
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, header := range []string{requestIDHeader, strings.ToLower(requestIDHeader)} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(header, "triage-req-7")
		r.ServeHTTP(w, req)
		if got := w.Header().Get(requestIDHeader); got != "triage-req-7" {
			t.Fatalf("header %q: echoed id = %q; want triage-req-7", header, got)
		}
	}
}

func TestLogger_LevelFollowsOutcome(t *testing.T) {
	buf := captureLogger(t)
	r := newLoggedEngine(Logger())

	r.GET("/threads", func(c *gin.Context) { c.String(http.StatusOK, "[]") })
	r.GET("/broken", func(c *gin.Context) {
		_ = c.Error(errors.New("resolver unavailable"))
		c.Status(http.StatusBadRequest)
	})

	serveOnce(t, r, http.MethodGet, "/threads") // 200 -> info
	serveOnce(t, r, http.MethodGet, "/missing") // 404 -> warn, raw path label
	serveOnce(t, r, http.MethodGet, "/broken")  // gin errors -> error

	out := buf.String()
	for _, want := range []string{
		`"level":"info"`, `"path":"/threads"`,
		`"level":"warn"`, `"path":"/missing"`,
		`"level":"error"`, "resolver unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("access log missing %q:\n%s", want, out)
		}
	}
}

func TestRecovery_WritesErrorEnvelope(t *testing.T) {
	buf := captureLogger(t)
	r := newLoggedEngine(Logger(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("resolver state corrupt") })

	w := serveOnce(t, r, http.MethodGet, "/boom")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("panic response = %d; want 500", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if body["code"] != "internal_error" || body["message"] != "internal server error" {
		t.Fatalf("envelope = %v", body)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("expected panic log:\n%s", buf.String())
	}
}

func TestRecovery_PanicAfterWriteSkipsEnvelope(t *testing.T) {
	buf := captureLogger(t)
	r := newLoggedEngine(Logger(), Recovery())

	// Once bytes are on the wire the recovery path must not append the
	// JSON envelope to a half-written response.
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late failure")
	})

	w := serveOnce(t, r, http.MethodGet, "/late")
	if strings.Contains(w.Body.String(), "internal_error") {
		t.Fatalf("envelope appended after write: %q", w.Body.String())
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("expected panic log:\n%s", buf.String())
	}
}

func TestLoggerFrom_RequestScopedAndFallback(t *testing.T) {
	// Without Logger() the helper returns a usable logger with no
	// request fields.
	buf := captureLogger(t)
	r := newLoggedEngine()
	r.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("bare")
		c.Status(http.StatusOK)
	})
	serveOnce(t, r, http.MethodGet, "/use")
	if !strings.Contains(buf.String(), `"message":"bare"`) {
		t.Fatalf("fallback logger did not write:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), `"request_id"`) {
		t.Fatalf("fallback logger carried request fields:\n%s", buf.String())
	}

	// With Logger() installed the context logger carries the request id.
	buf2 := captureLogger(t)
	r2 := newLoggedEngine(Logger())
	r2.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("scoped")
		c.Status(http.StatusOK)
	})
	serveOnce(t, r2, http.MethodGet, "/use")
	if !strings.Contains(buf2.String(), `"message":"scoped"`) || !strings.Contains(buf2.String(), `"request_id"`) {
		t.Fatalf("request-scoped logger output:\n%s", buf2.String())
	}
}

func Test_truncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"abcdefgh", 5, "abcde…"},
		{"abc", 0, "abc"},
		{"", 4, ""},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.max); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q; want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func Test_asString(t *testing.T) {
	if asString("rid") != "rid" {
		t.Fatalf("asString(string) lost value")
	}
	if asString(42) != "" || asString(nil) != "" {
		t.Fatalf("asString(non-string) should be empty")
	}
}
