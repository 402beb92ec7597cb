package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequestIDGenerated(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := RequestID()(okHandler)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}

	rid := rec.Header().Get(RequestIDHeader)
	if rid == "" {
		t.Fatal("no request id set")
	}
	if got := c.Get("request_id"); got != rid {
		t.Errorf("context id = %v, header = %s", got, rid)
	}
}

func TestRequestIDPreserved(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := RequestID()(okHandler)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rid := rec.Header().Get(RequestIDHeader); rid != "client-supplied-id" {
		t.Errorf("request id = %q, want caller's id", rid)
	}
}

func TestRateLimitRejectsBeyondBurst(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 3})
	h := mw(okHandler)

	var tooMany int
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := h(c); err != nil {
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != http.StatusTooManyRequests {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Response().Header().Get("Retry-After") == "" {
				t.Error("429 without Retry-After")
			}
			tooMany++
		}
	}
	if tooMany == 0 {
		t.Fatal("burst never exhausted")
	}
	if tooMany > 7 {
		t.Errorf("rejected %d of 10, burst of 3 not honored", tooMany)
	}
}

func TestRateLimitIsolatesClients(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})
	h := mw(okHandler)

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		c := e.NewContext(req, httptest.NewRecorder())
		if err := h(c); err != nil {
			t.Errorf("first request from %s rejected: %v", addr, err)
		}
	}
}

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	panicking := func(echo.Context) error { panic("boom") }
	err := Recovery(zerolog.Nop())(panicking)(c)
	if err == nil {
		t.Fatal("panic swallowed without error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusInternalServerError {
		t.Fatalf("error = %v, want 500", err)
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Logger(zerolog.Nop())(okHandler)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
