package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func render(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	Handler(zerolog.Nop())(err, c)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Validation("bad field"), http.StatusBadRequest},
		{NotFound("booking", "abc"), http.StatusNotFound},
		{Conflict("slot taken"), http.StatusConflict},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec, body := render(t, tc.err)
		if rec.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		if body["error"] == "" {
			t.Errorf("%v: missing error field", tc.err)
		}
	}
}

func TestHandlerDoesNotLeakInternals(t *testing.T) {
	_, body := render(t, Internal(errors.New("pq: connection refused")))
	if body["error"] != "internal error" {
		t.Errorf("error = %q", body["error"])
	}
	if body["details"] != "" {
		t.Errorf("details leaked: %q", body["details"])
	}
}

func TestNotFoundCarriesDetails(t *testing.T) {
	_, body := render(t, NotFound("booking", "abc-123"))
	if body["error"] != "booking not found" {
		t.Errorf("error = %q", body["error"])
	}
	if body["details"] != "abc-123" {
		t.Errorf("details = %q", body["details"])
	}
}

func TestIsKindUnwraps(t *testing.T) {
	wrapped := Conflict("slot taken")
	if !IsKind(wrapped, KindConflict) {
		t.Error("IsKind failed on direct error")
	}
	if IsKind(wrapped, KindNotFound) {
		t.Error("IsKind matched wrong kind")
	}
	if IsKind(errors.New("plain"), KindConflict) {
		t.Error("IsKind matched plain error")
	}
}

func TestHandlerPassesThroughEchoErrors(t *testing.T) {
	rec, body := render(t, echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
	if body["error"] != "nope" {
		t.Errorf("error = %q", body["error"])
	}
}
