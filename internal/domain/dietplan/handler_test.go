package dietplan

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carebridge/carebridge/internal/platform/httperr"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler(zerolog.Nop())
	NewHandler(NewService(newMockPlanRepo(), newMockMealRepo(), nopNotifier{})).Register(e.Group("/api/v1"))
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createPlanViaAPI(t *testing.T, e *echo.Echo) *Plan {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/v1/dietplans",
		`{"patient_id":"`+uuid.NewString()+`","dietician_id":"`+uuid.NewString()+`","title":"Low sodium","start_date":"2026-09-01","end_date":"2026-12-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create plan status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var p Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &p
}

func TestMealLoggingEndpoints(t *testing.T) {
	e := newTestServer(t)
	p := createPlanViaAPI(t, e)

	rec := doJSON(e, http.MethodPost, "/api/v1/dietplans/"+p.ID.String()+"/meals",
		`{"meal_type":"breakfast","description":"Oatmeal with berries"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("log meal status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var meal MealEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &meal); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(e, http.MethodPost, "/api/v1/dietplans/"+p.ID.String()+"/meals",
		`{"meal_type":"brunch","description":"Pancakes"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad meal type status = %d, want 400", rec.Code)
	}

	rec = doJSON(e, http.MethodGet, "/api/v1/dietplans/"+p.ID.String()+"/meals", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list meals status = %d", rec.Code)
	}
	var page struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("meal total = %d, want 1", page.Total)
	}

	rec = doJSON(e, http.MethodDelete, "/api/v1/meals/"+meal.ID.String(), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete meal status = %d", rec.Code)
	}
}

func TestLogMealEndpointRefusesInactivePlan(t *testing.T) {
	e := newTestServer(t)
	p := createPlanViaAPI(t, e)

	rec := doJSON(e, http.MethodPut, "/api/v1/dietplans/"+p.ID.String()+"/status", `{"status":"finished"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("finish status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodPost, "/api/v1/dietplans/"+p.ID.String()+"/meals",
		`{"meal_type":"lunch","description":"Grilled chicken salad"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("log against finished plan status = %d, want 409", rec.Code)
	}
}

func TestPlanStatusEndpointTransitions(t *testing.T) {
	e := newTestServer(t)
	p := createPlanViaAPI(t, e)

	rec := doJSON(e, http.MethodPut, "/api/v1/dietplans/"+p.ID.String()+"/status", `{"status":"stopped"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodPut, "/api/v1/dietplans/"+p.ID.String()+"/status", `{"status":"stopped"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat stop status = %d, want 200", rec.Code)
	}

	rec = doJSON(e, http.MethodPut, "/api/v1/dietplans/"+p.ID.String()+"/status", `{"status":"finished"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("finish after stop status = %d, want 409", rec.Code)
	}

	rec = doJSON(e, http.MethodPut, "/api/v1/dietplans/"+p.ID.String(),
		`{"title":"Low sodium v2","start_date":"2026-09-01","end_date":"2026-12-01"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("update stopped plan status = %d, want 409", rec.Code)
	}
}

func TestPlanEndpointUnknownID(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/api/v1/dietplans/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
