package followup

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/pkg/pagination"
)

// Handler exposes follow-ups over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/followups", h.create)
	g.GET("/followups", h.list)
	g.GET("/followups/:id", h.get)
	g.PUT("/followups/:id", h.reschedule)
	g.PUT("/followups/:id/status", h.setStatus)
	g.DELETE("/followups/:id", h.delete)
}

type followUpRequest struct {
	PatientID  string  `json:"patient_id"`
	ProviderID string  `json:"provider_id"`
	BookingID  *string `json:"booking_id"`
	DueDate    string  `json:"due_date"`
	Notes      *string `json:"notes"`
}

func (h *Handler) create(c echo.Context) error {
	var req followUpRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return httperr.Validation("invalid patient id %q", req.PatientID)
	}
	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		return httperr.Validation("invalid provider id %q", req.ProviderID)
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return httperr.Validation("invalid due date %q, expected YYYY-MM-DD", req.DueDate)
	}

	f := &FollowUp{PatientID: patientID, ProviderID: providerID, DueDate: dueDate, Notes: req.Notes}
	if req.BookingID != nil {
		bid, err := uuid.Parse(*req.BookingID)
		if err != nil {
			return httperr.Validation("invalid booking id %q", *req.BookingID)
		}
		f.BookingID = &bid
	}

	created, err := h.svc.Create(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid follow-up id %q", c.Param("id"))
	}
	f, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) reschedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid follow-up id %q", c.Param("id"))
	}
	var req followUpRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return httperr.Validation("invalid due date %q, expected YYYY-MM-DD", req.DueDate)
	}

	f, err := h.svc.Reschedule(c.Request().Context(), id, &FollowUp{DueDate: dueDate, Notes: req.Notes})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) setStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid follow-up id %q", c.Param("id"))
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}
	f, err := h.svc.SetStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid follow-up id %q", c.Param("id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) list(c echo.Context) error {
	p := pagination.FromContext(c)

	var filter Filter
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return httperr.Validation("invalid patient_id %q", v)
		}
		filter.PatientID = id
	}
	if v := c.QueryParam("provider_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return httperr.Validation("invalid provider_id %q", v)
		}
		filter.ProviderID = id
	}
	filter.Status = c.QueryParam("status")
	if v := c.QueryParam("due_before"); v != "" {
		due, err := time.Parse("2006-01-02", v)
		if err != nil {
			return httperr.Validation("invalid due_before %q, expected YYYY-MM-DD", v)
		}
		filter.DueBefore = due
	}

	out, total, err := h.svc.List(c.Request().Context(), filter, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(out, total, p.Limit, p.Offset))
}
