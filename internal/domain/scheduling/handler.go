package scheduling

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/pkg/pagination"
)

// Handler exposes appointments, availability and slot management over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the scheduling routes on the given group.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/appointments", h.book)
	g.GET("/appointments", h.listBookings)
	g.GET("/appointments/:id", h.getBooking)
	g.PUT("/appointments/:id/complete", h.completeBooking)
	g.PUT("/appointments/:id/cancel", h.cancelBooking)

	g.GET("/availability/:providerId", h.listAvailability)

	g.POST("/slots", h.createSlot)
	g.GET("/slots/:id", h.getSlot)
	g.DELETE("/slots/:id", h.deleteSlot)
}

type bookRequest struct {
	PatientID      string `json:"patientId"`
	ProviderID     string `json:"providerId"`
	Date           string `json:"providerAvailableDate"`
	TimeSlot       string `json:"providerAvailableTimeSlot"`
	Specialization string `json:"specialization"`
	Venue          string `json:"venue"`
	Reason         string `json:"reasonsForVisit"`
	ServiceBooked  string `json:"serviceBooked"`
	BookingMode    string `json:"bookingMode"`
}

func (h *Handler) book(c echo.Context) error {
	var req bookRequest
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
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return httperr.Validation("invalid appointment date %q, expected YYYY-MM-DD", req.Date)
	}

	booking, err := h.svc.Book(c.Request().Context(), BookRequest{
		PatientID:      patientID,
		ProviderID:     providerID,
		Date:           date,
		TimeSlot:       req.TimeSlot,
		Specialization: req.Specialization,
		Venue:          req.Venue,
		Reason:         req.Reason,
		ServiceBooked:  req.ServiceBooked,
		BookingMode:    req.BookingMode,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, booking)
}

func (h *Handler) listBookings(c echo.Context) error {
	p := pagination.FromContext(c)

	var filter BookingFilter
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

	bookings, total, err := h.svc.ListBookings(c.Request().Context(), filter, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(bookings, total, p.Limit, p.Offset))
}

func (h *Handler) getBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid booking id %q", c.Param("id"))
	}
	booking, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *Handler) completeBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid booking id %q", c.Param("id"))
	}
	booking, err := h.svc.Complete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *Handler) cancelBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid booking id %q", c.Param("id"))
	}
	booking, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *Handler) listAvailability(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("providerId"))
	if err != nil {
		return httperr.Validation("invalid provider id %q", c.Param("providerId"))
	}

	from := time.Now().UTC().Truncate(24 * time.Hour)
	if v := c.QueryParam("from"); v != "" {
		from, err = time.Parse("2006-01-02", v)
		if err != nil {
			return httperr.Validation("invalid from date %q, expected YYYY-MM-DD", v)
		}
	}

	p := pagination.FromContext(c)
	slots, total, err := h.svc.ListAvailability(c.Request().Context(), providerID, from, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(slots, total, p.Limit, p.Offset))
}

type createSlotRequest struct {
	ProviderID string `json:"provider_id"`
	Date       string `json:"slot_date"`
	TimeSlot   string `json:"time_slot"`
	Notes      string `json:"notes"`
}

func (h *Handler) createSlot(c echo.Context) error {
	var req createSlotRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}

	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		return httperr.Validation("invalid provider id %q", req.ProviderID)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return httperr.Validation("invalid slot date %q, expected YYYY-MM-DD", req.Date)
	}

	slot, err := h.svc.CreateSlot(c.Request().Context(), providerID, date, req.TimeSlot, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, slot)
}

func (h *Handler) getSlot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid slot id %q", c.Param("id"))
	}
	slot, err := h.svc.GetSlot(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, slot)
}

func (h *Handler) deleteSlot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid slot id %q", c.Param("id"))
	}
	if err := h.svc.DeleteSlot(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
