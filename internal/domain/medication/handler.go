package medication

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/pkg/pagination"
)

// Handler exposes prescriptions and reminders over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/prescriptions", h.createPrescription)
	g.GET("/prescriptions", h.listPrescriptions)
	g.GET("/prescriptions/:id", h.getPrescription)
	g.PUT("/prescriptions/:id/status", h.setPrescriptionStatus)

	g.POST("/reminders", h.createReminder)
	g.GET("/reminders", h.listReminders)
	g.GET("/reminders/:id", h.getReminder)
	g.PUT("/reminders/:id/active", h.setReminderActive)
	g.DELETE("/reminders/:id", h.deleteReminder)
}

type prescriptionRequest struct {
	PatientID    string  `json:"patient_id"`
	PhysicianID  string  `json:"physician_id"`
	Medication   string  `json:"medication"`
	Dosage       string  `json:"dosage"`
	Instructions *string `json:"instructions"`
}

func (h *Handler) createPrescription(c echo.Context) error {
	var req prescriptionRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return httperr.Validation("invalid patient id %q", req.PatientID)
	}
	physicianID, err := uuid.Parse(req.PhysicianID)
	if err != nil {
		return httperr.Validation("invalid physician id %q", req.PhysicianID)
	}

	p, err := h.svc.CreatePrescription(c.Request().Context(), &Prescription{
		PatientID:    patientID,
		PhysicianID:  physicianID,
		Medication:   req.Medication,
		Dosage:       req.Dosage,
		Instructions: req.Instructions,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) getPrescription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid prescription id %q", c.Param("id"))
	}
	p, err := h.svc.GetPrescription(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) setPrescriptionStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid prescription id %q", c.Param("id"))
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}
	p, err := h.svc.SetPrescriptionStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) listPrescriptions(c echo.Context) error {
	p := pagination.FromContext(c)

	var patientID uuid.UUID
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return httperr.Validation("invalid patient_id %q", v)
		}
		patientID = id
	}

	out, total, err := h.svc.ListPrescriptions(c.Request().Context(), patientID, c.QueryParam("status"), p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(out, total, p.Limit, p.Offset))
}

type reminderRequest struct {
	PatientID      string  `json:"patient_id"`
	PrescriptionID *string `json:"prescription_id"`
	Medication     string  `json:"medication"`
	RemindAt       string  `json:"remind_at"`
	Frequency      string  `json:"frequency"`
}

func (h *Handler) createReminder(c echo.Context) error {
	var req reminderRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return httperr.Validation("invalid patient id %q", req.PatientID)
	}

	rem := &Reminder{
		PatientID:  patientID,
		Medication: req.Medication,
		RemindAt:   req.RemindAt,
		Frequency:  req.Frequency,
	}
	if req.PrescriptionID != nil {
		pid, err := uuid.Parse(*req.PrescriptionID)
		if err != nil {
			return httperr.Validation("invalid prescription id %q", *req.PrescriptionID)
		}
		rem.PrescriptionID = &pid
	}

	created, err := h.svc.CreateReminder(c.Request().Context(), rem)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) getReminder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid reminder id %q", c.Param("id"))
	}
	rem, err := h.svc.GetReminder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rem)
}

func (h *Handler) setReminderActive(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid reminder id %q", c.Param("id"))
	}
	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil || req.Active == nil {
		return httperr.Validation("active flag is required")
	}
	rem, err := h.svc.SetReminderActive(c.Request().Context(), id, *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rem)
}

func (h *Handler) deleteReminder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid reminder id %q", c.Param("id"))
	}
	if err := h.svc.DeleteReminder(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listReminders(c echo.Context) error {
	p := pagination.FromContext(c)

	patientID, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return httperr.Validation("patient_id query parameter is required")
	}
	activeOnly := c.QueryParam("active") == "true"

	out, total, err := h.svc.ListReminders(c.Request().Context(), patientID, activeOnly, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(out, total, p.Limit, p.Offset))
}
