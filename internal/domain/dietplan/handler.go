package dietplan

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/pkg/pagination"
)

// Handler exposes diet plans and meal logging over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/dietplans", h.createPlan)
	g.GET("/dietplans", h.listPlans)
	g.GET("/dietplans/:id", h.getPlan)
	g.PUT("/dietplans/:id", h.updatePlan)
	g.PUT("/dietplans/:id/status", h.setPlanStatus)
	g.DELETE("/dietplans/:id", h.deletePlan)

	g.POST("/dietplans/:id/meals", h.logMeal)
	g.GET("/dietplans/:id/meals", h.listMeals)
	g.DELETE("/meals/:id", h.deleteMeal)
}

type planRequest struct {
	PatientID   string  `json:"patient_id"`
	DieticianID string  `json:"dietician_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
}

func parseDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, httperr.Validation("invalid %s %q, expected YYYY-MM-DD", field, v)
	}
	return t, nil
}

func (h *Handler) createPlan(c echo.Context) error {
	var req planRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return httperr.Validation("invalid patient id %q", req.PatientID)
	}
	dieticianID, err := uuid.Parse(req.DieticianID)
	if err != nil {
		return httperr.Validation("invalid dietician id %q", req.DieticianID)
	}
	start, err := parseDate("start date", req.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDate("end date", req.EndDate)
	if err != nil {
		return err
	}

	p, err := h.svc.CreatePlan(c.Request().Context(), &Plan{
		PatientID:   patientID,
		DieticianID: dieticianID,
		Title:       req.Title,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) getPlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid diet plan id %q", c.Param("id"))
	}
	p, err := h.svc.GetPlan(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) updatePlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid diet plan id %q", c.Param("id"))
	}
	var req planRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}
	start, err := parseDate("start date", req.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDate("end date", req.EndDate)
	if err != nil {
		return err
	}

	p, err := h.svc.UpdatePlan(c.Request().Context(), id, &Plan{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) setPlanStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid diet plan id %q", c.Param("id"))
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}
	p, err := h.svc.SetPlanStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) deletePlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid diet plan id %q", c.Param("id"))
	}
	if err := h.svc.DeletePlan(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listPlans(c echo.Context) error {
	p := pagination.FromContext(c)

	var patientID uuid.UUID
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return httperr.Validation("invalid patient_id %q", v)
		}
		patientID = id
	}

	out, total, err := h.svc.ListPlans(c.Request().Context(), patientID, c.QueryParam("status"), p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(out, total, p.Limit, p.Offset))
}

type mealRequest struct {
	MealType    string `json:"meal_type"`
	Description string `json:"description"`
}

func (h *Handler) logMeal(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid diet plan id %q", c.Param("id"))
	}
	var req mealRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}

	m, err := h.svc.LogMeal(c.Request().Context(), &MealEntry{
		DietPlanID:  planID,
		MealType:    req.MealType,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) listMeals(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid diet plan id %q", c.Param("id"))
	}
	p := pagination.FromContext(c)
	out, total, err := h.svc.ListMeals(c.Request().Context(), planID, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(out, total, p.Limit, p.Offset))
}

func (h *Handler) deleteMeal(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid meal entry id %q", c.Param("id"))
	}
	if err := h.svc.DeleteMeal(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
