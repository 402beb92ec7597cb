package supply

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/pkg/pagination"
)

// Handler exposes the supply inventory over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/supplies", h.create)
	g.GET("/supplies", h.list)
	g.GET("/supplies/:id", h.get)
	g.PUT("/supplies/:id", h.update)
	g.PUT("/supplies/:id/adjust", h.adjust)
	g.DELETE("/supplies/:id", h.delete)
}

type supplyRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Unit     string  `json:"unit"`
	Notes    *string `json:"notes"`
}

func (h *Handler) create(c echo.Context) error {
	var req supplyRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}
	sup, err := h.svc.Create(c.Request().Context(), &Supply{
		Name:     req.Name,
		Category: req.Category,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Notes:    req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sup)
}

func (h *Handler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid supply id %q", c.Param("id"))
	}
	sup, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sup)
}

func (h *Handler) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid supply id %q", c.Param("id"))
	}
	var req supplyRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}
	sup, err := h.svc.Update(c.Request().Context(), id, &Supply{
		Name:     req.Name,
		Category: req.Category,
		Unit:     req.Unit,
		Notes:    req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sup)
}

func (h *Handler) adjust(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid supply id %q", c.Param("id"))
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}
	sup, err := h.svc.Adjust(c.Request().Context(), id, req.Delta)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sup)
}

func (h *Handler) delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid supply id %q", c.Param("id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) list(c echo.Context) error {
	p := pagination.FromContext(c)
	out, total, err := h.svc.List(c.Request().Context(), c.QueryParam("category"), p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(out, total, p.Limit, p.Offset))
}
