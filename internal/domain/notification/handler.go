package notification

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/pkg/pagination"
)

// Handler exposes the notification inbox over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(g *echo.Group) {
	g.GET("/notifications", h.list)
	g.PUT("/notifications/:id/read", h.markRead)
	g.PUT("/notifications/read-all", h.markAllRead)
	g.DELETE("/notifications/:id", h.delete)
}

func (h *Handler) list(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return httperr.Validation("user_id query parameter is required")
	}
	unreadOnly := c.QueryParam("unread") == "true"

	p := pagination.FromContext(c)
	out, total, err := h.svc.List(c.Request().Context(), userID, unreadOnly, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(out, total, p.Limit, p.Offset))
}

func (h *Handler) markRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid notification id %q", c.Param("id"))
	}
	n, err := h.svc.MarkRead(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) markAllRead(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return httperr.Validation("user_id query parameter is required")
	}
	updated, err := h.svc.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"updated": updated})
}

func (h *Handler) delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid notification id %q", c.Param("id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
