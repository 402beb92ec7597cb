package identity

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/pkg/pagination"
)

// Handler exposes user CRUD over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/users", h.create)
	g.GET("/users", h.list)
	g.GET("/users/:id", h.get)
	g.PUT("/users/:id", h.update)
	g.DELETE("/users/:id", h.delete)
}

type userRequest struct {
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	Phone     *string `json:"phone"`
	PatientID *string `json:"patient_id"`
}

func (r *userRequest) toUser() (*User, error) {
	u := &User{Email: r.Email, Name: r.Name, Role: r.Role, Phone: r.Phone}
	if r.PatientID != nil {
		id, err := uuid.Parse(*r.PatientID)
		if err != nil {
			return nil, httperr.Validation("invalid patient id %q", *r.PatientID)
		}
		u.PatientID = &id
	}
	return u, nil
}

func (h *Handler) create(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}
	u, err := req.toUser()
	if err != nil {
		return err
	}
	created, err := h.svc.Create(c.Request().Context(), u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid user id %q", c.Param("id"))
	}
	u, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid user id %q", c.Param("id"))
	}
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Validation("invalid request body")
	}
	u, err := req.toUser()
	if err != nil {
		return err
	}
	u.ID = id
	updated, err := h.svc.Update(c.Request().Context(), u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.Validation("invalid user id %q", c.Param("id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) list(c echo.Context) error {
	p := pagination.FromContext(c)
	users, total, err := h.svc.List(c.Request().Context(), c.QueryParam("role"), p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, p.Limit, p.Offset))
}
