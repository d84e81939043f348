package department

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperror"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
	"github.com/hms/hms/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts department endpoints on g. All staff can read,
// writes are admin only.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	d := g.Group("/departments")
	d.GET("", h.List, auth.RequireRole("doctor", "nurse"))
	d.GET("/:id", h.Get, auth.RequireRole("doctor", "nurse"))
	d.POST("", h.Create, auth.RequireRole())
	d.PUT("/:id", h.Update, auth.RequireRole())
	d.DELETE("/:id", h.Delete, auth.RequireRole())
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid id")
	}
	return id, nil
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset())
	if err != nil {
		return err
	}
	return respond.List(c, http.StatusOK, items, p, total)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, d)
}

func (h *Handler) Create(c echo.Context) error {
	var d Department
	if err := c.Bind(&d); err != nil {
		return apperror.Validation("invalid request body")
	}
	created, err := h.svc.Create(c.Request().Context(), &d)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusCreated, created)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var upd Update
	if err := c.Bind(&upd); err != nil {
		return apperror.Validation("invalid request body")
	}
	d, err := h.svc.Update(c.Request().Context(), id, upd)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, d)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond.Message(c, http.StatusOK, "department deleted")
}
