package patient

import (
	"net/http"
	"strconv"

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

// RegisterRoutes mounts patient endpoints on g. Any staff role can read,
// doctors can write, deletion is admin only.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	p := g.Group("/patients")
	p.GET("", h.List, auth.RequireRole("doctor", "nurse"))
	p.GET("/:id", h.Get, auth.RequireRole("doctor", "nurse"))
	p.POST("", h.Create, auth.RequireRole("doctor"))
	p.PUT("/:id", h.Update, auth.RequireRole("doctor"))
	p.DELETE("/:id", h.Delete, auth.RequireRole())
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid id")
	}
	return id, nil
}

func (h *Handler) List(c echo.Context) error {
	var f Filter
	f.Search = c.QueryParam("search")
	if v := c.QueryParam("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return apperror.Validation("invalid active flag")
		}
		f.Active = &active
	}

	p := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), f, p.Limit, p.Offset())
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
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, p)
}

func (h *Handler) Create(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return apperror.Validation("invalid request body")
	}
	created, err := h.svc.Create(c.Request().Context(), &p)
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
	p, err := h.svc.Update(c.Request().Context(), id, upd)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond.Message(c, http.StatusOK, "patient deleted")
}
