package appointment

import (
	"net/http"
	"time"

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

// RegisterRoutes mounts appointment endpoints on g. Scheduling is open to
// all staff roles.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	a := g.Group("/appointments", auth.RequireRole("doctor", "nurse"))
	a.GET("", h.List)
	a.GET("/:id", h.Get)
	a.POST("", h.Create)
	a.PUT("/:id", h.Update)
	a.PUT("/:id/status", h.UpdateStatus)
	a.DELETE("/:id", h.Delete)
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid id")
	}
	return id, nil
}

func queryUUID(c echo.Context, name string) (*uuid.UUID, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, apperror.Validation("invalid %s", name)
	}
	return &id, nil
}

func (h *Handler) List(c echo.Context) error {
	var f Filter
	var err error
	if f.PatientID, err = queryUUID(c, "patient_id"); err != nil {
		return err
	}
	if f.DoctorID, err = queryUUID(c, "doctor_id"); err != nil {
		return err
	}
	if f.DepartmentID, err = queryUUID(c, "department_id"); err != nil {
		return err
	}
	f.Status = c.QueryParam("status")
	if v := c.QueryParam("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return apperror.Validation("invalid start_date, expected YYYY-MM-DD")
		}
		f.StartDate = &t
	}
	if v := c.QueryParam("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return apperror.Validation("invalid end_date, expected YYYY-MM-DD")
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		f.EndDate = &t
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
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, a)
}

func (h *Handler) Create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return apperror.Validation("invalid request body")
	}
	created, err := h.svc.Create(c.Request().Context(), &a)
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
	a, err := h.svc.Update(c.Request().Context(), id, upd)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, a)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return apperror.Validation("invalid request body")
	}
	a, err := h.svc.UpdateStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond.Message(c, http.StatusOK, "appointment deleted")
}
