package record

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

// RegisterRoutes mounts the medical record endpoints on g. Records are
// clinical data, so every route requires the doctor role (admin passes
// implicitly).
func (h *Handler) RegisterRoutes(g *echo.Group) {
	r := g.Group("/medical-records", auth.RequireRole("doctor"))
	r.GET("", h.List)
	r.POST("", h.Create)
	r.GET("/patient/:patientId", h.PatientHistory)
	r.GET("/:id", h.Get)
	r.PUT("/:id", h.Update)
	r.PUT("/:id/status", h.UpdateStatus)
	r.PUT("/:id/payment", h.MarkPaid)
	r.DELETE("/:id", h.Delete)
	r.POST("/:id/test-results", h.AddTestResult)
	r.POST("/:id/attachments", h.AddAttachment)
}

func actorID(c echo.Context) uuid.UUID {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid %s", name)
	}
	return id, nil
}

func (h *Handler) List(c echo.Context) error {
	var f Filter
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperror.Validation("invalid patient_id")
		}
		f.PatientID = &id
	}
	if v := c.QueryParam("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperror.Validation("invalid doctor_id")
		}
		f.DoctorID = &id
	}
	if v := c.QueryParam("department_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperror.Validation("invalid department_id")
		}
		f.DepartmentID = &id
	}
	f.Status = c.QueryParam("status")
	f.Search = c.QueryParam("search")
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
		// Inclusive end of day.
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
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, m)
}

func (h *Handler) Create(c echo.Context) error {
	var m MedicalRecord
	if err := c.Bind(&m); err != nil {
		return apperror.Validation("invalid request body")
	}
	created, err := h.svc.Create(c.Request().Context(), &m, actorID(c))
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusCreated, created)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var upd Update
	if err := c.Bind(&upd); err != nil {
		return apperror.Validation("invalid request body")
	}
	m, err := h.svc.Update(c.Request().Context(), id, upd, actorID(c))
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, m)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return apperror.Validation("invalid request body")
	}
	m, err := h.svc.UpdateStatus(c.Request().Context(), id, body.Status, actorID(c))
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, m)
}

func (h *Handler) MarkPaid(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.Bind(&body); err != nil {
		return apperror.Validation("invalid request body")
	}
	m, err := h.svc.MarkPaid(c.Request().Context(), id, body.PaymentMethod, actorID(c))
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, m)
}

func (h *Handler) PatientHistory(c echo.Context) error {
	patientID, err := pathID(c, "patientId")
	if err != nil {
		return err
	}
	items, err := h.svc.PatientHistory(c.Request().Context(), patientID)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, items)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond.Message(c, http.StatusOK, "medical record deleted")
}

func (h *Handler) AddTestResult(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var tr TestResult
	if err := c.Bind(&tr); err != nil {
		return apperror.Validation("invalid request body")
	}
	created, err := h.svc.AddTestResult(c.Request().Context(), id, &tr)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusCreated, created)
}

func (h *Handler) AddAttachment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var a Attachment
	if err := c.Bind(&a); err != nil {
		return apperror.Validation("invalid request body")
	}
	created, err := h.svc.AddAttachment(c.Request().Context(), id, &a, actorID(c))
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusCreated, created)
}
