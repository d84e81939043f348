package reporting

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperror"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts reporting endpoints on g, doctors and admins only.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	r := g.Group("/reports", auth.RequireRole("doctor"))
	r.GET("/measures", h.ListMeasures)
	r.GET("/measures/:id/evaluate", h.Evaluate)
}

func (h *Handler) ListMeasures(c echo.Context) error {
	return respond.JSON(c, http.StatusOK, h.svc.Measures())
}

func (h *Handler) Evaluate(c echo.Context) error {
	result, err := h.svc.Evaluate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	if c.QueryParam("format") == "csv" {
		c.Response().Header().Set(echo.HeaderContentType, "text/csv")
		c.Response().Header().Set(echo.HeaderContentDisposition,
			`attachment; filename="`+result.MeasureID+`.csv"`)
		c.Response().WriteHeader(http.StatusOK)
		if err := WriteCSV(c.Response(), result); err != nil {
			return apperror.Internal(err)
		}
		return nil
	}
	return respond.JSON(c, http.StatusOK, result)
}
