package diagnosis

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinsight/clinsight/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/diagnosis/analyze", h.Analyze)
	api.GET("/diagnosis/reports/:id", h.GetReport)
	api.GET("/patients/:id/diagnoses", h.ListReports)
	api.GET("/symptoms", h.ListSymptoms)
}

func (h *Handler) Analyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	report, err := h.svc.Analyze(c.Request().Context(), req)
	if err != nil {
		return analyzeError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func analyzeError(err error) error {
	var malformed *MalformedHistoryError
	if errors.As(err, &malformed) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, malformed.Error())
	}
	var invariant *InvariantViolationError
	if errors.As(err, &invariant) {
		return echo.NewHTTPError(http.StatusInternalServerError, "diagnosis could not be validated")
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func (h *Handler) GetReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	report, err := h.svc.GetReport(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) ListReports(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	p := pagination.FromContext(c)
	reports, total, err := h.svc.ListReports(c.Request().Context(), patientID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(reports, total, p.Limit, p.Offset))
}

func (h *Handler) ListSymptoms(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.SymptomCatalog())
}
