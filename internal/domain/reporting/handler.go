package reporting

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleCaregiver))
	g.GET("/dashboard/stats", h.Overview)
	g.GET("/dashboard/upcoming-doses", h.UpcomingDoses)
	g.GET("/reports/compliance-trend", h.ComplianceTrend)
	g.GET("/reports/medication-distribution", h.MedicationDistribution)
	g.GET("/patients/:id/statistics", h.PatientStatistics)
}

func (h *Handler) Overview(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	o, err := h.svc.Overview(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) ComplianceTrend(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	days, _ := strconv.Atoi(c.QueryParam("days"))
	points, err := h.svc.ComplianceTrend(c.Request().Context(), actor, days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": points})
}

func (h *Handler) MedicationDistribution(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	dist, err := h.svc.MedicationDistribution(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": dist})
}

func (h *Handler) UpcomingDoses(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	doses, err := h.svc.UpcomingDoses(c.Request().Context(), actor, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": doses})
}

func (h *Handler) PatientStatistics(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid patient id")
	}
	stats, err := h.svc.PatientStatistics(c.Request().Context(), actor, patientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
