package dose

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleCaregiver))
	g.GET("/treatments/:id/doses", h.ListByTreatment)
	g.POST("/treatments/:id/doses", h.Record)
	g.POST("/doses/:id/taken", h.MarkTaken)
	g.POST("/doses/:id/missed", h.MarkMissed)
	g.GET("/patients/:id/doses", h.ListByPatient)
}

func (h *Handler) Record(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	treatmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid treatment id")
	}
	var in RecordInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	d, err := h.svc.Record(c.Request().Context(), actor, treatmentID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

type takenRequest struct {
	ActualTime *time.Time `json:"actual_time"`
}

func (h *Handler) MarkTaken(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid dose record id")
	}
	var in takenRequest
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	at := time.Time{}
	if in.ActualTime != nil {
		at = *in.ActualTime
	}
	d, err := h.svc.MarkTaken(c.Request().Context(), actor, id, at)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) MarkMissed(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid dose record id")
	}
	d, err := h.svc.MarkMissed(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListByTreatment(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	treatmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid treatment id")
	}
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	records, total, err := h.svc.ListByTreatment(c.Request().Context(), actor, treatmentID, f, pg.Limit, pg.Skip)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, pg))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid patient id")
	}
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	records, total, err := h.svc.ListByPatient(c.Request().Context(), actor, patientID, f, pg.Limit, pg.Skip)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, pg))
}

func filterFromQuery(c echo.Context) (ListFilter, error) {
	var f ListFilter
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, apperr.Validation("from must be RFC 3339")
		}
		f.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, apperr.Validation("to must be RFC 3339")
		}
		f.To = &t
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, apperr.InvalidDateRange("to must not be before from")
	}
	return f, nil
}
