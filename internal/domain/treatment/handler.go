package treatment

import (
	"net/http"

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
	g.GET("/treatments", h.List)
	g.POST("/treatments", h.Create)
	g.GET("/treatments/:id", h.Get)
	g.PUT("/treatments/:id", h.Update)
	g.DELETE("/treatments/:id", h.Cancel)
	g.POST("/treatments/:id/activate", h.Activate)
	g.POST("/treatments/:id/suspend", h.Suspend)
	g.POST("/treatments/:id/complete", h.Complete)

	g.GET("/treatments/:id/alarms", h.ListAlarms)
	g.POST("/treatments/:id/alarms", h.CreateAlarm)
	g.PUT("/treatments/:id/alarms/:alarmId", h.UpdateAlarm)
	g.DELETE("/treatments/:id/alarms/:alarmId", h.DeleteAlarm)
	g.POST("/treatments/:id/alarms/sync", h.SyncAlarms)

	g.GET("/patients/:id/treatments", h.ListByPatient)
}

func (h *Handler) Create(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	t, err := h.svc.Create(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) Get(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid treatment id")
	}
	t, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Update(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid treatment id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	t, err := h.svc.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) List(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	pg := pagination.FromContext(c)

	var f ListFilter
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperr.Validation("invalid patient_id filter")
		}
		f.PatientID = id
	}
	if v := c.QueryParam("medication_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperr.Validation("invalid medication_id filter")
		}
		f.MedicationID = id
	}
	f.Status = c.QueryParam("status")

	treatments, total, err := h.svc.List(c.Request().Context(), actor, f, pg.Limit, pg.Skip)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(treatments, total, pg))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid patient id")
	}
	pg := pagination.FromContext(c)
	treatments, total, err := h.svc.ListByPatient(c.Request().Context(), actor, patientID, pg.Limit, pg.Skip)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(treatments, total, pg))
}

func (h *Handler) Activate(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid treatment id")
	}
	t, err := h.svc.Activate(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

type suspendRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Suspend(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid treatment id")
	}
	var in suspendRequest
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	t, err := h.svc.Suspend(c.Request().Context(), actor, id, in.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

type completeRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) Complete(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid treatment id")
	}
	var in completeRequest
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	t, err := h.svc.Complete(c.Request().Context(), actor, id, in.Notes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Cancel(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid treatment id")
	}
	t, err := h.svc.Cancel(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// -- Alarms --

func (h *Handler) ListAlarms(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid treatment id")
	}
	alarms, err := h.svc.ListAlarms(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": alarms})
}

func (h *Handler) CreateAlarm(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid treatment id")
	}
	var in AlarmInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	a, err := h.svc.CreateAlarm(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAlarm(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid treatment id")
	}
	alarmID, err := uuid.Parse(c.Param("alarmId"))
	if err != nil {
		return apperr.Validation("invalid alarm id")
	}
	var in AlarmInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	a, err := h.svc.UpdateAlarm(c.Request().Context(), actor, id, alarmID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAlarm(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid treatment id")
	}
	alarmID, err := uuid.Parse(c.Param("alarmId"))
	if err != nil {
		return apperr.Validation("invalid alarm id")
	}
	if err := h.svc.DeleteAlarm(c.Request().Context(), actor, id, alarmID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type syncRequest struct {
	Alarms []AlarmInput `json:"alarms"`
}

func (h *Handler) SyncAlarms(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid treatment id")
	}
	var in syncRequest
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	alarms, err := h.svc.SyncAlarms(c.Request().Context(), actor, id, in.Alarms)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": alarms})
}
