package alert

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
	g.GET("/patients/:id/alerts", h.ListByPatient)
	g.GET("/alerts/unread-count", h.UnreadCount)
	g.POST("/alerts/:id/read", h.MarkRead)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/alerts", h.Create)
}

func (h *Handler) Create(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	a, err := h.svc.Create(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid patient id")
	}
	pg := pagination.FromContext(c)
	unreadOnly := c.QueryParam("unread") == "true"
	alerts, total, err := h.svc.ListByPatient(c.Request().Context(), actor, patientID, unreadOnly, pg.Limit, pg.Skip)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(alerts, total, pg))
}

func (h *Handler) UnreadCount(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	count, err := h.svc.UnreadCount(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"unread": count})
}

func (h *Handler) MarkRead(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid alert id")
	}
	a, err := h.svc.MarkRead(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}
