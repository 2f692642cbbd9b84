package patient

import (
	"context"
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
	g.GET("/patients", h.List)
	g.POST("/patients", h.Create)
	g.GET("/patients/:id", h.Get)
	g.PUT("/patients/:id", h.Update)
	g.DELETE("/patients/:id", h.Delete)
	g.POST("/patients/:id/medical-history", h.AddHistory)
	g.DELETE("/patients/:id/medical-history", h.RemoveHistory)
	g.POST("/patients/:id/allergies", h.AddAllergy)
	g.DELETE("/patients/:id/allergies", h.RemoveAllergy)
}

func (h *Handler) Create(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, err := h.svc.Create(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid patient id")
	}
	p, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid patient id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, err := h.svc.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid patient id")
	}
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) List(c echo.Context) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	f := ListFilter{
		Search: c.QueryParam("search"),
		Gender: c.QueryParam("gender"),
	}
	patients, total, err := h.svc.List(c.Request().Context(), actor, f, pg.Limit, pg.Skip)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg))
}

type entryRequest struct {
	Entry string `json:"entry"`
}

func (h *Handler) AddHistory(c echo.Context) error {
	return h.listMutation(c, h.svc.AddHistoryEntry, http.StatusCreated)
}

func (h *Handler) RemoveHistory(c echo.Context) error {
	return h.listMutation(c, h.svc.RemoveHistoryEntry, http.StatusOK)
}

func (h *Handler) AddAllergy(c echo.Context) error {
	return h.listMutation(c, h.svc.AddAllergy, http.StatusCreated)
}

func (h *Handler) RemoveAllergy(c echo.Context) error {
	return h.listMutation(c, h.svc.RemoveAllergy, http.StatusOK)
}

func (h *Handler) listMutation(c echo.Context, op func(context.Context, auth.Identity, uuid.UUID, string) (*Patient, error), status int) error {
	actor, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid patient id")
	}
	var in entryRequest
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, err := op(c.Request().Context(), actor, id, in.Entry)
	if err != nil {
		return err
	}
	return c.JSON(status, p)
}
