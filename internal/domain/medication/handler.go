package medication

import (
	"context"
	"net/http"
	"strconv"
	"strings"

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
	g.GET("/medications", h.List)
	g.POST("/medications", h.Create)
	g.GET("/medications/search", h.SearchNames)
	g.GET("/medications/:id", h.Get)
	g.PUT("/medications/:id", h.Update)
	g.DELETE("/medications/:id", h.Delete)
	g.GET("/medications/:id/interactions", h.Interactions)
	g.POST("/medications/:id/side-effects", h.AddSideEffect)
	g.DELETE("/medications/:id/side-effects", h.RemoveSideEffect)
	g.POST("/medications/:id/contraindications", h.AddContraindication)
	g.DELETE("/medications/:id/contraindications", h.RemoveContraindication)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	m, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid medication id")
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid medication id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	m, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid medication id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := ListFilter{
		Search: c.QueryParam("search"),
		Unit:   c.QueryParam("unit"),
	}
	meds, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Skip)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(meds, total, pg))
}

func (h *Handler) SearchNames(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	names, err := h.svc.SearchNames(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"names": names})
}

// Interactions checks the medication against a comma-separated "with" list
// of other catalog ids.
func (h *Handler) Interactions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid medication id")
	}

	var withIDs []uuid.UUID
	if raw := c.QueryParam("with"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			other, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				return apperr.Validation("invalid medication id in with parameter: %s", part)
			}
			withIDs = append(withIDs, other)
		}
	}

	interactions, err := h.svc.CheckInteractions(c.Request().Context(), id, withIDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"interactions": interactions})
}

type entryRequest struct {
	Entry string `json:"entry"`
}

func (h *Handler) AddSideEffect(c echo.Context) error {
	return h.listMutation(c, h.svc.AddSideEffect, http.StatusCreated)
}

func (h *Handler) RemoveSideEffect(c echo.Context) error {
	return h.listMutation(c, h.svc.RemoveSideEffect, http.StatusOK)
}

func (h *Handler) AddContraindication(c echo.Context) error {
	return h.listMutation(c, h.svc.AddContraindication, http.StatusCreated)
}

func (h *Handler) RemoveContraindication(c echo.Context) error {
	return h.listMutation(c, h.svc.RemoveContraindication, http.StatusOK)
}

func (h *Handler) listMutation(c echo.Context, op func(context.Context, uuid.UUID, string) (*Medication, error), status int) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid medication id")
	}
	var in entryRequest
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	m, err := op(c.Request().Context(), id, in.Entry)
	if err != nil {
		return err
	}
	return c.JSON(status, m)
}
