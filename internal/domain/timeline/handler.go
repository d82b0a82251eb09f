package timeline

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arogya/acms/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := auth.RequireRole(auth.RoleReception, auth.RoleNurse, auth.RoleCounselor,
		auth.RoleDoctor, auth.RoleEmbryologist)

	api.GET("/patients/:id/timeline", h.List, staff)
	api.POST("/patients/:id/timeline", h.Append, staff)
}

func (h *Handler) List(c echo.Context) error {
	entries, err := h.svc.ListByPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) Append(c echo.Context) error {
	var e Entry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e.PatientID = c.Param("id")
	if e.CreatedBy == "" {
		if actor, ok := auth.ActorFromContext(c.Request().Context()); ok {
			e.CreatedBy = actor.Attribution()
		}
	}
	if err := h.svc.Append(c.Request().Context(), &e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}
