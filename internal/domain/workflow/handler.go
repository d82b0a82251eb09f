package workflow

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arogya/acms/internal/domain/patient"
	"github.com/arogya/acms/internal/domain/phase"
	"github.com/arogya/acms/internal/domain/treatmentplan"
	"github.com/arogya/acms/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// selectRoles maps each selectable phase to the roles allowed to pull
// patients into that department.
var selectRoles = map[phase.Phase][]string{
	phase.Nursing:      {auth.RoleNurse},
	phase.Counseling:   {auth.RoleCounselor},
	phase.Consultation: {auth.RoleDoctor},
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := auth.RequireRole(auth.RoleReception, auth.RoleNurse, auth.RoleCounselor,
		auth.RoleDoctor, auth.RoleEmbryologist)

	api.GET("/patients/:id/phase-statuses", h.PhaseStatuses, staff)
	api.POST("/patients/:id/select/:phase", h.Select, staff)
	api.POST("/patients/:id/counseling/advance", h.AdvanceCounseling, auth.RequireRole(auth.RoleCounselor))
	api.POST("/patients/:id/phases/nursing/complete", h.CompleteNursing, auth.RequireRole(auth.RoleNurse))
	api.POST("/patients/:id/phases/counseling/complete", h.CompleteCounseling, auth.RequireRole(auth.RoleCounselor))
	api.POST("/patients/:id/phases/consultation/complete", h.CompleteConsultation, auth.RequireRole(auth.RoleDoctor))
}

func (h *Handler) PhaseStatuses(c echo.Context) error {
	states, err := h.svc.PhaseStatuses(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err.Error() == "patient not found" {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, states)
}

func (h *Handler) Select(c echo.Context) error {
	ph, ok := phase.Parse(c.Param("phase"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown phase")
	}

	actor, _ := auth.ActorFromContext(c.Request().Context())
	if actor.Role != auth.RoleAdmin && !roleAllowed(actor.Role, selectRoles[ph]) {
		return echo.NewHTTPError(http.StatusForbidden, "insufficient role for this department")
	}

	p, err := h.svc.SelectForPhase(c.Request().Context(), c.Param("id"), ph)
	if err != nil {
		if err.Error() == "patient not found" {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

type advanceRequest struct {
	Tab string `json:"tab"`
}

func (h *Handler) AdvanceCounseling(c echo.Context) error {
	var req advanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.AdvanceCounseling(c.Request().Context(), c.Param("id"), req.Tab)
	if err != nil {
		if err.Error() == "patient not found" {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CompleteNursing(c echo.Context) error {
	return h.completePhase(c, func(ctx echo.Context, form *patient.Patch, actor auth.Actor) error {
		return h.svc.CompleteNursing(ctx.Request().Context(), ctx.Param("id"), form, actor)
	})
}

func (h *Handler) CompleteCounseling(c echo.Context) error {
	return h.completePhase(c, func(ctx echo.Context, form *patient.Patch, actor auth.Actor) error {
		return h.svc.CompleteCounseling(ctx.Request().Context(), ctx.Param("id"), form, actor)
	})
}

// consultationRequest wraps the consultation form with the optional
// treatment decision recorded alongside it.
type consultationRequest struct {
	patient.Patch
	TreatmentDecision *treatmentplan.Decision `json:"treatmentDecision,omitempty"`
}

func (h *Handler) CompleteConsultation(c echo.Context) error {
	var req consultationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor, _ := auth.ActorFromContext(c.Request().Context())
	if err := h.svc.CompleteConsultation(c.Request().Context(), c.Param("id"),
		&req.Patch, req.TreatmentDecision, actor); err != nil {
		if err.Error() == "patient not found" {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) completePhase(c echo.Context, run func(echo.Context, *patient.Patch, auth.Actor) error) error {
	var form patient.Patch
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor, _ := auth.ActorFromContext(c.Request().Context())
	if err := run(c, &form, actor); err != nil {
		if err.Error() == "patient not found" {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
