package treatmentplan

import (
	"net/http"

	"github.com/google/uuid"
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
	lab := auth.RequireRole(auth.RoleDoctor, auth.RoleEmbryologist)

	api.GET("/treatment-plans", h.List, staff)
	api.GET("/treatment-plans/templates", h.Templates, staff)
	api.GET("/treatment-plans/board", h.Board, staff)
	api.POST("/treatment-plans", h.Create, lab)
	api.PUT("/treatment-plans/:id", h.Update, lab)
	api.POST("/treatment-plans/phase-status", h.UpdatePhaseStatus, lab)
	api.GET("/treatment-plans/:id/phase-statuses", h.PhaseStatuses, staff)
}

func (h *Handler) Create(c echo.Context) error {
	var p Plan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if p.CreatedBy == "" {
		if actor, ok := auth.ActorFromContext(c.Request().Context()); ok {
			actorRef := actor.ID
			if actorRef == "" {
				actorRef = actor.Attribution()
			}
			p.CreatedBy = actorRef
		}
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) List(c echo.Context) error {
	patientID := c.QueryParam("patient")
	if patientID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient query parameter is required")
	}
	plans, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if plans == nil {
		plans = []*Plan{}
	}
	return c.JSON(http.StatusOK, plans)
}

func (h *Handler) Templates(c echo.Context) error {
	return c.JSON(http.StatusOK, Templates())
}

func (h *Handler) Board(c echo.Context) error {
	items, err := h.svc.Board(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}
	var patch Patch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Update(c.Request().Context(), id, &patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "treatment plan not found")
	}
	return c.JSON(http.StatusOK, p)
}

type phaseStatusRequest struct {
	PatientID string `json:"patientId"`
	PhaseStatus
}

func (h *Handler) UpdatePhaseStatus(c echo.Context) error {
	var req phaseStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient id is required")
	}
	actor, _ := auth.ActorFromContext(c.Request().Context())
	if err := h.svc.UpdatePhaseStatus(c.Request().Context(), req.PatientID, &req.PhaseStatus, actor); err != nil {
		if err.Error() == "treatment plan not found" {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, req.PhaseStatus)
}

func (h *Handler) PhaseStatuses(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}
	statuses, err := h.svc.PhaseStatusesByPlan(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if statuses == nil {
		statuses = []*PhaseStatus{}
	}
	return c.JSON(http.StatusOK, statuses)
}
