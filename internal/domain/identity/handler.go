package identity

import (
	"errors"
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
	api.POST("/auth/login", h.Login)
	api.GET("/auth/users", h.ListUsers, auth.RequireRole(auth.RoleAdmin))
	api.GET("/auth/permissions", h.Permissions)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Username == "" || req.Password == "" || req.Role == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username, password and role are required")
	}
	u, token, err := h.svc.Authenticate(c.Request().Context(), req.Username, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loginResponse{User: u, Token: token})
}

func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if users == nil {
		users = []*User{}
	}
	return c.JSON(http.StatusOK, users)
}

type permissionsResponse struct {
	Pages     []string `json:"pages"`
	Dashboard string   `json:"dashboard"`
}

// Permissions tells the client shell which pages the authenticated role
// may open and where it lands after login.
func (h *Handler) Permissions(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, permissionsResponse{
		Pages:     auth.PagesForRole(actor.Role),
		Dashboard: auth.DashboardForRole(actor.Role),
	})
}
