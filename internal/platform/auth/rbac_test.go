package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestAs(t *testing.T, role string, mw echo.MiddlewareFunc) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		ctx := context.WithValue(req.Context(), ActorKey, Actor{ID: "u", Username: role, Role: role})
		req = req.WithContext(ctx)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return h(c)
}

func TestRequireRole_Allows(t *testing.T) {
	if err := requestAs(t, RoleNurse, RequireRole(RoleNurse)); err != nil {
		t.Errorf("nurse rejected: %v", err)
	}
}

func TestRequireRole_AdminOverride(t *testing.T) {
	if err := requestAs(t, RoleAdmin, RequireRole(RoleDoctor, RoleEmbryologist)); err != nil {
		t.Errorf("admin rejected: %v", err)
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	err := requestAs(t, RoleReception, RequireRole(RoleDoctor, RoleEmbryologist))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	err := requestAs(t, "", RequireRole(RoleNurse))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestHasPageAccess(t *testing.T) {
	cases := []struct {
		role, page string
		want       bool
	}{
		{RoleReception, "registration", true},
		{RoleReception, "nursing", false},
		{RoleNurse, "nursing", true},
		{RoleCounselor, "counseling", true},
		{RoleDoctor, "treatment-plan", true},
		{RoleDoctor, "registration", false},
		{RoleEmbryologist, "embryology-lab", true},
		{RoleAdmin, "anything", true},
	}
	for _, tc := range cases {
		if got := HasPageAccess(tc.role, tc.page); got != tc.want {
			t.Errorf("HasPageAccess(%s, %s) = %v; want %v", tc.role, tc.page, got, tc.want)
		}
	}
}

func TestDashboardForRole(t *testing.T) {
	if got := DashboardForRole(RoleNurse); got != "nursing" {
		t.Errorf("nurse dashboard = %q", got)
	}
	if got := DashboardForRole("unknown"); got != "dashboard" {
		t.Errorf("unknown role dashboard = %q", got)
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range Roles {
		if !ValidRole(r) {
			t.Errorf("ValidRole(%q) = false", r)
		}
	}
	if ValidRole("janitor") {
		t.Error(`ValidRole("janitor") = true`)
	}
}
