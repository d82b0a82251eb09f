package auth

// Clinic staff roles.
const (
	RoleAdmin        = "admin"
	RoleReception    = "reception"
	RoleNurse        = "nurse"
	RoleCounselor    = "counselor"
	RoleDoctor       = "doctor"
	RoleEmbryologist = "embryologist"
)

// Roles lists every known role.
var Roles = []string{
	RoleAdmin, RoleReception, RoleNurse, RoleCounselor, RoleDoctor, RoleEmbryologist,
}

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// pagePermissions maps each role to the client sections it may open.
// Admin is handled by the wildcard.
var pagePermissions = map[string][]string{
	RoleReception:    {"dashboard", "registration", "appointments", "patient-summary"},
	RoleNurse:        {"nursing", "patient-summary"},
	RoleCounselor:    {"counseling", "patient-summary"},
	RoleDoctor:       {"consultation", "treatment-plan", "embryology-lab", "patient-summary"},
	RoleEmbryologist: {"treatment-plan", "embryology-lab", "patient-summary"},
	RoleAdmin:        {"*"},
}

var dashboards = map[string]string{
	RoleReception:    "dashboard",
	RoleNurse:        "nursing",
	RoleCounselor:    "counseling",
	RoleDoctor:       "consultation",
	RoleEmbryologist: "embryology-lab",
	RoleAdmin:        "dashboard",
}

// PagesForRole returns the sections the role may access.
func PagesForRole(role string) []string {
	return pagePermissions[role]
}

// HasPageAccess reports whether the role may open the given section.
func HasPageAccess(role, page string) bool {
	for _, p := range pagePermissions[role] {
		if p == "*" || p == page {
			return true
		}
	}
	return false
}

// DashboardForRole returns the landing section for a role. Unknown roles
// land on the dashboard.
func DashboardForRole(role string) string {
	if d, ok := dashboards[role]; ok {
		return d
	}
	return "dashboard"
}
