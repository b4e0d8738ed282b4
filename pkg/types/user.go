package types

// Role represents the portal view a user is browsing as
type Role string

const (
	RolePatient   Role = "patient"
	RoleNavigator Role = "navigator"
	RoleAdmin     Role = "admin"
)

// ParseRole converts a raw role name into a Role
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RolePatient, RoleNavigator, RoleAdmin:
		return r, nil
	}
	return "", NewValidationError(ErrCodeInvalidRole, "unknown portal role", map[string]interface{}{
		"role": s,
	})
}

// Section is a navigable area of the portal
type Section struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// RoleView describes the navigation available to a role
type RoleView struct {
	Role     Role      `json:"role"`
	Home     string    `json:"home"`
	Sections []Section `json:"sections"`
}
