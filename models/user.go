package models

// Role is the coarse identity category assigned to every console user.
// The set is closed: anything outside it parses to RoleUnknown, which has
// no module access and no owner bypass.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleSales   Role = "sales"
	RoleCare    Role = "care"
	RoleViewer  Role = "viewer"
	RoleUnknown Role = ""
)

// ParseRole maps a raw role string from the upstream API onto the closed
// enumeration. Unrecognized values fail closed to RoleUnknown.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleOwner, RoleAdmin, RoleSales, RoleCare, RoleViewer:
		return Role(s)
	default:
		return RoleUnknown
	}
}

// IsOwner returns true for the distinguished super-role that bypasses all
// capability checks.
func (r Role) IsOwner() bool {
	return r == RoleOwner
}

// User represents the user record returned by the upstream TMS API.
// Permissions holds capability codes of the form "module:action"
// (e.g. "client:create"); matching is exact membership, never prefix.
type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Mobile      string   `json:"mobile,omitempty"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	IsActive    bool     `json:"isActive"`
}

// ParsedRole returns the user's role as a member of the closed enum.
func (u *User) ParsedRole() Role {
	return ParseRole(u.Role)
}

// HasPermission reports whether code is an exact member of the user's
// permission set. It does not apply the owner bypass; use access.Can for
// the full evaluation rule.
func (u *User) HasPermission(code string) bool {
	for _, p := range u.Permissions {
		if p == code {
			return true
		}
	}
	return false
}
