package session

// Role is the user's platform role
type Role = string

const (
	// RoleActivist is an activist / legal-aid seeker account
	RoleActivist Role = "activist"
	// RoleLawyer is a pro-bono lawyer account
	RoleLawyer Role = "lawyer"
	// RoleAdmin is a platform administrator account
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func IsValidRole(r Role) bool {
	switch r {
	case RoleActivist, RoleLawyer, RoleAdmin:
		return true
	default:
		return false
	}
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []Role {
	return []Role{
		RoleActivist,
		RoleLawyer,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a Role
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, IsValidRole(role)
}

// RoleIn reports whether role is in the allowed set. An empty set
// allows every role.
func RoleIn(role Role, allowed []Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}
