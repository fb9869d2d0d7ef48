package rbac

// Role names. Keep these stable; they are stored in session state and carried in tokens.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// IsPrivileged reports whether role unlocks the administrative parts of the dashboard.
// The comparison is exact: "ADMIN" or " admin" are ordinary roles.
func IsPrivileged(role string) bool { return role == RoleAdmin }

// IsKnown reports whether role is one the dashboard assigns to users.
func IsKnown(role string) bool {
	switch role {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}
