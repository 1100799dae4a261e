package user

import "time"

// Role classifies a user at the account level. Administrators are exempt from
// automatic membership removal during project manager reassignment.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User represents an authenticated identity supplied by the surrounding
// auth layer. The core trusts it as already authenticated.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
}

// IsAdmin reports whether the user holds an administrative role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
