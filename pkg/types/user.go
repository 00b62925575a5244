package types

import "time"

// User roles. Project managers edit their own local store and sync; only
// associate directors run the merge processor.
const (
	RoleProjectManager    = "Project Manager"
	RoleAssociateDirector = "Associate Director"
)

// ValidRole reports whether r is a recognized role.
func ValidRole(r string) bool {
	return r == RoleProjectManager || r == RoleAssociateDirector
}

// User is a master store account row. PasswordHash is a bcrypt hash and is
// never serialized.
type User struct {
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
