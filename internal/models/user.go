package models

import "time"

// Role is the permission level of the current session's user.
type Role string

const (
	RoleGuest  Role = "guest"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar,omitempty"`
	Role     Role      `json:"role"`
	JoinDate time.Time `json:"joinDate"`
}
