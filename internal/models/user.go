package models

import "time"

// Roles
const (
	RoleOperator = "operator"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// UserAccount is an account in the station user directory.
type UserAccount struct {
	Username          string     `json:"username"`
	PasswordHash      string     `json:"-"`
	Role              string     `json:"role"`
	Locked            bool       `json:"locked"`
	LockedAt          *time.Time `json:"locked_at,omitempty"`
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
