package model

import "time"

// Role defines access level of an account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents a registered customer or administrator.
type User struct {
	ID           int64
	Email        string
	Name         string
	Phone        string
	Avatar       string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// IsAdmin reports whether the user may use the admin console.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
