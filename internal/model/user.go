// Package model defines domain entities for the application.
package model

import "time"

// Role is the closed set of user roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole normalizes a stored role value. Blank or unknown values
// default to RoleUser so legacy rows remain usable.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// IsValid checks if the role is one of the known values.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// CanAccessUnowned reports whether the role may access records that have
// no owner assigned. This is a legacy-migration affordance for admins,
// not a general bypass: owned records are never reachable through it.
func (r Role) CanAccessUnowned() bool {
	return r == RoleAdmin
}

// User represents an identity record for authentication.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
