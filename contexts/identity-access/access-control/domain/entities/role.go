package entities

import "time"

// Role is the single capability tag an account may ever hold.
// An account keeps its first role for the life of the system.
type Role string

const (
	RoleNone        Role = ""
	RoleAdmin       Role = "admin"
	RoleUser        Role = "user"
	RoleInstance    Role = "instance"
	RoleDistributor Role = "distributor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleInstance, RoleDistributor:
		return true
	default:
		return false
	}
}

// RoleGrant is the audit record behind a role assignment.
type RoleGrant struct {
	Account    string
	Role       Role
	AssignedBy string
	AssignedAt time.Time
}
