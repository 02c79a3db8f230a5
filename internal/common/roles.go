package common

import "github.com/google/uuid"

const (
	RoleStudent    = "student"
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
)

// IsValidRole reports whether role is one of the known account roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleAdmin, RoleSupervisor:
		return true
	}
	return false
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID     uuid.UUID
	Role       string
	Department string
}

func (a Actor) IsAdmin() bool      { return a.Role == RoleAdmin }
func (a Actor) IsSupervisor() bool { return a.Role == RoleSupervisor }

// SystemActor is used by background jobs that act with admin rights.
var SystemActor = Actor{UserID: uuid.Nil, Role: RoleAdmin}
