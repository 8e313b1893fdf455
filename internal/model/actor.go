package model

import "github.com/google/uuid"

type Role string

const (
	RoleSchool  Role = "COLEGIO"
	RoleAuditor Role = "AUDITOR"
)

func (r Role) Valid() bool {
	return r == RoleSchool || r == RoleAuditor
}

// Actor is the authenticated caller. School users carry the school they belong to.
type Actor struct {
	UserID   uuid.UUID
	Role     Role
	SchoolID *uuid.UUID
}

func (a Actor) IsAuditor() bool {
	return a.Role == RoleAuditor
}

// CanAccess reports whether a may see or act on submissions of schoolID.
func (a Actor) CanAccess(schoolID uuid.UUID) bool {
	if a.IsAuditor() {
		return true
	}
	return a.Role == RoleSchool && a.SchoolID != nil && *a.SchoolID == schoolID
}
