package identity

import (
	"time"

	"github.com/google/uuid"
)

// Roles a user may hold.
const (
	RolePatient   = "patient"
	RolePhysician = "physician"
	RoleDietician = "dietician"
	RoleFamily    = "family"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RolePatient, RolePhysician, RoleDietician, RoleFamily:
		return true
	}
	return false
}

// User maps to the users table. Family members carry the id of the patient
// they act for.
type User struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Email     string     `db:"email" json:"email"`
	Name      string     `db:"name" json:"name"`
	Role      string     `db:"role" json:"role"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	PatientID *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
