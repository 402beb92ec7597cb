package followup

import (
	"time"

	"github.com/google/uuid"
)

// Follow-up statuses.
const (
	StatusPending   = "pending"
	StatusDone      = "done"
	StatusCancelled = "cancelled"
)

// FollowUp maps to the follow_up table. BookingID links back to the
// appointment that prompted the follow-up when there is one.
type FollowUp struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	ProviderID uuid.UUID  `db:"provider_id" json:"provider_id"`
	BookingID  *uuid.UUID `db:"booking_id" json:"booking_id,omitempty"`
	DueDate    time.Time  `db:"due_date" json:"due_date"`
	Notes      *string    `db:"notes" json:"notes,omitempty"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
