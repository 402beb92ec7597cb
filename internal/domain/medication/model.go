package medication

import (
	"time"

	"github.com/google/uuid"
)

// Prescription statuses.
const (
	PrescriptionActive    = "active"
	PrescriptionCompleted = "completed"
	PrescriptionStopped   = "stopped"
)

// Reminder frequencies.
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// Prescription maps to the prescription table.
type Prescription struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	PhysicianID  uuid.UUID `db:"physician_id" json:"physician_id"`
	Medication   string    `db:"medication" json:"medication"`
	Dosage       string    `db:"dosage" json:"dosage"`
	Instructions *string   `db:"instructions" json:"instructions,omitempty"`
	Status       string    `db:"status" json:"status"`
	IssuedAt     time.Time `db:"issued_at" json:"issued_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Reminder maps to the medication_reminder table. RemindAt is a wall-clock
// "HH:mm" time in the patient's day.
type Reminder struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	PrescriptionID *uuid.UUID `db:"prescription_id" json:"prescription_id,omitempty"`
	Medication     string     `db:"medication" json:"medication"`
	RemindAt       string     `db:"remind_at" json:"remind_at"`
	Frequency      string     `db:"frequency" json:"frequency"`
	Active         bool       `db:"active" json:"active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
