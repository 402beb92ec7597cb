package scheduling

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/platform/httperr"
)

// Slot statuses.
const (
	SlotAvailable = "available"
	SlotTaken     = "taken"
	SlotCompleted = "completed"
)

// Booking statuses.
const (
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Slot maps to the slot table: a provider's bookable time interval on a
// given date. At most one non-cancelled booking may reference a slot.
type Slot struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ProviderID uuid.UUID `db:"provider_id" json:"provider_id"`
	SlotDate   time.Time `db:"slot_date" json:"slot_date"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	Status     string    `db:"status" json:"status"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// TimeSlot renders the slot interval in the wire format "HH:mm - HH:mm".
func (sl *Slot) TimeSlot() string {
	return sl.StartTime + " - " + sl.EndTime
}

// Booking maps to the booking table. It owns an explicit reference to the
// slot it claimed; slot coordinates are denormalized for display only.
type Booking struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	ProviderID     uuid.UUID `db:"provider_id" json:"provider_id"`
	SlotID         uuid.UUID `db:"slot_id" json:"slot_id"`
	SlotDate       time.Time `db:"slot_date" json:"slot_date"`
	TimeSlot       string    `db:"time_slot" json:"time_slot"`
	Status         string    `db:"status" json:"status"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
	Venue          *string   `db:"venue" json:"venue,omitempty"`
	Reason         *string   `db:"reason" json:"reason,omitempty"`
	ServiceBooked  *string   `db:"service_booked" json:"service_booked,omitempty"`
	BookingMode    *string   `db:"booking_mode" json:"booking_mode,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ParseTimeSlot splits a "HH:mm - HH:mm" string into normalized start and
// end times. Both ends must parse as 24h clock times and start must precede
// end.
func ParseTimeSlot(s string) (start, end string, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return "", "", httperr.Validation("time slot %q must be in the form \"HH:mm - HH:mm\"", s)
	}

	startT, perr := time.Parse("15:04", strings.TrimSpace(parts[0]))
	if perr != nil {
		return "", "", httperr.Validation("invalid start time in time slot %q", s)
	}
	endT, perr := time.Parse("15:04", strings.TrimSpace(parts[1]))
	if perr != nil {
		return "", "", httperr.Validation("invalid end time in time slot %q", s)
	}
	if !startT.Before(endT) {
		return "", "", httperr.Validation("time slot %q must start before it ends", s)
	}

	return startT.Format("15:04"), endT.Format("15:04"), nil
}
