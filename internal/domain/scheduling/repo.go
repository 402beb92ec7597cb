package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("scheduling: not found")

// ErrSlotUnavailable is returned by Claim when the conditional update
// matched no row, either because the slot does not exist or because it is
// no longer available. Callers distinguish the two with Find.
var ErrSlotUnavailable = errors.New("scheduling: slot unavailable")

// ErrSlotExists is returned by Create when the slot's coordinates collide
// with an existing row on the table's unique constraint.
var ErrSlotExists = errors.New("scheduling: slot already exists")

// SlotRepository is the persistence boundary for provider slots.
type SlotRepository interface {
	Create(ctx context.Context, slot *Slot) error
	GetByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	// Find looks a slot up by its natural coordinates regardless of status.
	Find(ctx context.Context, providerID uuid.UUID, date time.Time, start, end string) (*Slot, error)
	// Claim atomically moves a slot from available to taken and returns it.
	// The transition is a single conditional update; under concurrent
	// callers exactly one succeeds and the rest get ErrSlotUnavailable.
	Claim(ctx context.Context, providerID uuid.UUID, date time.Time, start, end string) (*Slot, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	ListAvailable(ctx context.Context, providerID uuid.UUID, from time.Time, limit, offset int) ([]*Slot, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BookingRepository is the persistence boundary for bookings.
type BookingRepository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	// GetByIDForUpdate locks the booking row for the duration of the
	// surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	List(ctx context.Context, filter BookingFilter, limit, offset int) ([]*Booking, int, error)
}

// BookingFilter narrows List results. Zero values mean no constraint.
type BookingFilter struct {
	PatientID  uuid.UUID
	ProviderID uuid.UUID
	Status     string
}
