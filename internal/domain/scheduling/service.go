package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/internal/platform/metrics"
	"github.com/carebridge/carebridge/internal/platform/notify"
)

// TxRunner executes fn inside a database transaction carried on the
// context. Production wiring uses db.WithTx; tests substitute a passthrough.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Notifier delivers best-effort notifications. Failures never affect the
// outcome of the operation that raised the event.
type Notifier interface {
	Dispatch(evt notify.Event)
}

// Service implements appointment booking and slot management.
type Service struct {
	slots    SlotRepository
	bookings BookingRepository
	tx       TxRunner
	notifier Notifier
	log      zerolog.Logger
}

func NewService(slots SlotRepository, bookings BookingRepository, tx TxRunner, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{slots: slots, bookings: bookings, tx: tx, notifier: notifier, log: log}
}

// BookRequest carries everything needed to claim a slot and record the
// booking against it.
type BookRequest struct {
	PatientID      uuid.UUID
	ProviderID     uuid.UUID
	Date           time.Time
	TimeSlot       string
	Specialization string
	Venue          string
	Reason         string
	ServiceBooked  string
	BookingMode    string
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Book claims the requested slot and creates a confirmed booking in one
// transaction. When several callers race for the same slot exactly one
// claim succeeds; the others fail with a conflict and write nothing.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Booking, error) {
	if req.PatientID == uuid.Nil {
		return nil, httperr.Validation("patient id is required")
	}
	if req.ProviderID == uuid.Nil {
		return nil, httperr.Validation("provider id is required")
	}
	if req.Date.IsZero() {
		return nil, httperr.Validation("appointment date is required")
	}
	start, end, err := ParseTimeSlot(req.TimeSlot)
	if err != nil {
		return nil, err
	}

	var booking *Booking
	txErr := s.tx(ctx, func(ctx context.Context) error {
		slot, err := s.slots.Claim(ctx, req.ProviderID, req.Date, start, end)
		if errors.Is(err, ErrSlotUnavailable) {
			_, ferr := s.slots.Find(ctx, req.ProviderID, req.Date, start, end)
			switch {
			case errors.Is(ferr, ErrNotFound):
				return httperr.NotFound("slot", req.TimeSlot+" on "+req.Date.Format("2006-01-02"))
			case ferr != nil:
				return httperr.Internal(ferr)
			}
			return httperr.Conflict("slot %s on %s is already taken", req.TimeSlot, req.Date.Format("2006-01-02"))
		}
		if err != nil {
			return httperr.Internal(err)
		}

		b := &Booking{
			PatientID:      req.PatientID,
			ProviderID:     req.ProviderID,
			SlotID:         slot.ID,
			SlotDate:       slot.SlotDate,
			TimeSlot:       slot.TimeSlot(),
			Status:         BookingConfirmed,
			Specialization: optional(req.Specialization),
			Venue:          optional(req.Venue),
			Reason:         optional(req.Reason),
			ServiceBooked:  optional(req.ServiceBooked),
			BookingMode:    optional(req.BookingMode),
		}
		if err := s.bookings.Create(ctx, b); err != nil {
			return httperr.Internal(err)
		}
		booking = b
		return nil
	})
	if txErr != nil {
		metrics.BookingsTotal.WithLabelValues(bookingOutcome(txErr)).Inc()
		return nil, txErr
	}

	metrics.BookingsTotal.WithLabelValues("booked").Inc()
	s.notifier.Dispatch(notify.Event{
		Kind:       "booking.created",
		UserID:     booking.PatientID,
		Title:      "Appointment confirmed",
		Body:       "Your appointment on " + booking.SlotDate.Format("2006-01-02") + " at " + booking.TimeSlot + " is confirmed.",
		Resource:   "booking",
		ResourceID: booking.ID,
	})
	return booking, nil
}

func bookingOutcome(err error) string {
	switch {
	case httperr.IsKind(err, httperr.KindConflict):
		return "conflict"
	case httperr.IsKind(err, httperr.KindNotFound):
		return "not_found"
	case httperr.IsKind(err, httperr.KindValidation):
		return "invalid"
	default:
		return "error"
	}
}

// Complete marks a confirmed booking completed and retires its slot so the
// interval cannot be booked again. Completing an already completed booking
// is a no-op; completing a cancelled one is a conflict.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking *Booking
	txErr := s.tx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetByIDForUpdate(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound("booking", id.String())
		}
		if err != nil {
			return httperr.Internal(err)
		}

		switch b.Status {
		case BookingCompleted:
			booking = b
			return nil
		case BookingCancelled:
			return httperr.Conflict("booking %s is cancelled and cannot be completed", id)
		}

		if err := s.bookings.UpdateStatus(ctx, id, BookingCompleted); err != nil {
			return httperr.Internal(err)
		}
		if err := s.slots.SetStatus(ctx, b.SlotID, SlotCompleted); err != nil {
			return httperr.Internal(err)
		}
		b.Status = BookingCompleted
		booking = b
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notifier.Dispatch(notify.Event{
		Kind:       "booking.completed",
		UserID:     booking.PatientID,
		Title:      "Appointment completed",
		Body:       "Your appointment on " + booking.SlotDate.Format("2006-01-02") + " has been marked completed.",
		Resource:   "booking",
		ResourceID: booking.ID,
	})
	return booking, nil
}

// Cancel marks a confirmed booking cancelled and releases its slot back to
// available for rebooking. Cancelling twice is a no-op; cancelling a
// completed booking is a conflict.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking *Booking
	txErr := s.tx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetByIDForUpdate(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound("booking", id.String())
		}
		if err != nil {
			return httperr.Internal(err)
		}

		switch b.Status {
		case BookingCancelled:
			booking = b
			return nil
		case BookingCompleted:
			return httperr.Conflict("booking %s is completed and cannot be cancelled", id)
		}

		if err := s.bookings.UpdateStatus(ctx, id, BookingCancelled); err != nil {
			return httperr.Internal(err)
		}
		if err := s.slots.SetStatus(ctx, b.SlotID, SlotAvailable); err != nil {
			return httperr.Internal(err)
		}
		b.Status = BookingCancelled
		booking = b
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notifier.Dispatch(notify.Event{
		Kind:       "booking.cancelled",
		UserID:     booking.PatientID,
		Title:      "Appointment cancelled",
		Body:       "Your appointment on " + booking.SlotDate.Format("2006-01-02") + " at " + booking.TimeSlot + " has been cancelled.",
		Resource:   "booking",
		ResourceID: booking.ID,
	})
	return booking, nil
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("booking", id.String())
	}
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return b, nil
}

func (s *Service) ListBookings(ctx context.Context, filter BookingFilter, limit, offset int) ([]*Booking, int, error) {
	bookings, total, err := s.bookings.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return bookings, total, nil
}

// CreateSlot publishes a provider slot. Coordinates are validated before
// the store is touched; duplicates surface as a conflict through the
// table's unique constraint.
func (s *Service) CreateSlot(ctx context.Context, providerID uuid.UUID, date time.Time, timeSlot, notes string) (*Slot, error) {
	if providerID == uuid.Nil {
		return nil, httperr.Validation("provider id is required")
	}
	if date.IsZero() {
		return nil, httperr.Validation("slot date is required")
	}
	start, end, err := ParseTimeSlot(timeSlot)
	if err != nil {
		return nil, err
	}

	if existing, ferr := s.slots.Find(ctx, providerID, date, start, end); ferr == nil && existing != nil {
		return nil, httperr.Conflict("slot %s on %s already exists", timeSlot, date.Format("2006-01-02"))
	}

	slot := &Slot{
		ProviderID: providerID,
		SlotDate:   date,
		StartTime:  start,
		EndTime:    end,
		Status:     SlotAvailable,
		Notes:      optional(notes),
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		if errors.Is(err, ErrSlotExists) {
			return nil, httperr.Conflict("slot %s on %s already exists", timeSlot, date.Format("2006-01-02"))
		}
		return nil, httperr.Internal(err)
	}
	return slot, nil
}

func (s *Service) GetSlot(ctx context.Context, id uuid.UUID) (*Slot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("slot", id.String())
	}
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return slot, nil
}

// DeleteSlot removes an unbooked slot. Taken and completed slots are
// anchored by bookings and refuse deletion.
func (s *Service) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	slot, err := s.slots.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return httperr.NotFound("slot", id.String())
	}
	if err != nil {
		return httperr.Internal(err)
	}
	if slot.Status != SlotAvailable {
		return httperr.Conflict("slot %s is %s and cannot be deleted", id, slot.Status)
	}
	if err := s.slots.Delete(ctx, id); err != nil {
		return httperr.Internal(err)
	}
	return nil
}

// ListAvailability returns a provider's open slots from the given date
// onward.
func (s *Service) ListAvailability(ctx context.Context, providerID uuid.UUID, from time.Time, limit, offset int) ([]*Slot, int, error) {
	if providerID == uuid.Nil {
		return nil, 0, httperr.Validation("provider id is required")
	}
	slots, total, err := s.slots.ListAvailable(ctx, providerID, from, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return slots, total, nil
}
