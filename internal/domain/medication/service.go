package medication

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/internal/platform/notify"
)

// Notifier delivers best-effort notifications.
type Notifier interface {
	Dispatch(evt notify.Event)
}

// Service implements prescriptions and medication reminders.
type Service struct {
	prescriptions PrescriptionRepository
	reminders     ReminderRepository
	notifier      Notifier
}

func NewService(prescriptions PrescriptionRepository, reminders ReminderRepository, notifier Notifier) *Service {
	return &Service{prescriptions: prescriptions, reminders: reminders, notifier: notifier}
}

func (s *Service) CreatePrescription(ctx context.Context, p *Prescription) (*Prescription, error) {
	if p.PatientID == uuid.Nil {
		return nil, httperr.Validation("patient id is required")
	}
	if p.PhysicianID == uuid.Nil {
		return nil, httperr.Validation("physician id is required")
	}
	if p.Medication == "" {
		return nil, httperr.Validation("medication is required")
	}
	if p.Dosage == "" {
		return nil, httperr.Validation("dosage is required")
	}

	p.Status = PrescriptionActive
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, httperr.Internal(err)
	}

	s.notifier.Dispatch(notify.Event{
		Kind:       "prescription.created",
		UserID:     p.PatientID,
		Title:      "New prescription",
		Body:       p.Medication + " " + p.Dosage + " has been prescribed for you.",
		Resource:   "prescription",
		ResourceID: p.ID,
	})
	return p, nil
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("prescription", id.String())
	}
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return p, nil
}

// SetPrescriptionStatus moves a prescription to completed or stopped.
// Active is not a target state; a prescription never reactivates.
func (s *Service) SetPrescriptionStatus(ctx context.Context, id uuid.UUID, status string) (*Prescription, error) {
	if status != PrescriptionCompleted && status != PrescriptionStopped {
		return nil, httperr.Validation("status must be completed or stopped")
	}

	p, err := s.GetPrescription(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == status {
		return p, nil
	}
	if p.Status != PrescriptionActive {
		return nil, httperr.Conflict("prescription %s is already %s", id, p.Status)
	}

	p.Status = status
	if err := s.prescriptions.Update(ctx, p); err != nil {
		return nil, httperr.Internal(err)
	}
	return p, nil
}

func (s *Service) ListPrescriptions(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Prescription, int, error) {
	out, total, err := s.prescriptions.List(ctx, patientID, status, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return out, total, nil
}

func (s *Service) CreateReminder(ctx context.Context, rem *Reminder) (*Reminder, error) {
	if rem.PatientID == uuid.Nil {
		return nil, httperr.Validation("patient id is required")
	}
	if rem.Medication == "" {
		return nil, httperr.Validation("medication is required")
	}
	if _, err := time.Parse("15:04", rem.RemindAt); err != nil {
		return nil, httperr.Validation("remind_at %q must be an HH:mm time", rem.RemindAt)
	}
	if rem.Frequency != FrequencyDaily && rem.Frequency != FrequencyWeekly {
		return nil, httperr.Validation("frequency must be daily or weekly")
	}
	if rem.PrescriptionID != nil {
		if _, err := s.GetPrescription(ctx, *rem.PrescriptionID); err != nil {
			return nil, err
		}
	}

	rem.Active = true
	if err := s.reminders.Create(ctx, rem); err != nil {
		return nil, httperr.Internal(err)
	}
	return rem, nil
}

func (s *Service) GetReminder(ctx context.Context, id uuid.UUID) (*Reminder, error) {
	rem, err := s.reminders.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("reminder", id.String())
	}
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return rem, nil
}

// SetReminderActive toggles a reminder without deleting its history.
func (s *Service) SetReminderActive(ctx context.Context, id uuid.UUID, active bool) (*Reminder, error) {
	rem, err := s.GetReminder(ctx, id)
	if err != nil {
		return nil, err
	}
	if rem.Active == active {
		return rem, nil
	}
	rem.Active = active
	if err := s.reminders.Update(ctx, rem); err != nil {
		return nil, httperr.Internal(err)
	}
	return rem, nil
}

func (s *Service) DeleteReminder(ctx context.Context, id uuid.UUID) error {
	err := s.reminders.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return httperr.NotFound("reminder", id.String())
	}
	if err != nil {
		return httperr.Internal(err)
	}
	return nil
}

func (s *Service) ListReminders(ctx context.Context, patientID uuid.UUID, activeOnly bool, limit, offset int) ([]*Reminder, int, error) {
	if patientID == uuid.Nil {
		return nil, 0, httperr.Validation("patient id is required")
	}
	out, total, err := s.reminders.ListByPatient(ctx, patientID, activeOnly, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return out, total, nil
}
