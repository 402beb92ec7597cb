package medication

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("medication: not found")

// PrescriptionRepository is the persistence boundary for prescriptions.
type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	List(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Prescription, int, error)
}

// ReminderRepository is the persistence boundary for medication reminders.
type ReminderRepository interface {
	Create(ctx context.Context, r *Reminder) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reminder, error)
	Update(ctx context.Context, r *Reminder) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, activeOnly bool, limit, offset int) ([]*Reminder, int, error)
}
