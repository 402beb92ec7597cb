package followup

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/internal/platform/notify"
)

// Notifier delivers best-effort notifications.
type Notifier interface {
	Dispatch(evt notify.Event)
}

// Service implements follow-up scheduling.
type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) Create(ctx context.Context, f *FollowUp) (*FollowUp, error) {
	if f.PatientID == uuid.Nil {
		return nil, httperr.Validation("patient id is required")
	}
	if f.ProviderID == uuid.Nil {
		return nil, httperr.Validation("provider id is required")
	}
	if f.DueDate.IsZero() {
		return nil, httperr.Validation("due date is required")
	}

	f.Status = StatusPending
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, httperr.Internal(err)
	}

	s.notifier.Dispatch(notify.Event{
		Kind:       "followup.created",
		UserID:     f.PatientID,
		Title:      "Follow-up scheduled",
		Body:       "A follow-up is due on " + f.DueDate.Format("2006-01-02") + ".",
		Resource:   "follow_up",
		ResourceID: f.ID,
	})
	return f, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*FollowUp, error) {
	f, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("follow-up", id.String())
	}
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return f, nil
}

// SetStatus moves a pending follow-up to done or cancelled. Terminal
// states are sticky: repeating the same target is a no-op, crossing over
// is a conflict.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*FollowUp, error) {
	if status != StatusDone && status != StatusCancelled {
		return nil, httperr.Validation("status must be done or cancelled")
	}

	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status == status {
		return f, nil
	}
	if f.Status != StatusPending {
		return nil, httperr.Conflict("follow-up %s is already %s", id, f.Status)
	}

	f.Status = status
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, httperr.Internal(err)
	}
	return f, nil
}

func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, f *FollowUp) (*FollowUp, error) {
	if f.DueDate.IsZero() {
		return nil, httperr.Validation("due date is required")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusPending {
		return nil, httperr.Conflict("follow-up %s is %s and cannot be rescheduled", id, existing.Status)
	}

	existing.DueDate = f.DueDate
	existing.Notes = f.Notes
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, httperr.Internal(err)
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return httperr.NotFound("follow-up", id.String())
	}
	if err != nil {
		return httperr.Internal(err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*FollowUp, int, error) {
	out, total, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return out, total, nil
}
