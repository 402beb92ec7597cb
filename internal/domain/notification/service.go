package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/internal/platform/notify"
)

// Service implements the in-app notification inbox.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	if userID == uuid.Nil {
		return nil, 0, httperr.Validation("user id is required")
	}
	out, total, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return out, total, nil
}

// MarkRead is idempotent: reading an already read notification succeeds.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error) {
	err := s.repo.MarkRead(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("notification", id.String())
	}
	if err != nil {
		return nil, httperr.Internal(err)
	}
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, httperr.Validation("user id is required")
	}
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, httperr.Internal(err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return httperr.NotFound("notification", id.String())
	}
	if err != nil {
		return httperr.Internal(err)
	}
	return nil
}

// StorePublisher adapts the repository to the event sink interface so
// dispatched events also land in the user's inbox.
type StorePublisher struct {
	repo Repository
}

func NewStorePublisher(repo Repository) *StorePublisher {
	return &StorePublisher{repo: repo}
}

func (p *StorePublisher) Publish(ctx context.Context, evt notify.Event) error {
	if evt.UserID == uuid.Nil {
		return nil
	}
	return p.repo.Create(ctx, &Notification{
		UserID:    evt.UserID,
		Kind:      evt.Kind,
		Title:     evt.Title,
		Body:      evt.Body,
		CreatedAt: evt.OccurredAt,
	})
}

func (p *StorePublisher) Close() error { return nil }
