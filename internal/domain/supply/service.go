package supply

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/platform/httperr"
)

// Service implements medical supply inventory.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, sup *Supply) (*Supply, error) {
	if sup.Name == "" {
		return nil, httperr.Validation("name is required")
	}
	if sup.Unit == "" {
		return nil, httperr.Validation("unit is required")
	}
	if sup.Quantity < 0 {
		return nil, httperr.Validation("quantity cannot be negative")
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		return nil, httperr.Internal(err)
	}
	return sup, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Supply, error) {
	sup, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("supply", id.String())
	}
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return sup, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, upd *Supply) (*Supply, error) {
	if upd.Name == "" {
		return nil, httperr.Validation("name is required")
	}
	if upd.Unit == "" {
		return nil, httperr.Validation("unit is required")
	}

	sup, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sup.Name = upd.Name
	sup.Category = upd.Category
	sup.Unit = upd.Unit
	sup.Notes = upd.Notes
	if err := s.repo.Update(ctx, sup); err != nil {
		return nil, httperr.Internal(err)
	}
	return sup, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return httperr.NotFound("supply", id.String())
	}
	if err != nil {
		return httperr.Internal(err)
	}
	return nil
}

// Adjust moves stock in or out. Withdrawing more than is on hand is a
// conflict, not a silent clamp.
func (s *Service) Adjust(ctx context.Context, id uuid.UUID, delta int) (*Supply, error) {
	if delta == 0 {
		return nil, httperr.Validation("delta cannot be zero")
	}

	sup, err := s.repo.Adjust(ctx, id, delta)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("supply", id.String())
	}
	if errors.Is(err, ErrInsufficientStock) {
		return nil, httperr.Conflict("supply %s does not have %d on hand", id, -delta)
	}
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return sup, nil
}

func (s *Service) List(ctx context.Context, category string, limit, offset int) ([]*Supply, int, error) {
	out, total, err := s.repo.List(ctx, category, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return out, total, nil
}
