package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/platform/httperr"
)

// Service implements user management.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validateUser(u *User) error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return httperr.Validation("a valid email is required")
	}
	if u.Name == "" {
		return httperr.Validation("name is required")
	}
	if !ValidRole(u.Role) {
		return httperr.Validation("role must be one of patient, physician, dietician, family")
	}
	if u.Role == RoleFamily && u.PatientID == nil {
		return httperr.Validation("family members must reference a patient")
	}
	if u.Role != RoleFamily && u.PatientID != nil {
		return httperr.Validation("only family members may reference a patient")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, u *User) (*User, error) {
	if err := validateUser(u); err != nil {
		return nil, err
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	if _, err := s.repo.GetByEmail(ctx, u.Email); err == nil {
		return nil, httperr.Conflict("a user with email %s already exists", u.Email)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, httperr.Internal(err)
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, httperr.Internal(err)
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("user", id.String())
	}
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, u *User) (*User, error) {
	if err := validateUser(u); err != nil {
		return nil, err
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	if existing, err := s.repo.GetByEmail(ctx, u.Email); err == nil && existing.ID != u.ID {
		return nil, httperr.Conflict("a user with email %s already exists", u.Email)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, httperr.Internal(err)
	}

	err := s.repo.Update(ctx, u)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("user", u.ID.String())
	}
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return httperr.NotFound("user", id.String())
	}
	if err != nil {
		return httperr.Internal(err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	if role != "" && !ValidRole(role) {
		return nil, 0, httperr.Validation("unknown role %q", role)
	}
	users, total, err := s.repo.List(ctx, role, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return users, total, nil
}
