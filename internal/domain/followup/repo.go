package followup

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("followup: not found")

// Repository is the persistence boundary for follow-ups.
type Repository interface {
	Create(ctx context.Context, f *FollowUp) error
	GetByID(ctx context.Context, id uuid.UUID) (*FollowUp, error)
	Update(ctx context.Context, f *FollowUp) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*FollowUp, int, error)
}

// Filter narrows List results. Zero values mean no constraint.
type Filter struct {
	PatientID  uuid.UUID
	ProviderID uuid.UUID
	Status     string
	DueBefore  time.Time
}
