package supply

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("supply: not found")

	// ErrInsufficientStock is returned by Adjust when the delta would take
	// the quantity below zero. The check and the update are one conditional
	// statement, so concurrent withdrawals cannot overdraw.
	ErrInsufficientStock = errors.New("supply: insufficient stock")
)

// Repository is the persistence boundary for medical supplies.
type Repository interface {
	Create(ctx context.Context, s *Supply) error
	GetByID(ctx context.Context, id uuid.UUID) (*Supply, error)
	Update(ctx context.Context, s *Supply) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Adjust adds delta to the quantity and returns the updated row.
	Adjust(ctx context.Context, id uuid.UUID, delta int) (*Supply, error)
	List(ctx context.Context, category string, limit, offset int) ([]*Supply, int, error)
}
