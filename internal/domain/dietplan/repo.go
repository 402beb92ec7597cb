package dietplan

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("dietplan: not found")

// PlanRepository is the persistence boundary for diet plans.
type PlanRepository interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	Update(ctx context.Context, p *Plan) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Plan, int, error)
}

// MealRepository is the persistence boundary for logged meals.
type MealRepository interface {
	Create(ctx context.Context, m *MealEntry) error
	ListByPlan(ctx context.Context, planID uuid.UUID, limit, offset int) ([]*MealEntry, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
