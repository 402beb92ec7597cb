package dietplan

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

// Service implements diet plans and meal logging.
type Service struct {
	plans    PlanRepository
	meals    MealRepository
	notifier Notifier
}

func NewService(plans PlanRepository, meals MealRepository, notifier Notifier) *Service {
	return &Service{plans: plans, meals: meals, notifier: notifier}
}

func (s *Service) CreatePlan(ctx context.Context, p *Plan) (*Plan, error) {
	if p.PatientID == uuid.Nil {
		return nil, httperr.Validation("patient id is required")
	}
	if p.DieticianID == uuid.Nil {
		return nil, httperr.Validation("dietician id is required")
	}
	if p.Title == "" {
		return nil, httperr.Validation("title is required")
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return nil, httperr.Validation("start and end dates are required")
	}
	if p.EndDate.Before(p.StartDate) {
		return nil, httperr.Validation("end date precedes start date")
	}

	p.Status = StatusActive
	if err := s.plans.Create(ctx, p); err != nil {
		return nil, httperr.Internal(err)
	}

	s.notifier.Dispatch(notify.Event{
		Kind:       "dietplan.created",
		UserID:     p.PatientID,
		Title:      "New diet plan",
		Body:       "Your diet plan \"" + p.Title + "\" starts on " + p.StartDate.Format("2006-01-02") + ".",
		Resource:   "diet_plan",
		ResourceID: p.ID,
	})
	return p, nil
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("diet plan", id.String())
	}
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return p, nil
}

// SetPlanStatus moves an active plan to finished or stopped.
func (s *Service) SetPlanStatus(ctx context.Context, id uuid.UUID, status string) (*Plan, error) {
	if status != StatusFinished && status != StatusStopped {
		return nil, httperr.Validation("status must be finished or stopped")
	}

	p, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == status {
		return p, nil
	}
	if p.Status != StatusActive {
		return nil, httperr.Conflict("diet plan %s is already %s", id, p.Status)
	}

	p.Status = status
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, httperr.Internal(err)
	}
	return p, nil
}

func (s *Service) UpdatePlan(ctx context.Context, id uuid.UUID, upd *Plan) (*Plan, error) {
	if upd.Title == "" {
		return nil, httperr.Validation("title is required")
	}
	if upd.EndDate.Before(upd.StartDate) {
		return nil, httperr.Validation("end date precedes start date")
	}

	p, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusActive {
		return nil, httperr.Conflict("diet plan %s is %s and cannot be edited", id, p.Status)
	}

	p.Title = upd.Title
	p.Description = upd.Description
	p.StartDate = upd.StartDate
	p.EndDate = upd.EndDate
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, httperr.Internal(err)
	}
	return p, nil
}

func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID) error {
	err := s.plans.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return httperr.NotFound("diet plan", id.String())
	}
	if err != nil {
		return httperr.Internal(err)
	}
	return nil
}

func (s *Service) ListPlans(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Plan, int, error) {
	out, total, err := s.plans.List(ctx, patientID, status, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return out, total, nil
}

// LogMeal records a meal against an active plan.
func (s *Service) LogMeal(ctx context.Context, m *MealEntry) (*MealEntry, error) {
	if !ValidMealType(m.MealType) {
		return nil, httperr.Validation("meal type must be one of breakfast, lunch, dinner, snack")
	}
	if m.Description == "" {
		return nil, httperr.Validation("description is required")
	}

	plan, err := s.GetPlan(ctx, m.DietPlanID)
	if err != nil {
		return nil, err
	}
	if plan.Status != StatusActive {
		return nil, httperr.Conflict("diet plan %s is %s, meals can only be logged against active plans", plan.ID, plan.Status)
	}

	if err := s.meals.Create(ctx, m); err != nil {
		return nil, httperr.Internal(err)
	}
	return m, nil
}

func (s *Service) ListMeals(ctx context.Context, planID uuid.UUID, limit, offset int) ([]*MealEntry, int, error) {
	if _, err := s.GetPlan(ctx, planID); err != nil {
		return nil, 0, err
	}
	out, total, err := s.meals.ListByPlan(ctx, planID, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return out, total, nil
}

func (s *Service) DeleteMeal(ctx context.Context, id uuid.UUID) error {
	err := s.meals.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return httperr.NotFound("meal entry", id.String())
	}
	if err != nil {
		return httperr.Internal(err)
	}
	return nil
}
