package dietplan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/internal/platform/notify"
)

type nopNotifier struct{}

func (nopNotifier) Dispatch(notify.Event) {}

type mockPlanRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Plan
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{items: make(map[uuid.UUID]*Plan)}
}

func (m *mockPlanRepo) Create(_ context.Context, p *Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockPlanRepo) GetByID(_ context.Context, id uuid.UUID) (*Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPlanRepo) Update(_ context.Context, p *Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockPlanRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockPlanRepo) List(_ context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Plan, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Plan
	for _, p := range m.items {
		if patientID != uuid.Nil && p.PatientID != patientID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, len(out), nil
}

type mockMealRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*MealEntry
}

func newMockMealRepo() *mockMealRepo {
	return &mockMealRepo{items: make(map[uuid.UUID]*MealEntry)}
}

func (m *mockMealRepo) Create(_ context.Context, e *MealEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	m.items[e.ID] = &cp
	return nil
}

func (m *mockMealRepo) ListByPlan(_ context.Context, planID uuid.UUID, limit, offset int) ([]*MealEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*MealEntry
	for _, e := range m.items {
		if e.DietPlanID == planID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockMealRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

var (
	planStart = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	planEnd   = time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
)

func newTestService() *Service {
	return NewService(newMockPlanRepo(), newMockMealRepo(), nopNotifier{})
}

func newPlan() *Plan {
	return &Plan{PatientID: uuid.New(), DieticianID: uuid.New(), Title: "Low sodium", StartDate: planStart, EndDate: planEnd}
}

func TestCreatePlan(t *testing.T) {
	svc := newTestService()

	p, err := svc.CreatePlan(context.Background(), newPlan())
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if p.Status != StatusActive {
		t.Errorf("status = %q", p.Status)
	}

	bad := newPlan()
	bad.EndDate = planStart.AddDate(0, 0, -1)
	if _, err := svc.CreatePlan(context.Background(), bad); !httperr.IsKind(err, httperr.KindValidation) {
		t.Fatalf("inverted dates error = %v, want validation", err)
	}
}

func TestPlanStatusTransitions(t *testing.T) {
	svc := newTestService()

	p, _ := svc.CreatePlan(context.Background(), newPlan())

	if _, err := svc.SetPlanStatus(context.Background(), p.ID, StatusFinished); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := svc.SetPlanStatus(context.Background(), p.ID, StatusFinished); err != nil {
		t.Fatalf("repeat finish: %v", err)
	}
	if _, err := svc.SetPlanStatus(context.Background(), p.ID, StatusStopped); !httperr.IsKind(err, httperr.KindConflict) {
		t.Fatalf("stop after finish error = %v, want conflict", err)
	}

	if _, err := svc.UpdatePlan(context.Background(), p.ID, newPlan()); !httperr.IsKind(err, httperr.KindConflict) {
		t.Fatalf("edit finished plan error = %v, want conflict", err)
	}
}

func TestLogMealRequiresActivePlan(t *testing.T) {
	svc := newTestService()

	p, _ := svc.CreatePlan(context.Background(), newPlan())

	m, err := svc.LogMeal(context.Background(), &MealEntry{
		DietPlanID: p.ID, MealType: MealLunch, Description: "grilled salmon",
	})
	if err != nil {
		t.Fatalf("LogMeal: %v", err)
	}
	if m.LoggedAt.IsZero() && m.ID == uuid.Nil {
		t.Error("meal entry not populated")
	}

	if _, err := svc.LogMeal(context.Background(), &MealEntry{
		DietPlanID: p.ID, MealType: "brunch", Description: "x",
	}); !httperr.IsKind(err, httperr.KindValidation) {
		t.Fatalf("bad meal type error = %v, want validation", err)
	}

	if _, err := svc.SetPlanStatus(context.Background(), p.ID, StatusStopped); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := svc.LogMeal(context.Background(), &MealEntry{
		DietPlanID: p.ID, MealType: MealDinner, Description: "x",
	}); !httperr.IsKind(err, httperr.KindConflict) {
		t.Fatalf("log against stopped plan error = %v, want conflict", err)
	}
}

func TestListMealsUnknownPlan(t *testing.T) {
	svc := newTestService()
	if _, _, err := svc.ListMeals(context.Background(), uuid.New(), 20, 0); !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}
