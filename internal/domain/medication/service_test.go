package medication

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/internal/platform/notify"
)

type nopNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *nopNotifier) Dispatch(evt notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
}

type mockPrescriptionRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Prescription
}

func newMockPrescriptionRepo() *mockPrescriptionRepo {
	return &mockPrescriptionRepo{items: make(map[uuid.UUID]*Prescription)}
}

func (m *mockPrescriptionRepo) Create(_ context.Context, p *Prescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockPrescriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPrescriptionRepo) Update(_ context.Context, p *Prescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockPrescriptionRepo) List(_ context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Prescription, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Prescription
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

type mockReminderRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Reminder
}

func newMockReminderRepo() *mockReminderRepo {
	return &mockReminderRepo{items: make(map[uuid.UUID]*Reminder)}
}

func (m *mockReminderRepo) Create(_ context.Context, r *Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *mockReminderRepo) GetByID(_ context.Context, id uuid.UUID) (*Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockReminderRepo) Update(_ context.Context, r *Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *mockReminderRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockReminderRepo) ListByPatient(_ context.Context, patientID uuid.UUID, activeOnly bool, limit, offset int) ([]*Reminder, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Reminder
	for _, r := range m.items {
		if r.PatientID != patientID {
			continue
		}
		if activeOnly && !r.Active {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func newTestService() (*Service, *nopNotifier) {
	notifier := &nopNotifier{}
	return NewService(newMockPrescriptionRepo(), newMockReminderRepo(), notifier), notifier
}

func TestCreatePrescriptionNotifiesPatient(t *testing.T) {
	svc, notifier := newTestService()

	patientID := uuid.New()
	p, err := svc.CreatePrescription(context.Background(), &Prescription{
		PatientID:   patientID,
		PhysicianID: uuid.New(),
		Medication:  "Amoxicillin",
		Dosage:      "500mg",
	})
	if err != nil {
		t.Fatalf("CreatePrescription: %v", err)
	}
	if p.Status != PrescriptionActive {
		t.Errorf("status = %q", p.Status)
	}

	if len(notifier.events) != 1 || notifier.events[0].Kind != "prescription.created" {
		t.Fatalf("events = %+v", notifier.events)
	}
	if notifier.events[0].UserID != patientID {
		t.Errorf("event user = %s, want patient", notifier.events[0].UserID)
	}
}

func TestCreatePrescriptionValidation(t *testing.T) {
	svc, _ := newTestService()

	cases := []Prescription{
		{PhysicianID: uuid.New(), Medication: "x", Dosage: "y"},
		{PatientID: uuid.New(), Medication: "x", Dosage: "y"},
		{PatientID: uuid.New(), PhysicianID: uuid.New(), Dosage: "y"},
		{PatientID: uuid.New(), PhysicianID: uuid.New(), Medication: "x"},
	}
	for _, p := range cases {
		pc := p
		if _, err := svc.CreatePrescription(context.Background(), &pc); !httperr.IsKind(err, httperr.KindValidation) {
			t.Errorf("prescription %+v: error = %v, want validation", p, err)
		}
	}
}

func TestPrescriptionStatusTransitions(t *testing.T) {
	svc, _ := newTestService()

	p, _ := svc.CreatePrescription(context.Background(), &Prescription{
		PatientID: uuid.New(), PhysicianID: uuid.New(), Medication: "x", Dosage: "y",
	})

	done, err := svc.SetPrescriptionStatus(context.Background(), p.ID, PrescriptionCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != PrescriptionCompleted {
		t.Errorf("status = %q", done.Status)
	}

	// Repeating the same target is a no-op.
	if _, err := svc.SetPrescriptionStatus(context.Background(), p.ID, PrescriptionCompleted); err != nil {
		t.Fatalf("repeat complete: %v", err)
	}

	// Moving to a different terminal state conflicts.
	if _, err := svc.SetPrescriptionStatus(context.Background(), p.ID, PrescriptionStopped); !httperr.IsKind(err, httperr.KindConflict) {
		t.Fatalf("stop after complete error = %v, want conflict", err)
	}

	if _, err := svc.SetPrescriptionStatus(context.Background(), p.ID, "active"); !httperr.IsKind(err, httperr.KindValidation) {
		t.Fatalf("reactivate error = %v, want validation", err)
	}
}

func TestCreateReminderValidatesTime(t *testing.T) {
	svc, _ := newTestService()

	patientID := uuid.New()
	for _, at := range []string{"", "9am", "25:00", "09:60"} {
		_, err := svc.CreateReminder(context.Background(), &Reminder{
			PatientID: patientID, Medication: "x", RemindAt: at, Frequency: FrequencyDaily,
		})
		if !httperr.IsKind(err, httperr.KindValidation) {
			t.Errorf("remind_at %q: error = %v, want validation", at, err)
		}
	}

	rem, err := svc.CreateReminder(context.Background(), &Reminder{
		PatientID: patientID, Medication: "x", RemindAt: "08:30", Frequency: FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}
	if !rem.Active {
		t.Error("reminder not active on creation")
	}
}

func TestCreateReminderUnknownPrescription(t *testing.T) {
	svc, _ := newTestService()

	missing := uuid.New()
	_, err := svc.CreateReminder(context.Background(), &Reminder{
		PatientID: uuid.New(), PrescriptionID: &missing, Medication: "x",
		RemindAt: "08:00", Frequency: FrequencyDaily,
	})
	if !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestReminderToggleAndList(t *testing.T) {
	svc, _ := newTestService()

	patientID := uuid.New()
	rem, _ := svc.CreateReminder(context.Background(), &Reminder{
		PatientID: patientID, Medication: "x", RemindAt: "08:00", Frequency: FrequencyDaily,
	})
	if _, err := svc.CreateReminder(context.Background(), &Reminder{
		PatientID: patientID, Medication: "y", RemindAt: "20:00", Frequency: FrequencyWeekly,
	}); err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}

	if _, err := svc.SetReminderActive(context.Background(), rem.ID, false); err != nil {
		t.Fatalf("SetReminderActive: %v", err)
	}

	_, total, err := svc.ListReminders(context.Background(), patientID, true, 20, 0)
	if err != nil {
		t.Fatalf("ListReminders: %v", err)
	}
	if total != 1 {
		t.Errorf("active reminders = %d, want 1", total)
	}

	_, total, _ = svc.ListReminders(context.Background(), patientID, false, 20, 0)
	if total != 2 {
		t.Errorf("all reminders = %d, want 2", total)
	}
}
