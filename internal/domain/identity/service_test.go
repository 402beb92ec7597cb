package identity

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/platform/httperr"
)

type mockRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, role string, limit, offset int) ([]*User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func TestCreateUser(t *testing.T) {
	svc := NewService(newMockRepo())

	u, err := svc.Create(context.Background(), &User{
		Email: "Jo@Example.com",
		Name:  "Jo Rivera",
		Role:  RolePatient,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Error("id not assigned")
	}
	if u.Email != "jo@example.com" {
		t.Errorf("email = %q, want lowercased", u.Email)
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	patientID := uuid.New()

	cases := []struct {
		name string
		user User
	}{
		{"no email", User{Name: "x", Role: RolePatient}},
		{"bad email", User{Email: "not-an-email", Name: "x", Role: RolePatient}},
		{"no name", User{Email: "a@b.c", Role: RolePatient}},
		{"bad role", User{Email: "a@b.c", Name: "x", Role: "wizard"}},
		{"family without patient", User{Email: "a@b.c", Name: "x", Role: RoleFamily}},
		{"patient with patient ref", User{Email: "a@b.c", Name: "x", Role: RolePatient, PatientID: &patientID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := tc.user
			if _, err := svc.Create(context.Background(), &u); !httperr.IsKind(err, httperr.KindValidation) {
				t.Fatalf("error = %v, want validation", err)
			}
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Create(context.Background(), &User{Email: "jo@example.com", Name: "Jo", Role: RolePatient}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := svc.Create(context.Background(), &User{Email: "jo@example.com", Name: "Jo Again", Role: RolePhysician})
	if !httperr.IsKind(err, httperr.KindConflict) {
		t.Fatalf("error = %v, want conflict", err)
	}
}

func TestUpdateUserKeepsOwnEmail(t *testing.T) {
	svc := NewService(newMockRepo())

	u, _ := svc.Create(context.Background(), &User{Email: "jo@example.com", Name: "Jo", Role: RolePatient})
	u.Name = "Jo R."
	if _, err := svc.Update(context.Background(), u); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := svc.Get(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Jo R." {
		t.Errorf("name = %q", got.Name)
	}
}

func TestGetUnknownUser(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Get(context.Background(), uuid.New())
	if !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestListUsersByRole(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	for i, role := range []string{RolePatient, RolePatient, RolePhysician} {
		email := strings.ToLower(role) + string(rune('a'+i)) + "@example.com"
		if _, err := svc.Create(context.Background(), &User{Email: email, Name: "u", Role: role}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	_, total, err := svc.List(context.Background(), RolePatient, 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Errorf("patients = %d, want 2", total)
	}

	if _, _, err := svc.List(context.Background(), "wizard", 20, 0); !httperr.IsKind(err, httperr.KindValidation) {
		t.Fatalf("unknown role error = %v, want validation", err)
	}
}
