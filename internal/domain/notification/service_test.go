package notification

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/platform/httperr"
	"github.com/carebridge/carebridge/internal/platform/notify"
)

type mockRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Notification
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Notification)}
}

func (m *mockRepo) Create(_ context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	cp := *n
	m.items[n.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *mockRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	n.Read = true
	return nil
}

func (m *mockRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int
	for _, n := range m.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Notification
	for _, n := range m.items {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func TestMarkReadIsIdempotent(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	userID := uuid.New()
	n := &Notification{UserID: userID, Kind: "booking.created", Title: "t", Body: "b"}
	if err := repo.Create(context.Background(), n); err != nil {
		t.Fatalf("seed: %v", err)
	}

	first, err := svc.MarkRead(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !first.Read {
		t.Error("not marked read")
	}

	again, err := svc.MarkRead(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("second MarkRead: %v", err)
	}
	if !again.Read {
		t.Error("read flag lost")
	}

	if _, err := svc.MarkRead(context.Background(), uuid.New()); !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("unknown id error = %v, want not found", err)
	}
}

func TestMarkAllReadAndUnreadFilter(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		_ = repo.Create(context.Background(), &Notification{UserID: userID, Kind: "k", Title: "t", Body: "b"})
	}
	_ = repo.Create(context.Background(), &Notification{UserID: uuid.New(), Kind: "k", Title: "t", Body: "b"})

	_, unread, err := svc.List(context.Background(), userID, true, 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if unread != 3 {
		t.Errorf("unread = %d, want 3", unread)
	}

	updated, err := svc.MarkAllRead(context.Background(), userID)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if updated != 3 {
		t.Errorf("updated = %d, want 3", updated)
	}

	_, unread, _ = svc.List(context.Background(), userID, true, 20, 0)
	if unread != 0 {
		t.Errorf("unread after mark-all = %d", unread)
	}
	_, total, _ := svc.List(context.Background(), userID, false, 20, 0)
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
}

func TestStorePublisherWritesInbox(t *testing.T) {
	repo := newMockRepo()
	pub := NewStorePublisher(repo)

	userID := uuid.New()
	err := pub.Publish(context.Background(), notify.Event{
		Kind:   "booking.created",
		UserID: userID,
		Title:  "Appointment confirmed",
		Body:   "See you soon.",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	out, total, _ := repo.ListByUser(context.Background(), userID, true, 20, 0)
	if total != 1 {
		t.Fatalf("inbox entries = %d, want 1", total)
	}
	if out[0].Kind != "booking.created" || out[0].Read {
		t.Errorf("entry = %+v", out[0])
	}

	// Events without a user target are skipped, not an error.
	if err := pub.Publish(context.Background(), notify.Event{Kind: "system"}); err != nil {
		t.Fatalf("Publish without user: %v", err)
	}
}
