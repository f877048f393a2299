package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"petclinic/internal/platform/logger"
	"petclinic/internal/ports/events"
)

// ---- Test repo (in-memory) ----

type testRepo struct {
	byID  map[string]Notification
	order []string
}

func (r *testRepo) Create(ctx context.Context, n Notification) error {
	r.byID[n.ID] = n
	r.order = append(r.order, n.ID)
	return nil
}
func (r *testRepo) Update(ctx context.Context, n Notification) error { r.byID[n.ID] = n; return nil }
func (r *testRepo) GetByID(ctx context.Context, id string) (Notification, error) {
	n, ok := r.byID[id]
	if !ok {
		return Notification{}, ErrNotFound
	}
	return n, nil
}
func (r *testRepo) List(ctx context.Context, f Filter) ([]Notification, error) {
	out := make([]Notification, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		if n, ok := r.byID[r.order[i]]; ok && f.Matches(n) {
			out = append(out, n)
		}
	}
	return out, nil
}
func (r *testRepo) Delete(ctx context.Context, id string) error { delete(r.byID, id); return nil }

var fixedNow = time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)

func newTestService() (*Service, *testRepo) {
	repo := &testRepo{byID: map[string]Notification{}}
	svc := NewService(repo, logger.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func mustEnvelope(t *testing.T, typ, key string, payload any) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope(typ, key, payload, fixedNow)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	return env
}

// ---- Tests ----

func TestService_HandleEvent(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	envs := []events.Envelope{
		mustEnvelope(t, events.BillCreated, "b-1", map[string]any{"billId": "b-1", "customerId": "c-1", "amount": 100, "dueDate": "2025-05-17"}),
		mustEnvelope(t, events.CartCheckout, "cart-1", map[string]any{"invoiceId": "inv-1", "customerId": "c-1", "items": 2, "total": 33.75}),
		mustEnvelope(t, events.ProductPriceDropped, "p-1", map[string]any{"productId": "p-1", "productName": "Collar", "customerId": "c-2", "email": "c2@test.io", "oldValue": 20, "newValue": 15}),
	}
	for _, env := range envs {
		if err := svc.HandleEvent(ctx, env); err != nil {
			t.Fatalf("HandleEvent(%s): %v", env.Type, err)
		}
	}

	got, _ := svc.List(ctx, Filter{Recipient: "c-1"})
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications for c-1, got %d", len(got))
	}
	if got[0].Type != events.CartCheckout || got[0].Reference != "inv-1" || !strings.Contains(got[0].Body, "total 33.75") {
		t.Fatalf("unexpected checkout notification: %+v", got[0])
	}
	if got[1].Status != StatusPending || !strings.Contains(got[1].Body, "100.00") {
		t.Fatalf("unexpected bill notification: %+v", got[1])
	}

	drop, _ := svc.List(ctx, Filter{Type: events.ProductPriceDropped})
	if len(drop) != 1 || drop[0].Recipient != "c2@test.io" || drop[0].Body != "Collar dropped from 20.00 to 15.00." {
		t.Fatalf("unexpected price drop notification: %+v", drop)
	}

	// Tipos desconocidos se saltean sin error.
	if err := svc.HandleEvent(ctx, events.Envelope{Type: "visit.created", Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("unknown type must be skipped, got %v", err)
	}
	if len(repo.byID) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(repo.byID))
	}
}

func TestService_SendAndMarkRead(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Send(ctx, Input{Subject: "hi"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without recipient, got %v", err)
	}
	n, err := svc.Send(ctx, Input{Recipient: "milo@test.io", Subject: "Reminder", Body: "Vaccine due"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n.Type != TypeEmail || n.Status != StatusSent {
		t.Fatalf("unexpected notification: %+v", n)
	}

	read, err := svc.MarkRead(ctx, n.ID)
	if err != nil || read.Status != StatusRead || read.ReadAt == nil {
		t.Fatalf("MarkRead: %+v %v", read, err)
	}

	svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	again, err := svc.MarkRead(ctx, n.ID)
	if err != nil || !again.ReadAt.Equal(fixedNow) {
		t.Fatalf("MarkRead must be idempotent: %+v %v", again, err)
	}

	if err := svc.Delete(ctx, n.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, n.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
