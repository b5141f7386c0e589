package application

import (
	"context"
	"sync"
	"testing"

	"admissions/internal/core"
	"admissions/internal/domain/application"
	"admissions/internal/store/memory"

	"github.com/google/uuid"
)

type countingNotifier struct {
	mu    sync.Mutex
	calls []uuid.UUID
}

func (n *countingNotifier) PaymentCompleted(_ context.Context, a *application.Application) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, a.ID)
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func ugFields() application.Fields {
	return application.Fields{
		Name: "Asha", Email: "asha@x.in", Mobile: "9876543210", City: "Pune", State: "MH",
		Class: "12", Stream: "Science", Grade10: "90", Grade12: "88", ExamDate: "2025-06-01",
	}
}

func setup(t *testing.T) (*Service, *countingNotifier, *application.Application) {
	t.Helper()
	n := &countingNotifier{}
	svc := NewService(memory.NewApplicationStore(), n, nil)
	a, err := svc.Create(context.Background(), application.KindUG, ugFields())
	if err != nil {
		t.Fatal(err)
	}
	return svc, n, a
}

func TestUpdateDispatchesOnceOnCompletion(t *testing.T) {
	svc, n, a := setup(t)
	ctx := context.Background()

	updated, err := svc.CompletePayment(ctx, application.KindUG, a.ID, "p1", "o1")
	if err != nil {
		t.Fatal(err)
	}
	if updated.PaymentStatus != application.StatusCompleted || updated.PaymentID != "p1" {
		t.Fatalf("unexpected record %+v", updated)
	}
	if n.count() != 1 {
		t.Fatalf("expected one notification, got %d", n.count())
	}

	if _, err := svc.CompletePayment(ctx, application.KindUG, a.ID, "p1", "o1"); err != nil {
		t.Fatal(err)
	}
	if n.count() != 1 {
		t.Fatal("repeated completion must not notify again")
	}
}

func TestUpdateWithoutStatusChangeDoesNotNotify(t *testing.T) {
	svc, n, a := setup(t)
	city := "Mumbai"
	if _, err := svc.Update(context.Background(), application.KindUG, a.ID, application.Patch{City: &city}); err != nil {
		t.Fatal(err)
	}
	if n.count() != 0 {
		t.Fatal("non-status update notified")
	}
}

func TestUpdateRejectsBackwardTransition(t *testing.T) {
	svc, n, a := setup(t)
	ctx := context.Background()
	_, _ = svc.CompletePayment(ctx, application.KindUG, a.ID, "p1", "o1")

	pending := application.StatusPending
	_, err := svc.Update(ctx, application.KindUG, a.ID, application.Patch{PaymentStatus: &pending})
	if !core.Is(err, core.KindInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	got, _ := svc.Get(ctx, application.KindUG, a.ID)
	if got.PaymentStatus != application.StatusCompleted {
		t.Fatal("record moved backwards")
	}
	if n.count() != 1 {
		t.Fatalf("unexpected notifications: %d", n.count())
	}
}

func TestConcurrentCompletionNotifiesOnce(t *testing.T) {
	svc, n, a := setup(t)
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CompletePayment(context.Background(), application.KindUG, a.ID, "p1", "o1"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if n.count() != 1 {
		t.Fatalf("expected exactly one notification, got %d", n.count())
	}
}

func TestUpdateUnknownAndEmpty(t *testing.T) {
	svc, n, a := setup(t)
	ctx := context.Background()

	if _, err := svc.CompletePayment(ctx, application.KindUG, uuid.New(), "p1", "o1"); !core.Is(err, core.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Update(ctx, application.KindUG, a.ID, application.Patch{}); !core.Is(err, core.KindInvalidInput) {
		t.Fatalf("expected invalid input for empty patch, got %v", err)
	}
	if n.count() != 0 {
		t.Fatal("failed updates must not notify")
	}
}

func TestCreateDuplicate(t *testing.T) {
	svc, _, _ := setup(t)
	f := ugFields()
	f.Mobile = "1111111111"
	if _, err := svc.Create(context.Background(), application.KindUG, f); !core.Is(err, core.KindDuplicate) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
}

func TestListPaging(t *testing.T) {
	svc, _, _ := setup(t)
	page, err := svc.List(context.Background(), application.KindUG, application.ListQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if page.CurrentPage != 1 || page.TotalApplications != 1 || page.TotalPages != 1 || len(page.Applications) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
}
