package application

import (
	"testing"
	"time"

	"admissions/internal/core"
)

func ugFields() Fields {
	return Fields{
		Name: "Asha Rao", Email: " Asha@Example.com ", Mobile: "9876543210",
		City: "Pune", State: "Maharashtra", Class: "12", Stream: "Science",
		Grade10: "92", Grade12: "88", ExamDate: "2025-06-01",
	}
}

func TestNewUGDefaults(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	f := ugFields()
	f.PassingYear = "2020"
	a, err := New(KindUG, f, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.PaymentStatus != StatusPending {
		t.Fatalf("expected pending, got %s", a.PaymentStatus)
	}
	if a.Email != "asha@example.com" {
		t.Fatalf("email not normalized: %q", a.Email)
	}
	if !a.ApplicationDate.Equal(now) {
		t.Fatal("application date should default to now")
	}
	if a.PassingYear != "" {
		t.Fatal("PG-only field kept on UG application")
	}
}

func TestNewRequiredPerKind(t *testing.T) {
	f := ugFields()
	f.ExamDate = ""
	if _, err := New(KindUG, f, time.Now()); !core.Is(err, core.KindInvalidInput) {
		t.Fatalf("UG without examDate should be invalid, got %v", err)
	}

	// examDate is not needed for PG but graduation fields are
	if _, err := New(KindPG, ugFields(), time.Now()); !core.Is(err, core.KindInvalidInput) {
		t.Fatalf("PG without graduation fields should be invalid, got %v", err)
	}
	pg := ugFields()
	pg.GraduationScore, pg.GraduationStream, pg.PassingYear = "7.8", "B.Sc", "2024"
	if _, err := New(KindPG, pg, time.Now()); err != nil {
		t.Fatalf("valid PG rejected: %v", err)
	}
}

func TestApplyOneWayGate(t *testing.T) {
	a, _ := New(KindUG, ugFields(), time.Now())

	if err := a.Apply(CompletePayment("p1", "o1")); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !a.IsCompleted() || a.PaymentID != "p1" || a.OrderID != "o1" {
		t.Fatalf("unexpected state %+v", a)
	}

	pending := StatusPending
	err := a.Apply(Patch{PaymentStatus: &pending})
	if !core.Is(err, core.KindInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if !a.IsCompleted() {
		t.Fatal("rejected patch must not change the record")
	}

	// re-completing is allowed and stays completed
	if err := a.Apply(CompletePayment("p1", "o1")); err != nil {
		t.Fatalf("repeat complete: %v", err)
	}
}

func TestApplyRejectsUnknownStatus(t *testing.T) {
	a, _ := New(KindUG, ugFields(), time.Now())
	bogus := Status("refunded")
	if err := a.Apply(Patch{PaymentStatus: &bogus}); !core.Is(err, core.KindInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestApplyKeepsRecordOnValidationError(t *testing.T) {
	a, _ := New(KindUG, ugFields(), time.Now())
	empty := ""
	city := "Mumbai"
	if err := a.Apply(Patch{Name: &empty, City: &city}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if a.City != "Pune" {
		t.Fatal("partial patch leaked into record")
	}
}

func TestTransitionedToCompleted(t *testing.T) {
	cases := []struct {
		prev, next Status
		want       bool
	}{
		{StatusPending, StatusCompleted, true},
		{StatusCompleted, StatusCompleted, false},
		{StatusPending, StatusPending, false},
	}
	for _, c := range cases {
		if got := TransitionedToCompleted(c.prev, c.next); got != c.want {
			t.Errorf("%s -> %s: got %v", c.prev, c.next, got)
		}
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("PG"); err != nil || k != KindPG {
		t.Fatalf("got %q %v", k, err)
	}
	if _, err := ParseKind("phd"); err == nil {
		t.Fatal("expected error")
	}
}
