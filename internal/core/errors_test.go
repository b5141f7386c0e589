package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := NotFound("get_application", "UG Application not found")
	wrapped := fmt.Errorf("handler: %w", base)

	if got := KindOf(wrapped); got != KindNotFound {
		t.Fatalf("expected %s, got %s", KindNotFound, got)
	}
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Fatalf("plain errors should be internal, got %s", got)
	}
	if !Is(wrapped, KindNotFound) {
		t.Fatal("Is should match wrapped kind")
	}
	if Is(nil, KindNotFound) {
		t.Fatal("nil error must not match any kind")
	}
}

func TestMessageOfHidesInternalCause(t *testing.T) {
	err := Internal("list_applications", errors.New("pq: connection refused"))
	if got := MessageOf(err); got != "internal error" {
		t.Fatalf("internal cause leaked: %q", got)
	}

	err = Invalid("create_order", "amount must be a positive integer")
	if got := MessageOf(err); got != "amount must be a positive integer" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("no rows")
	err := Wrap(KindNotFound, "find_user", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected Unwrap to expose the cause")
	}
}
