package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfUnwrapsDomainErrors(t *testing.T) {
	base := Conflictf(EntityCourse, "course %d is full", 7)
	wrapped := fmt.Errorf("enroll: %w", base)
	if KindOf(wrapped) != KindConflict {
		t.Fatalf("expected conflict, got %s", KindOf(wrapped))
	}
	if !IsKind(wrapped, KindConflict) {
		t.Fatalf("expected IsKind to match")
	}
	if base.Error() != "course 7 is full" {
		t.Fatalf("unexpected message %q", base.Error())
	}
	if KindOf(errors.New("disk full")) != KindInternal {
		t.Fatalf("foreign errors should be internal")
	}
	if KindOf(nil) != "" {
		t.Fatalf("nil error should have no kind")
	}
}

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindInvalidInput: http.StatusBadRequest,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := kind.HTTPStatus(); got != want {
			t.Fatalf("%s: expected %d, got %d", kind, want, got)
		}
	}
}

func TestRuleViolationErrorIsInternal(t *testing.T) {
	err := RuleViolationError{Result: Result{Violations: []Violation{{Rule: "r", Severity: SeverityBlock, Message: "m"}}}}
	if KindOf(err) != KindInternal {
		t.Fatalf("expected internal kind")
	}
	if err.Error() != "transaction blocked by rules: r: m" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
