package adoptions

import (
	"reflect"
	"testing"
)

func TestNextStatuses_MatchesReviewGraph(t *testing.T) {
	cases := []struct {
		from Status
		want []Status
	}{
		{StatusPending, []Status{StatusUnderReview, StatusApproved, StatusRejected}},
		{StatusUnderReview, []Status{StatusInterviewScheduled, StatusApproved, StatusRejected}},
		{StatusInterviewScheduled, []Status{StatusApproved, StatusRejected}},
		{StatusApproved, []Status{StatusCompleted}},
		{StatusRejected, []Status{StatusUnderReview, StatusPending}},
		{StatusCompleted, []Status{}},
		{StatusWithdrawn, []Status{}},
	}

	for _, c := range cases {
		got := NextStatuses(c.from)
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("NextStatuses(%s) = %v, want %v", c.from, got, c.want)
		}
	}
}

func TestNextStatuses_IsPureAndIdempotent(t *testing.T) {
	first := NextStatuses(StatusPending)
	second := NextStatuses(StatusPending)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two lookups differ: %v vs %v", first, second)
	}

	// Mutar el resultado no debe afectar lookups posteriores (copia, no alias).
	first[0] = StatusCompleted
	third := NextStatuses(StatusPending)
	if third[0] != StatusUnderReview {
		t.Fatalf("internal graph was mutated through returned slice")
	}
}

func TestNextStatuses_UnknownStatusHasNoEdges(t *testing.T) {
	if got := NextStatuses(Status("archived")); len(got) != 0 {
		t.Fatalf("expected empty set for unknown status, got %v", got)
	}
}

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusPending, StatusUnderReview) {
		t.Fatalf("pending -> under_review should be legal")
	}
	if !CanTransition(StatusRejected, StatusPending) {
		t.Fatalf("rejected -> pending (re-review) should be legal")
	}
	if CanTransition(StatusPending, StatusCompleted) {
		t.Fatalf("pending -> completed should be illegal")
	}
	if CanTransition(StatusCompleted, StatusPending) {
		t.Fatalf("completed is terminal, no outgoing edges")
	}
	if CanTransition(StatusWithdrawn, StatusUnderReview) {
		t.Fatalf("withdrawn is terminal, no outgoing edges")
	}
	// withdrawn no tiene aristas ENTRANTES en el grafo admin; el retiro
	// va por Withdraw, no por UpdateStatus.
	if CanTransition(StatusPending, StatusWithdrawn) {
		t.Fatalf("pending -> withdrawn is not an admin review edge")
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusWithdrawn} {
		if !IsTerminal(s) {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusUnderReview, StatusInterviewScheduled, StatusApproved, StatusRejected} {
		if IsTerminal(s) {
			t.Fatalf("%s should not be terminal", s)
		}
	}
	if IsTerminal(Status("archived")) {
		t.Fatalf("unknown status is not terminal, it is invalid")
	}
}

func TestCanWithdraw(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusUnderReview, StatusInterviewScheduled} {
		if !CanWithdraw(s) {
			t.Fatalf("expected withdraw allowed from %s", s)
		}
	}
	for _, s := range []Status{StatusApproved, StatusRejected, StatusCompleted, StatusWithdrawn} {
		if CanWithdraw(s) {
			t.Fatalf("expected withdraw NOT allowed from %s", s)
		}
	}
}
