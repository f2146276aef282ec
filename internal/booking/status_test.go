package booking

import "testing"

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"Pending":   StatusPending,
		"pending":   StatusPending,
		"APPROVED":  StatusApproved,
		"confirmed": StatusApproved,
		"declined":  StatusRejected,
		"Cancelled": StatusCanceled,
		"canceled":  StatusCanceled,
		" done ":    StatusCompleted,
	}
	for raw, want := range cases {
		got, err := ParseStatus(raw)
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", raw, got, want)
		}
		again, err := ParseStatus(string(got))
		if err != nil || again != got {
			t.Fatalf("ParseStatus not idempotent for %q: %q, %v", raw, again, err)
		}
	}

	for _, bad := range []string{"", "  ", "maybe"} {
		if _, err := ParseStatus(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]Status{
		{StatusPending, StatusApproved},
		{StatusPending, StatusRejected},
		{StatusPending, StatusCanceled},
		{StatusApproved, StatusCompleted},
		{StatusApproved, StatusCanceled},
	}
	for _, p := range allowed {
		if !CanTransition(p[0], p[1]) {
			t.Fatalf("expected %s -> %s to be allowed", p[0], p[1])
		}
	}

	denied := [][2]Status{
		{StatusPending, StatusCompleted},
		{StatusApproved, StatusRejected},
		{StatusRejected, StatusApproved},
		{StatusCanceled, StatusPending},
		{StatusCompleted, StatusCanceled},
		{Status("weird"), StatusApproved},
	}
	for _, p := range denied {
		if CanTransition(p[0], p[1]) {
			t.Fatalf("expected %s -> %s to be denied", p[0], p[1])
		}
	}

	if OwnerCanCancel(StatusRejected) || !OwnerCanCancel(StatusApproved) {
		t.Fatalf("OwnerCanCancel mismatch")
	}
}
