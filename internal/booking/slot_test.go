package booking

import "testing"

func TestParseSlot(t *testing.T) {
	cases := []struct {
		in   string
		want Slot
	}{
		{"10:00", Slot{600, 660}},
		{"9:30", Slot{570, 630}},
		{"10:00-12:30", Slot{600, 750}},
		{" 23:00 - 24:00 ", Slot{1380, 1440}},
	}
	for _, tc := range cases {
		got, err := ParseSlot(tc.in)
		if err != nil {
			t.Fatalf("ParseSlot(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseSlot(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "10", "10:0", "25:00", "10:60", "12:00-11:00", "10:00-10:00", "23:30", "ab:cd", "+1:00"} {
		if _, err := ParseSlot(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSlotOverlaps(t *testing.T) {
	a := Slot{600, 660}
	if !a.Overlaps(Slot{630, 700}) {
		t.Fatalf("expected overlap")
	}
	if a.Overlaps(Slot{660, 720}) || a.Overlaps(Slot{540, 600}) {
		t.Fatalf("adjacent slots must not overlap")
	}
	if a.String() != "10:00-11:00" {
		t.Fatalf("String() = %q", a.String())
	}
}

func TestParseDate(t *testing.T) {
	if d, err := ParseDate(" 2024-05-01 "); err != nil || d != "2024-05-01" {
		t.Fatalf("ParseDate = %q, %v", d, err)
	}
	if _, err := ParseDate("2024-02-30"); err == nil {
		t.Fatalf("expected invalid date error")
	}
}
