package booking

import (
	"fmt"
	"strings"

	"makerspace/internal/apperr"
)

// DefaultSlotMinutes is the length of a slot given as a single start time.
const DefaultSlotMinutes = 60

const minutesPerDay = 24 * 60

// Slot is a half-open [Start, End) interval in minutes after midnight.
type Slot struct {
	Start int
	End   int
}

// ParseSlot accepts "HH:MM" (a one-hour slot) or "HH:MM-HH:MM".
func ParseSlot(s string) (Slot, error) {
	s = strings.TrimSpace(s)
	startRaw, endRaw, ranged := strings.Cut(s, "-")

	start, ok := parseClock(startRaw)
	if !ok {
		return Slot{}, invalidSlot()
	}
	end := start + DefaultSlotMinutes
	if ranged {
		if end, ok = parseClock(endRaw); !ok {
			return Slot{}, invalidSlot()
		}
	}
	if end <= start || end > minutesPerDay {
		return Slot{}, invalidSlot()
	}
	return Slot{Start: start, End: end}, nil
}

func invalidSlot() error {
	return apperr.Validation("BOOKING_TIME_INVALID", "time must be HH:MM or HH:MM-HH:MM within one day")
}

func parseClock(s string) (int, bool) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, false
	}
	h, okH := digits(hh)
	m, okM := digits(mm)
	if !okH || !okM || h > 24 || m > 59 || (h == 24 && m != 0) {
		return 0, false
	}
	return h*60 + m, true
}

func digits(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func (s Slot) Overlaps(o Slot) bool {
	return s.Start < o.End && o.Start < s.End
}

func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", s.Start/60, s.Start%60, s.End/60, s.End%60)
}
