package booking

import (
	"strings"
	"time"

	"makerspace/internal/apperr"
)

const DateLayout = "2006-01-02"

type Booking struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	MachineID string    `json:"machineId"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Slot returns the parsed time slot. ok is false for malformed stored values.
func (b Booking) Slot() (Slot, bool) {
	s, err := ParseSlot(b.Time)
	return s, err == nil
}

// Filter narrows admin listings. Empty fields match everything.
type Filter struct {
	Status    Status
	MachineID string
	Date      string
}

// ParseDate validates a YYYY-MM-DD calendar date and returns it normalized.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", apperr.Validation("BOOKING_DATE_INVALID", "date must be YYYY-MM-DD")
	}
	return t.Format(DateLayout), nil
}
