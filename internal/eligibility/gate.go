// Package eligibility answers "can this user book this machine at this time"
// with a single, most actionable reason.
package eligibility

import (
	"makerspace/internal/booking"
	"makerspace/internal/certification"
	"makerspace/internal/machine"
	"makerspace/internal/user"
)

type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonNotBookableCategory  Reason = "not-bookable-category"
	ReasonSafetyCourseRequired Reason = "safety-course-required"
	ReasonNotCertified         Reason = "not-certified"
	ReasonMachineUnavailable   Reason = "machine-unavailable"
	ReasonTimeSlotTaken        Reason = "time-slot-taken"
)

// Reasons lists every ineligibility reason in precedence order.
var Reasons = []Reason{
	ReasonNotBookableCategory,
	ReasonSafetyCourseRequired,
	ReasonNotCertified,
	ReasonMachineUnavailable,
	ReasonTimeSlotTaken,
}

var messages = map[Reason]string{
	ReasonNone:                 "eligible to book",
	ReasonNotBookableCategory:  "this item cannot be booked",
	ReasonSafetyCourseRequired: "complete the safety course first",
	ReasonNotCertified:         "you are not certified for this machine",
	ReasonMachineUnavailable:   "the machine is not available",
	ReasonTimeSlotTaken:        "the requested time slot is already taken",
}

// Request is everything the gate looks at. Existing holds the bookings of
// the machine on Date; bookings for other machines or dates are ignored.
type Request struct {
	User     user.User
	Machine  machine.Machine
	Date     string
	Slot     booking.Slot
	Existing []booking.Booking
}

type Decision struct {
	Eligible bool   `json:"eligible"`
	Reason   Reason `json:"reason,omitempty"`
}

func (d Decision) Message() string {
	return messages[d.Reason]
}

func eligible() Decision { return Decision{Eligible: true} }

func ineligible(r Reason) Decision { return Decision{Reason: r} }

// Check evaluates the request. The first failing rule wins.
func Check(req Request) Decision {
	m := machine.Reconciled(req.Machine)
	u := req.User

	if !m.CanBeBooked() {
		return ineligible(ReasonNotBookableCategory)
	}
	if !u.IsAdmin() && m.ID != user.SafetyCourseID && !u.HasSafetyCourse() {
		return ineligible(ReasonSafetyCourseRequired)
	}
	if res := certification.Evaluate(u, m.ID, m.RequiresCertification); !res.Certified {
		return ineligible(ReasonNotCertified)
	}
	if m.Status != machine.StatusAvailable {
		return ineligible(ReasonMachineUnavailable)
	}
	if SlotTaken(m.ID, req.Date, req.Slot, req.Existing) {
		return ineligible(ReasonTimeSlotTaken)
	}
	return eligible()
}

// SlotTaken reports whether an active booking of machineID on date overlaps
// slot. A stored slot that no longer parses is treated as taken.
func SlotTaken(machineID, date string, slot booking.Slot, existing []booking.Booking) bool {
	for _, b := range existing {
		if b.MachineID != machineID || b.Date != date || !b.Status.IsActive() {
			continue
		}
		other, ok := b.Slot()
		if !ok || other.Overlaps(slot) {
			return true
		}
	}
	return false
}
