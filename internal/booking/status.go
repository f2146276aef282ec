package booking

import (
	"strings"

	"makerspace/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCanceled  Status = "Canceled"
	StatusCompleted Status = "Completed"
)

// statusSynonyms is keyed by the lowercased, separator-free form of the input.
var statusSynonyms = map[string]Status{
	"pending":   StatusPending,
	"requested": StatusPending,
	"new":       StatusPending,

	"approved":  StatusApproved,
	"confirmed": StatusApproved,
	"accepted":  StatusApproved,

	"rejected": StatusRejected,
	"declined": StatusRejected,
	"denied":   StatusRejected,

	"canceled":  StatusCanceled,
	"cancelled": StatusCanceled,
	"cancel":    StatusCanceled,

	"completed": StatusCompleted,
	"complete":  StatusCompleted,
	"done":      StatusCompleted,
	"finished":  StatusCompleted,
}

func foldKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '_', '-':
			return -1
		}
		return r
	}, s)
}

// ParseStatus reconciles a raw booking status. A booking always has a status,
// so empty or unknown input is an error rather than a default.
func ParseStatus(raw string) (Status, error) {
	if s, ok := statusSynonyms[foldKey(raw)]; ok {
		return s, nil
	}
	return "", apperr.Validation("BOOKING_STATUS_INVALID", "unknown booking status: "+strings.TrimSpace(raw))
}

// IsActive reports whether the booking still holds its slot.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCanceled, StatusCompleted:
		return true
	}
	return false
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusApproved: true, StatusRejected: true, StatusCanceled: true},
	StatusApproved:  {StatusCompleted: true, StatusCanceled: true},
	StatusRejected:  {},
	StatusCanceled:  {},
	StatusCompleted: {},
}

func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

// OwnerCanCancel: owners may only withdraw bookings that still hold a slot.
func OwnerCanCancel(s Status) bool {
	return CanTransition(s, StatusCanceled)
}
