package machine

import (
	"strings"

	"makerspace/internal/apperr"
)

type Status string

const (
	StatusAvailable   Status = "available"
	StatusInUse       Status = "in-use"
	StatusMaintenance Status = "maintenance"
)

// statusSynonyms maps folded raw values (see fold) to canonical statuses.
// Canonical values map to themselves so reconciliation is idempotent.
var statusSynonyms = map[string]Status{
	"available": StatusAvailable,
	"free":      StatusAvailable,
	"idle":      StatusAvailable,
	"ready":     StatusAvailable,
	"open":      StatusAvailable,
	"active":    StatusAvailable,

	"in-use":   StatusInUse,
	"inuse":    StatusInUse,
	"busy":     StatusInUse,
	"occupied": StatusInUse,
	"running":  StatusInUse,

	"maintenance":       StatusMaintenance,
	"maintainance":      StatusMaintenance,
	"under-maintenance": StatusMaintenance,
	"in-maintenance":    StatusMaintenance,
	"out-of-service":    StatusMaintenance,
	"out-of-order":      StatusMaintenance,
	"broken":            StatusMaintenance,
	"repair":            StatusMaintenance,
	"under-repair":      StatusMaintenance,
}

// fold lowercases, trims and collapses underscores and whitespace runs to a
// single hyphen: "In Use", "in_use" and " IN-USE " all fold to "in-use".
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	sep := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '_', '-':
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('-')
		}
		sep = false
		b.WriteRune(r)
	}
	return b.String()
}

// ReconcileStatus maps any stored or client-supplied status to a canonical
// value. Unknown and empty input is available: machines default to usable.
func ReconcileStatus(raw string) Status {
	if s, ok := statusSynonyms[fold(raw)]; ok {
		return s
	}
	return StatusAvailable
}

// ParseStatus is the strict variant used for admin input, where a typo must
// not silently become "available".
func ParseStatus(raw string) (Status, error) {
	if s, ok := statusSynonyms[fold(raw)]; ok {
		return s, nil
	}
	return "", apperr.Validation("MACHINE_STATUS_INVALID", "status must be available, in-use or maintenance")
}

// EffectiveStatus is the status used for display and eligibility. Equipment
// and safety items are not subject to the machine lifecycle and always
// report available.
func EffectiveStatus(m Machine) Status {
	switch m.Category {
	case CategoryEquipment, CategorySafety:
		return StatusAvailable
	}
	return ReconcileStatus(string(m.Status))
}

// Reconciled returns a copy of m with category and status normalized.
func Reconciled(m Machine) Machine {
	m.Category = ParseCategory(string(m.Category))
	m.Status = EffectiveStatus(m)
	return m
}
