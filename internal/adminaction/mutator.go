// Package adminaction applies admin-issued changes. Every successful change
// is audited and published.
package adminaction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"makerspace/internal/apperr"
	"makerspace/internal/audit"
	"makerspace/internal/booking"
	"makerspace/internal/certification"
	"makerspace/internal/events"
	"makerspace/internal/machine"
	"makerspace/internal/user"
	"makerspace/pkg/metrics"
)

type Users interface {
	Get(ctx context.Context, id string) (*user.User, error)
	GrantCertification(ctx context.Context, userID, machineID string) (*user.User, error)
	SetActive(ctx context.Context, userID string, active bool) (*user.User, error)
}

type Machines interface {
	Get(ctx context.Context, id string) (*machine.Machine, error)
	Create(ctx context.Context, m *machine.Machine) error
	UpdateStatus(ctx context.Context, id string, status machine.Status, note string) (*machine.Machine, error)
}

type Bookings interface {
	ListActiveForMachine(ctx context.Context, machineID string) ([]booking.Booking, error)
	Transition(ctx context.Context, id string, fn func(b *booking.Booking) error) (*booking.Booking, error)
}

type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

type Mutator struct {
	Users    Users
	Machines Machines
	Bookings Bookings
	Audit    Auditor
	Events   *events.Emitter
	Metrics  *metrics.Metrics
	Log      logrus.FieldLogger
}

// MachineStatusResult carries the updated machine and the active bookings
// that now need a human decision. Conflicts are never canceled here.
type MachineStatusResult struct {
	Machine   *machine.Machine  `json:"machine"`
	Conflicts []booking.Booking `json:"conflicts"`
}

func requireAdmin(actor user.User) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin role required", apperr.ErrUnauthorized)
	}
	return nil
}

func (m Mutator) record(ctx context.Context, actor user.User, action ActionType, entityType, entityID string, meta any) {
	if m.Audit == nil {
		return
	}
	err := m.Audit.Record(ctx, audit.Entry{
		Actor:      actor.ID,
		Action:     string(action),
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   meta,
	})
	if err != nil {
		m.Log.WithError(err).WithField("action", action).Warn("audit record failed")
	}
}

// SetMachineStatus overwrites the machine status (last write wins). An empty
// maintenance note is accepted and logged.
func (m Mutator) SetMachineStatus(ctx context.Context, actor user.User, machineID, rawStatus, note string) (*MachineStatusResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	status, err := machine.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	prev, err := m.Machines.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}

	note = strings.TrimSpace(note)
	log := m.Log.WithFields(logrus.Fields{"actor": actor.ID, "machine_id": machineID, "status": status})
	if status == machine.StatusMaintenance && note == "" {
		log.Warn("maintenance set without a note")
	}

	updated, err := m.Machines.UpdateStatus(ctx, machineID, status, note)
	if err != nil {
		return nil, err
	}

	conflicts := []booking.Booking{}
	if status != machine.StatusAvailable {
		active, err := m.Bookings.ListActiveForMachine(ctx, machineID)
		if err != nil {
			return nil, fmt.Errorf("list active bookings: %w", err)
		}
		if active != nil {
			conflicts = active
		}
	}

	ids := make([]string, 0, len(conflicts))
	for _, b := range conflicts {
		ids = append(ids, b.ID)
	}
	meta := map[string]any{"from": prev.Status, "to": status, "note": note, "conflictingBookings": ids}
	m.record(ctx, actor, ActionSetMachineStatus, "machine", machineID, meta)
	m.Events.Emit(ctx, events.TopicMachineStatusChanged, actor.ID, map[string]any{
		"machineId": machineID, "from": prev.Status, "to": status, "note": note, "conflicts": conflicts,
	})
	if m.Metrics != nil {
		m.Metrics.MachineStatusChanges.WithLabelValues(string(status)).Inc()
	}
	log.WithField("conflicts", len(conflicts)).Info("machine status changed")

	return &MachineStatusResult{Machine: updated, Conflicts: conflicts}, nil
}

// Conflicts lists the active bookings that clash with the machine's current
// effective status. An available machine has none.
func (m Mutator) Conflicts(ctx context.Context, actor user.User, machineID string) ([]booking.Booking, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	mc, err := m.Machines.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if machine.EffectiveStatus(*mc) == machine.StatusAvailable {
		return []booking.Booking{}, nil
	}
	active, err := m.Bookings.ListActiveForMachine(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		active = []booking.Booking{}
	}
	return active, nil
}

type NewMachine struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Category              string `json:"category"`
	Status                string `json:"status"`
	MaintenanceNote       string `json:"maintenanceNote"`
	RequiresCertification *bool  `json:"requiresCertification"`
	Bookable              *bool  `json:"bookable"`
}

// CreateMachine adds a catalogue entry. Certification is required and the
// machine is bookable unless stated otherwise; safety items never are.
func (m Mutator) CreateMachine(ctx context.Context, actor user.User, in NewMachine) (*machine.Machine, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("MACHINE_NAME_REQUIRED", "machine name is required")
	}
	mc := &machine.Machine{
		ID:                    strings.TrimSpace(in.ID),
		Name:                  name,
		Category:              machine.ParseCategory(in.Category),
		Status:                machine.StatusAvailable,
		MaintenanceNote:       strings.TrimSpace(in.MaintenanceNote),
		RequiresCertification: true,
		Bookable:              true,
	}
	if in.Status != "" {
		st, err := machine.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		mc.Status = st
	}
	if in.RequiresCertification != nil {
		mc.RequiresCertification = *in.RequiresCertification
	}
	if in.Bookable != nil {
		mc.Bookable = *in.Bookable
	}
	if err := m.Machines.Create(ctx, mc); err != nil {
		return nil, err
	}
	m.record(ctx, actor, ActionCreateMachine, "machine", mc.ID, mc)
	return mc, nil
}

// SetBookingStatus moves a booking along the transition table.
func (m Mutator) SetBookingStatus(ctx context.Context, actor user.User, bookingID, rawStatus string) (*booking.Booking, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	to, err := booking.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	var from booking.Status
	b, err := m.Bookings.Transition(ctx, bookingID, func(b *booking.Booking) error {
		if !booking.CanTransition(b.Status, to) {
			return apperr.Validation("BOOKING_TRANSITION_INVALID", fmt.Sprintf("cannot move a %s booking to %s", b.Status, to))
		}
		from = b.Status
		b.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.record(ctx, actor, ActionSetBookingStatus, "booking", b.ID, map[string]any{"from": from, "to": to})
	m.Events.Emit(ctx, events.TopicBookingStatusChanged, actor.ID, map[string]any{
		"bookingId": b.ID, "userId": b.UserID, "machineId": b.MachineID, "from": from, "to": to,
	})
	if m.Metrics != nil {
		m.Metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	}
	m.Log.WithFields(logrus.Fields{"actor": actor.ID, "booking_id": b.ID, "from": from, "to": to}).Info("booking status changed")
	return b, nil
}

// GrantCertification is the manual grant. It obeys the same safety-course
// ordering as a quiz pass.
func (m Mutator) GrantCertification(ctx context.Context, actor user.User, userID, machineID string) (*user.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	machineID = strings.TrimSpace(machineID)
	if _, err := m.Machines.Get(ctx, machineID); err != nil {
		return nil, err
	}
	target, err := m.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := certification.CheckGrant(*target, machineID); err != nil {
		return nil, err
	}
	if target.HasCertification(machineID) {
		return target, nil
	}

	u, err := m.Users.GrantCertification(ctx, userID, machineID)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, certification.ErrSafetyCourseRequired
		}
		return nil, err
	}

	m.record(ctx, actor, ActionGrantCertification, "user", userID, map[string]string{"machineId": machineID, "via": "admin"})
	m.Events.Emit(ctx, events.TopicCertificationGranted, actor.ID, map[string]string{
		"userId": userID, "machineId": machineID, "via": "admin",
	})
	if m.Metrics != nil {
		m.Metrics.CertificationsGranted.Inc()
	}
	return u, nil
}

// SetUserActive soft-deactivates or restores an account. Admins cannot
// deactivate themselves.
func (m Mutator) SetUserActive(ctx context.Context, actor user.User, userID string, active bool) (*user.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !active && actor.ID == userID {
		return nil, apperr.Validation("SELF_DEACTIVATION", "admins cannot deactivate their own account")
	}
	u, err := m.Users.SetActive(ctx, userID, active)
	if err != nil {
		return nil, err
	}
	m.record(ctx, actor, ActionSetUserActive, "user", userID, map[string]bool{"active": active})
	m.Events.Emit(ctx, events.TopicUserActiveChanged, actor.ID, map[string]any{"userId": userID, "active": active})
	return u, nil
}
