// Package reservation creates and withdraws bookings on behalf of members.
// Every create re-runs the eligibility gate inside the store's atomic
// create-if-not-conflicting primitive.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"makerspace/internal/apperr"
	"makerspace/internal/booking"
	"makerspace/internal/certification"
	"makerspace/internal/eligibility"
	"makerspace/internal/events"
	"makerspace/internal/machine"
	"makerspace/internal/user"
	"makerspace/pkg/metrics"
)

type Users interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

type Machines interface {
	Get(ctx context.Context, id string) (*machine.Machine, error)
}

type Bookings interface {
	Get(ctx context.Context, id string) (*booking.Booking, error)
	ListForMachine(ctx context.Context, machineID, date string) ([]booking.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]booking.Booking, error)
	CreateChecked(ctx context.Context, b *booking.Booking, check booking.CheckFunc) error
	Transition(ctx context.Context, id string, fn func(b *booking.Booking) error) (*booking.Booking, error)
}

type Service struct {
	Users    Users
	Machines Machines
	Bookings Bookings
	Events   *events.Emitter
	Metrics  *metrics.Metrics
	Log      logrus.FieldLogger

	// Now is the clock used to refuse past dates; nil means time.Now.
	Now func() time.Time
}

// Advice is the advisory answer shown before a booking is submitted.
type Advice struct {
	Decision      eligibility.Decision `json:"decision"`
	Message       string               `json:"message"`
	Certification certification.Result `json:"certification"`
	Machine       machine.Machine      `json:"machine"`
}

// ReasonCode is the API error code for an ineligibility reason, e.g.
// "not-certified" -> "NOT_CERTIFIED".
func ReasonCode(r eligibility.Reason) string {
	return strings.ToUpper(strings.ReplaceAll(string(r), "-", "_"))
}

func reasonError(d eligibility.Decision) error {
	if d.Reason == eligibility.ReasonTimeSlotTaken {
		return fmt.Errorf("%w: %s", apperr.ErrConflict, d.Message())
	}
	return apperr.Validation(ReasonCode(d.Reason), d.Message())
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Service) parseRequest(date, slot string) (string, booking.Slot, error) {
	d, err := booking.ParseDate(date)
	if err != nil {
		return "", booking.Slot{}, err
	}
	if d < s.now().Format(booking.DateLayout) {
		return "", booking.Slot{}, apperr.Validation("BOOKING_DATE_PAST", "date must not be in the past")
	}
	sl, err := booking.ParseSlot(slot)
	if err != nil {
		return "", booking.Slot{}, err
	}
	return d, sl, nil
}

func (s Service) activeUser(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, fmt.Errorf("%w: account is deactivated", apperr.ErrUnauthorized)
	}
	return u, nil
}

// Check is the advisory gate. It reads committed state without locking.
func (s Service) Check(ctx context.Context, userID, machineID, date, slot string) (*Advice, error) {
	d, sl, err := s.parseRequest(date, slot)
	if err != nil {
		return nil, err
	}
	u, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	m, err := s.Machines.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}
	existing, err := s.Bookings.ListForMachine(ctx, machineID, d)
	if err != nil {
		return nil, err
	}

	dec := eligibility.Check(eligibility.Request{User: *u, Machine: *m, Date: d, Slot: sl, Existing: existing})
	s.observe(dec)
	return &Advice{
		Decision:      dec,
		Message:       dec.Message(),
		Certification: certification.Evaluate(*u, m.ID, m.RequiresCertification),
		Machine:       machine.Reconciled(*m),
	}, nil
}

// Create books the slot when the gate passes against the locked state.
func (s Service) Create(ctx context.Context, userID, machineID, date, slot string) (*booking.Booking, error) {
	d, sl, err := s.parseRequest(date, slot)
	if err != nil {
		return nil, err
	}
	u, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	b := &booking.Booking{UserID: u.ID, MachineID: machineID, Date: d, Time: sl.String(), Status: booking.StatusPending}
	var dec eligibility.Decision
	err = s.Bookings.CreateChecked(ctx, b, func(m machine.Machine, existing []booking.Booking) error {
		dec = eligibility.Check(eligibility.Request{User: *u, Machine: m, Date: d, Slot: sl, Existing: existing})
		if dec.Eligible {
			return nil
		}
		return reasonError(dec)
	})

	log := s.Log.WithFields(logrus.Fields{"user_id": u.ID, "machine_id": machineID, "date": d, "slot": b.Time})
	if err != nil {
		if dec.Reason != eligibility.ReasonNone {
			s.observe(dec)
			log.WithField("reason", dec.Reason).Info("booking refused")
		}
		if errors.Is(err, apperr.ErrConflict) && s.Metrics != nil {
			s.Metrics.BookingConflicts.Inc()
		}
		return nil, err
	}

	s.observe(dec)
	if s.Metrics != nil {
		s.Metrics.BookingsCreated.Inc()
	}
	log.WithField("booking_id", b.ID).Info("booking created")
	s.Events.Emit(ctx, events.TopicBookingCreated, u.ID, b)
	return b, nil
}

// Cancel withdraws the caller's own Pending or Approved booking. Bookings
// of other users are reported as not found.
func (s Service) Cancel(ctx context.Context, userID, bookingID string) (*booking.Booking, error) {
	var from booking.Status
	b, err := s.Bookings.Transition(ctx, bookingID, func(b *booking.Booking) error {
		if b.UserID != userID {
			return fmt.Errorf("booking %s: %w", bookingID, apperr.ErrNotFound)
		}
		if !booking.OwnerCanCancel(b.Status) {
			return apperr.Validation("BOOKING_TRANSITION_INVALID", fmt.Sprintf("a %s booking cannot be canceled", b.Status))
		}
		from = b.Status
		b.Status = booking.StatusCanceled
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Metrics != nil {
		s.Metrics.BookingTransitions.WithLabelValues(string(booking.StatusCanceled)).Inc()
	}
	s.Log.WithFields(logrus.Fields{"user_id": userID, "booking_id": b.ID}).Info("booking canceled by owner")
	s.Events.Emit(ctx, events.TopicBookingStatusChanged, userID, map[string]any{
		"bookingId": b.ID, "machineId": b.MachineID, "from": from, "to": b.Status,
	})
	return b, nil
}

func (s Service) Mine(ctx context.Context, userID string) ([]booking.Booking, error) {
	return s.Bookings.ListByUser(ctx, userID)
}

func (s Service) observe(d eligibility.Decision) {
	if s.Metrics == nil {
		return
	}
	label := string(d.Reason)
	if d.Eligible {
		label = "eligible"
	}
	s.Metrics.EligibilityDecisions.WithLabelValues(label).Inc()
}
