package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"makerspace/internal/apperr"
	"makerspace/internal/booking"
)

type Bookings struct{ s *Store }

func sortBookings(bs []booking.Booking, newestDateFirst bool) {
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].Date != bs[j].Date {
			if newestDateFirst {
				return bs[i].Date > bs[j].Date
			}
			return bs[i].Date < bs[j].Date
		}
		if bs[i].Time != bs[j].Time {
			return bs[i].Time < bs[j].Time
		}
		return bs[i].ID < bs[j].ID
	})
}

func (r *Bookings) filter(keep func(b booking.Booking) bool) []booking.Booking {
	out := []booking.Booking{}
	for _, b := range r.s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func (r *Bookings) Get(_ context.Context, id string) (*booking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, apperr.ErrNotFound)
	}
	return &b, nil
}

func (r *Bookings) ListForMachine(_ context.Context, machineID, date string) ([]booking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.forMachine(machineID, date), nil
}

func (r *Bookings) forMachine(machineID, date string) []booking.Booking {
	out := r.filter(func(b booking.Booking) bool { return b.MachineID == machineID && b.Date == date })
	sortBookings(out, false)
	return out
}

func (r *Bookings) ListActiveForMachine(_ context.Context, machineID string) ([]booking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := r.filter(func(b booking.Booking) bool { return b.MachineID == machineID && b.Status.IsActive() })
	sortBookings(out, false)
	return out, nil
}

func (r *Bookings) ListByUser(_ context.Context, userID string) ([]booking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := r.filter(func(b booking.Booking) bool { return b.UserID == userID })
	sortBookings(out, true)
	return out, nil
}

func (r *Bookings) List(_ context.Context, f booking.Filter) ([]booking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := r.filter(func(b booking.Booking) bool {
		return (f.Status == "" || b.Status == f.Status) &&
			(f.MachineID == "" || b.MachineID == f.MachineID) &&
			(f.Date == "" || b.Date == f.Date)
	})
	sortBookings(out, true)
	return out, nil
}

// CreateChecked runs check and the insert under the store's write lock.
func (r *Bookings) CreateChecked(_ context.Context, b *booking.Booking, check booking.CheckFunc) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.machines[b.MachineID]
	if !ok {
		return fmt.Errorf("machine %s: %w", b.MachineID, apperr.ErrNotFound)
	}
	if _, ok := r.s.users[b.UserID]; !ok {
		return fmt.Errorf("user %s: %w", b.UserID, apperr.ErrNotFound)
	}
	if err := check(*reconcile(m), r.forMachine(b.MachineID, b.Date)); err != nil {
		return err
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = booking.StatusPending
	}
	now := r.s.now()
	b.CreatedAt, b.UpdatedAt = now, now
	r.s.bookings[b.ID] = *b
	return nil
}

func (r *Bookings) Transition(_ context.Context, id string, fn func(b *booking.Booking) error) (*booking.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, apperr.ErrNotFound)
	}
	if err := fn(&b); err != nil {
		return nil, err
	}
	b.UpdatedAt = r.s.now()
	r.s.bookings[id] = b
	return &b, nil
}
