package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"makerspace/internal/apperr"
	"makerspace/internal/booking"
	"makerspace/internal/eligibility"
	"makerspace/internal/machine"
	"makerspace/internal/user"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Machines().Create(ctx, &machine.Machine{ID: "laser-cutter", Name: "Laser", RequiresCertification: true, Bookable: true}))
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		require.NoError(t, s.Users().Create(ctx, &user.User{ID: id, Email: id + "@example.com", Active: true}))
	}
	return s
}

func TestCreateChecked_OneWinnerPerSlot(t *testing.T) {
	s := seeded(t)
	slot, err := booking.ParseSlot("10:00-11:00")
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			b := &booking.Booking{UserID: userID, MachineID: "laser-cutter", Date: "2026-03-10", Time: slot.String()}
			err := s.Bookings().CreateChecked(context.Background(), b, func(_ machine.Machine, existing []booking.Booking) error {
				if eligibility.SlotTaken("laser-cutter", "2026-03-10", slot, existing) {
					return apperr.ErrConflict
				}
				return nil
			})
			if err == nil {
				wins.Add(1)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	all, err := s.Bookings().List(context.Background(), booking.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateChecked_UnknownReferences(t *testing.T) {
	s := seeded(t)
	ok := func(machine.Machine, []booking.Booking) error { return nil }

	err := s.Bookings().CreateChecked(context.Background(), &booking.Booking{UserID: "a", MachineID: "nope"}, ok)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	err = s.Bookings().CreateChecked(context.Background(), &booking.Booking{UserID: "nobody", MachineID: "laser-cutter"}, ok)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestMachines_ReconcileOnRead(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Machines().Create(ctx, &machine.Machine{ID: "cnc", Name: "CNC", Category: "Machine", Status: "Out Of Service", Bookable: true}))
	require.NoError(t, s.Machines().Create(ctx, &machine.Machine{ID: "cabinet", Name: "Safety", Category: machine.CategorySafety, Bookable: true}))

	m, err := s.Machines().Get(ctx, "cnc")
	require.NoError(t, err)
	assert.Equal(t, machine.StatusMaintenance, m.Status)

	cab, err := s.Machines().Get(ctx, "cabinet")
	require.NoError(t, err)
	assert.False(t, cab.Bookable, "safety items are stored as not bookable")

	err = s.Machines().Create(ctx, &machine.Machine{ID: "cnc", Name: "Dup"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestUsers_GrantCertificationOrdering(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	_, err := s.Users().GrantCertification(ctx, "a", "laser-cutter")
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	u, err := s.Users().GrantCertification(ctx, "a", user.SafetyCourseID)
	require.NoError(t, err)
	assert.True(t, u.HasSafetyCourse())

	u, err = s.Users().GrantCertification(ctx, "a", "laser-cutter")
	require.NoError(t, err)
	u, err = s.Users().GrantCertification(ctx, "a", "laser-cutter")
	require.NoError(t, err)
	assert.Equal(t, []string{user.SafetyCourseID, "laser-cutter"}, u.Certifications)
}

func TestUsers_EmailIsUniqueAndNormalized(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	err := s.Users().Create(ctx, &user.User{Email: " A@Example.com "})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	u, err := s.Users().GetByEmail(ctx, "B@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, "b", u.ID)

	// Returned values are copies.
	u.Certifications = append(u.Certifications, "laser-cutter")
	again, err := s.Users().Get(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, again.Certifications)
}

func TestBookings_ListFiltersAndActive(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	ok := func(machine.Machine, []booking.Booking) error { return nil }

	b1 := &booking.Booking{UserID: "a", MachineID: "laser-cutter", Date: "2026-03-10", Time: "10:00-11:00"}
	b2 := &booking.Booking{UserID: "b", MachineID: "laser-cutter", Date: "2026-03-11", Time: "10:00-11:00"}
	require.NoError(t, s.Bookings().CreateChecked(ctx, b1, ok))
	require.NoError(t, s.Bookings().CreateChecked(ctx, b2, ok))

	_, err := s.Bookings().Transition(ctx, b2.ID, func(b *booking.Booking) error {
		b.Status = booking.StatusCanceled
		return nil
	})
	require.NoError(t, err)

	active, err := s.Bookings().ListActiveForMachine(ctx, "laser-cutter")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, b1.ID, active[0].ID)

	canceled, err := s.Bookings().List(ctx, booking.Filter{Status: booking.StatusCanceled})
	require.NoError(t, err)
	require.Len(t, canceled, 1)
	assert.Equal(t, b2.ID, canceled[0].ID)

	onDay, err := s.Bookings().ListForMachine(ctx, "laser-cutter", "2026-03-10")
	require.NoError(t, err)
	assert.Len(t, onDay, 1)
}
