package adminaction

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"makerspace/internal/apperr"
	"makerspace/internal/booking"
	"makerspace/internal/certification"
	"makerspace/internal/events"
	"makerspace/internal/machine"
	"makerspace/internal/store/memory"
	"makerspace/internal/user"
	"makerspace/pkg/logging"
	"makerspace/pkg/metrics"
)

var (
	admin  = user.User{ID: "root", Email: "root@example.com", Role: user.RoleAdmin, Active: true, Certifications: []string{user.SafetyCourseID}}
	member = user.User{ID: "ada", Email: "ada@example.com", Role: user.RoleStandard, Active: true, Certifications: []string{user.SafetyCourseID, "laser-cutter"}}
	novice = user.User{ID: "bob", Email: "bob@example.com", Role: user.RoleStandard, Active: true}
)

type fixture struct {
	m       Mutator
	store   *memory.Store
	rec     *events.Recorder
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	for _, mc := range []machine.Machine{
		{ID: user.SafetyCourseID, Name: "Safety", Category: machine.CategorySafety, RequiresCertification: true},
		{ID: "laser-cutter", Name: "Laser", RequiresCertification: true, Bookable: true},
	} {
		mc := mc
		require.NoError(t, st.Machines().Create(ctx, &mc))
	}
	for _, u := range []user.User{admin, member, novice} {
		u := u
		require.NoError(t, st.Users().Create(ctx, &u))
	}

	rec := &events.Recorder{}
	mt := metrics.New()
	log := logging.Discard()
	return fixture{
		m: Mutator{
			Users:    st.Users(),
			Machines: st.Machines(),
			Bookings: st.Bookings(),
			Audit:    st.Audit(),
			Events:   events.NewEmitter(rec, log, mt),
			Metrics:  mt,
			Log:      log,
		},
		store:   st,
		rec:     rec,
		metrics: mt,
	}
}

func (f fixture) book(t *testing.T, date, slot string) booking.Booking {
	t.Helper()
	b := &booking.Booking{UserID: member.ID, MachineID: "laser-cutter", Date: date, Time: slot}
	require.NoError(t, f.store.Bookings().CreateChecked(context.Background(), b, func(machine.Machine, []booking.Booking) error { return nil }))
	return *b
}

func TestSetMachineStatus_ReportsConflictsWithoutCanceling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.book(t, "2026-03-10", "10:00-11:00")
	f.book(t, "2026-03-11", "10:00-11:00")

	res, err := f.m.SetMachineStatus(ctx, admin, "laser-cutter", "Under Maintenance", "")
	require.NoError(t, err)
	assert.Equal(t, machine.StatusMaintenance, res.Machine.Status)
	require.Len(t, res.Conflicts, 2)

	got, err := f.store.Bookings().Get(ctx, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, got.Status, "bookings are left for an admin to resolve")

	conflicts, err := f.m.Conflicts(ctx, admin, "laser-cutter")
	require.NoError(t, err)
	assert.Len(t, conflicts, 2)

	trail, err := f.store.Audit().ListForEntity(ctx, "machine", "laser-cutter")
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, string(ActionSetMachineStatus), trail[0].Action)
	assert.Equal(t, []events.Topic{events.TopicMachineStatusChanged}, f.rec.Topics())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.MachineStatusChanges.WithLabelValues(string(machine.StatusMaintenance))))
}

func TestSetMachineStatus_AvailableHasNoConflicts(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2026-03-10", "10:00-11:00")

	res, err := f.m.SetMachineStatus(context.Background(), admin, "laser-cutter", "available", "")
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	assert.NotNil(t, res.Conflicts)
}

func TestSetMachineStatus_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.m.SetMachineStatus(ctx, member, "laser-cutter", "maintenance", "")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	_, err = f.m.SetMachineStatus(ctx, admin, "laser-cutter", "on fire", "")
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok, "unknown statuses are rejected, got %v", err)

	_, err = f.m.SetMachineStatus(ctx, admin, "missing", "available", "")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	assert.Empty(t, f.rec.Events())
}

func TestCreateMachine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mc, err := f.m.CreateMachine(ctx, admin, NewMachine{ID: "bandsaw", Name: "Bandsaw"})
	require.NoError(t, err)
	assert.True(t, mc.RequiresCertification)
	assert.True(t, mc.Bookable)
	assert.Equal(t, machine.StatusAvailable, mc.Status)

	no := false
	mc, err = f.m.CreateMachine(ctx, admin, NewMachine{ID: "multimeter", Name: "Multimeter", Category: "Equipment", RequiresCertification: &no})
	require.NoError(t, err)
	assert.Equal(t, machine.CategoryEquipment, mc.Category)
	assert.False(t, mc.RequiresCertification)

	_, err = f.m.CreateMachine(ctx, admin, NewMachine{ID: "bandsaw", Name: "Again"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = f.m.CreateMachine(ctx, admin, NewMachine{ID: "blank"})
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "MACHINE_NAME_REQUIRED", ve.Code)

	_, err = f.m.CreateMachine(ctx, member, NewMachine{ID: "x", Name: "X"})
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestSetBookingStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, "2026-03-10", "10:00-11:00")

	got, err := f.m.SetBookingStatus(ctx, admin, b.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusApproved, got.Status)

	got, err = f.m.SetBookingStatus(ctx, admin, b.ID, "Completed")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCompleted, got.Status)

	_, err = f.m.SetBookingStatus(ctx, admin, b.ID, "Pending")
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "BOOKING_TRANSITION_INVALID", ve.Code)

	_, err = f.m.SetBookingStatus(ctx, admin, "missing", "Approved")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingTransitions.WithLabelValues(string(booking.StatusCompleted))))
}

func TestGrantCertification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.m.GrantCertification(ctx, admin, novice.ID, "laser-cutter")
	assert.True(t, errors.Is(err, certification.ErrSafetyCourseRequired))

	u, err := f.m.GrantCertification(ctx, admin, novice.ID, user.SafetyCourseID)
	require.NoError(t, err)
	assert.True(t, u.HasSafetyCourse())

	u, err = f.m.GrantCertification(ctx, admin, novice.ID, "laser-cutter")
	require.NoError(t, err)
	assert.True(t, u.HasCertification("laser-cutter"))

	// Already held: no second grant.
	_, err = f.m.GrantCertification(ctx, admin, novice.ID, "laser-cutter")
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CertificationsGranted))

	_, err = f.m.GrantCertification(ctx, admin, novice.ID, "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = f.m.GrantCertification(ctx, member, novice.ID, user.SafetyCourseID)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestSetUserActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.m.SetUserActive(ctx, admin, member.ID, false)
	require.NoError(t, err)
	assert.False(t, u.Active)

	_, err = f.m.SetUserActive(ctx, admin, admin.ID, false)
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "SELF_DEACTIVATION", ve.Code)

	assert.Equal(t, []events.Topic{events.TopicUserActiveChanged}, f.rec.Topics())
}
