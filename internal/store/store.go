// Package store groups the repositories behind one value so the HTTP layer
// does not care which driver backs them.
package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"makerspace/internal/audit"
	"makerspace/internal/booking"
	"makerspace/internal/course"
	"makerspace/internal/machine"
	"makerspace/internal/store/memory"
	"makerspace/internal/user"
)

type Users interface {
	Get(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
	Update(ctx context.Context, id string, p user.Patch) (*user.User, error)
	GrantCertification(ctx context.Context, userID, machineID string) (*user.User, error)
	List(ctx context.Context) ([]user.User, error)
	SetActive(ctx context.Context, userID string, active bool) (*user.User, error)
}

type Machines interface {
	Get(ctx context.Context, id string) (*machine.Machine, error)
	List(ctx context.Context) ([]machine.Machine, error)
	Create(ctx context.Context, m *machine.Machine) error
	UpdateStatus(ctx context.Context, id string, status machine.Status, note string) (*machine.Machine, error)
}

type Bookings interface {
	Get(ctx context.Context, id string) (*booking.Booking, error)
	ListForMachine(ctx context.Context, machineID, date string) ([]booking.Booking, error)
	ListActiveForMachine(ctx context.Context, machineID string) ([]booking.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]booking.Booking, error)
	List(ctx context.Context, f booking.Filter) ([]booking.Booking, error)
	CreateChecked(ctx context.Context, b *booking.Booking, check booking.CheckFunc) error
	Transition(ctx context.Context, id string, fn func(b *booking.Booking) error) (*booking.Booking, error)
}

type Courses interface {
	course.Store
	Create(ctx context.Context, c *course.Course, q *course.Quiz) error
}

type Audit interface {
	Record(ctx context.Context, e audit.Entry) error
	ListForEntity(ctx context.Context, entityType, entityID string) ([]audit.Entry, error)
}

type Set struct {
	Users    Users
	Machines Machines
	Bookings Bookings
	Courses  Courses
	Audit    Audit

	// Ping reports store readiness.
	Ping func(ctx context.Context) error
}

func Postgres(pool *pgxpool.Pool) Set {
	return Set{
		Users:    user.NewRepository(pool),
		Machines: machine.NewRepository(pool),
		Bookings: booking.NewRepository(pool),
		Courses:  course.NewRepository(pool),
		Audit:    audit.NewRepository(pool),
		Ping:     pool.Ping,
	}
}

func Memory() Set {
	m := memory.New()
	return MemoryFrom(m)
}

func MemoryFrom(m *memory.Store) Set {
	return Set{
		Users:    m.Users(),
		Machines: m.Machines(),
		Bookings: m.Bookings(),
		Courses:  m.Courses(),
		Audit:    m.Audit(),
		Ping:     func(context.Context) error { return nil },
	}
}
