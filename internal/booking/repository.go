package booking

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"makerspace/internal/machine"
	"makerspace/pkg/db"
)

// CheckFunc is run inside CreateChecked with the locked machine and every
// booking already stored for the machine on the requested date. A non-nil
// return aborts the insert.
type CheckFunc func(m machine.Machine, existing []Booking) error

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const bookingColumns = `id, user_id, machine_id, booking_date::text, time_slot, status, created_at, updated_at`

// scanBooking tolerates legacy status spellings; an unreadable status is kept
// verbatim so admins can still see and fix the row.
func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var status string
	if err := row.Scan(&b.ID, &b.UserID, &b.MachineID, &b.Date, &b.Time, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, db.Translate(err)
	}
	if s, err := ParseStatus(status); err == nil {
		b.Status = s
	} else {
		b.Status = Status(status)
	}
	return &b, nil
}

func collect(rows pgx.Rows) ([]Booking, error) {
	defer rows.Close()
	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) ListForMachine(ctx context.Context, machineID, date string) ([]Booking, error) {
	return listForMachine(ctx, r.db, machineID, date)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listForMachine(ctx context.Context, q querier, machineID, date string) ([]Booking, error) {
	sql := `SELECT ` + bookingColumns + `
FROM bookings
WHERE machine_id = $1 AND booking_date = $2::date
ORDER BY time_slot ASC`
	rows, err := q.Query(ctx, sql, machineID, date)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListActiveForMachine returns Pending and Approved bookings of a machine on
// any date.
func (r *Repository) ListActiveForMachine(ctx context.Context, machineID string) ([]Booking, error) {
	q := `SELECT ` + bookingColumns + `
FROM bookings
WHERE machine_id = $1 AND status IN ('Pending', 'Approved')
ORDER BY booking_date ASC, time_slot ASC`
	rows, err := r.db.Query(ctx, q, machineID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	q := `SELECT ` + bookingColumns + `
FROM bookings
WHERE user_id = $1
ORDER BY booking_date DESC, time_slot ASC`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *Repository) List(ctx context.Context, f Filter) ([]Booking, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if f.MachineID != "" {
		add("machine_id = ?", f.MachineID)
	}
	if f.Date != "" {
		add("booking_date = ?::date", f.Date)
	}

	q := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY booking_date DESC, time_slot ASC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// CreateChecked inserts b only if check accepts it. The machine row is locked
// for the duration of the transaction so concurrent requests for the same
// machine are checked one after another against committed state.
func (r *Repository) CreateChecked(ctx context.Context, b *Booking, check CheckFunc) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		m, err := machine.GetForUpdate(ctx, tx, b.MachineID)
		if err != nil {
			return err
		}
		existing, err := listForMachine(ctx, tx, b.MachineID, b.Date)
		if err != nil {
			return err
		}
		if err := check(*m, existing); err != nil {
			return err
		}

		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		if b.Status == "" {
			b.Status = StatusPending
		}
		const q = `
INSERT INTO bookings (id, user_id, machine_id, booking_date, time_slot, status)
VALUES ($1, $2, $3, $4::date, $5, $6)
RETURNING created_at, updated_at
`
		err = tx.QueryRow(ctx, q, b.ID, b.UserID, b.MachineID, b.Date, b.Time, string(b.Status)).
			Scan(&b.CreatedAt, &b.UpdatedAt)
		return db.Translate(err)
	})
}

// Transition locks the booking, lets fn validate and mutate it, then persists
// the new status.
func (r *Repository) Transition(ctx context.Context, id string, fn func(b *Booking) error) (*Booking, error) {
	var out *Booking
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
		b, err := scanBooking(tx.QueryRow(ctx, q, id))
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
		const upd = `
UPDATE bookings
SET status = $2, updated_at = NOW()
WHERE id = $1
RETURNING updated_at
`
		if err := tx.QueryRow(ctx, upd, b.ID, string(b.Status)).Scan(&b.UpdatedAt); err != nil {
			return db.Translate(err)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
