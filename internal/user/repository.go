package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"makerspace/internal/apperr"
	"makerspace/pkg/db"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, name, email, role, certifications, password_hash, active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &role, &u.Certifications, &u.PasswordHash, &u.Active, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, db.Translate(err)
	}
	u.Role = ParseRole(role)
	if u.Certifications == nil {
		u.Certifications = []string{}
	}
	return &u, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, q, NormalizeEmail(email)))
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Create inserts u, assigning an id when empty. A duplicate email yields
// apperr.ErrConflict.
func (r *Repository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Certifications == nil {
		u.Certifications = []string{}
	}
	u.Email = NormalizeEmail(u.Email)
	q := `
INSERT INTO users (id, name, email, role, certifications, password_hash, active)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at
`
	err := r.db.QueryRow(ctx, q, u.ID, u.Name, u.Email, string(u.Role), u.Certifications, u.PasswordHash, u.Active).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	return db.Translate(err)
}

func (r *Repository) Update(ctx context.Context, id string, p Patch) (*User, error) {
	var email *string
	if p.Email != nil {
		e := NormalizeEmail(*p.Email)
		email = &e
	}
	q := `
UPDATE users
SET name = COALESCE($2, name),
    email = COALESCE($3, email),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, q, id, p.Name, email))
}

// GrantCertification appends machineID to the user's certification set.
// Granting an already-held certification is a no-op. The safety-course
// ordering is re-checked in the same statement; when it does not hold at
// write time the grant fails with apperr.ErrConflict.
func (r *Repository) GrantCertification(ctx context.Context, userID, machineID string) (*User, error) {
	var out *User
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		q := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
		u, err := scanUser(tx.QueryRow(ctx, q, userID))
		if err != nil {
			return err
		}
		if u.HasCertification(machineID) {
			out = u
			return nil
		}
		if machineID != SafetyCourseID && !u.HasSafetyCourse() {
			return fmt.Errorf("%w: safety course not held at grant time", apperr.ErrConflict)
		}
		upd := `
UPDATE users
SET certifications = array_append(certifications, $2), updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns
		out, err = scanUser(tx.QueryRow(ctx, upd, userID, machineID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) SetActive(ctx context.Context, userID string, active bool) (*User, error) {
	q := `
UPDATE users
SET active = $2, updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, q, userID, active))
}
