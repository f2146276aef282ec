package machine

import (
	"context"
	"strings"

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

const machineColumns = `id, name, category, status, COALESCE(maintenance_note, ''), requires_certification, bookable, updated_at`

// scanMachine reads a row and reconciles the stored category and status
// strings, which may hold legacy values written by older clients.
func scanMachine(row pgx.Row) (*Machine, error) {
	var m Machine
	var category, status string
	if err := row.Scan(
		&m.ID, &m.Name, &category, &status, &m.MaintenanceNote, &m.RequiresCertification, &m.Bookable, &m.UpdatedAt,
	); err != nil {
		return nil, db.Translate(err)
	}
	m.Category = ParseCategory(category)
	m.Status = ReconcileStatus(status)
	return &m, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Machine, error) {
	q := `SELECT ` + machineColumns + ` FROM machines WHERE id = $1`
	return scanMachine(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) List(ctx context.Context) ([]Machine, error) {
	q := `SELECT ` + machineColumns + ` FROM machines ORDER BY name ASC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Machine
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *Repository) Create(ctx context.Context, m *Machine) error {
	if strings.TrimSpace(m.ID) == "" {
		return apperr.Validation("MACHINE_ID_REQUIRED", "machine id is required")
	}
	if m.Category == CategorySafety {
		m.Bookable = false
	}
	if m.Status == "" {
		m.Status = StatusAvailable
	}
	const q = `
INSERT INTO machines (id, name, category, status, maintenance_note, requires_certification, bookable)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
RETURNING updated_at
`
	err := r.db.QueryRow(ctx, q,
		m.ID, m.Name, string(m.Category), string(m.Status), m.MaintenanceNote, m.RequiresCertification, m.Bookable,
	).Scan(&m.UpdatedAt)
	return db.Translate(err)
}

// UpdateStatus overwrites status and note. Concurrent writers are
// last-write-wins. An empty note clears the stored note.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status, note string) (*Machine, error) {
	q := `
UPDATE machines
SET status = $2, maintenance_note = NULLIF($3, ''), updated_at = NOW()
WHERE id = $1
RETURNING ` + machineColumns
	return scanMachine(r.db.QueryRow(ctx, q, id, string(status), note))
}

// GetForUpdate locks the machine row for the rest of tx. Booking creation
// takes this lock to serialize slot checks per machine.
func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Machine, error) {
	q := `SELECT ` + machineColumns + ` FROM machines WHERE id = $1 FOR UPDATE`
	return scanMachine(tx.QueryRow(ctx, q, id))
}
