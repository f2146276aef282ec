package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one admin-visible record of a mutation.
type Entry struct {
	ID         int64     `json:"id"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Metadata   any       `json:"metadata,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Record(ctx context.Context, e Entry) error {
	var s *string
	if e.Metadata != nil {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (actor, action, entity_type, entity_id, metadata)
VALUES ($1, $2, $3, $4, CAST($5 AS jsonb))
`
	_, err := r.db.Exec(ctx, q, e.Actor, e.Action, e.EntityType, e.EntityID, s)
	return err
}

// ListForEntity returns the trail of one entity, oldest first.
func (r *Repository) ListForEntity(ctx context.Context, entityType, entityID string) ([]Entry, error) {
	const q = `
SELECT id, actor, action, entity_type, entity_id, COALESCE(metadata, '{}'::jsonb), occurred_at
FROM audit_logs
WHERE entity_type = $1 AND entity_id = $2
ORDER BY occurred_at ASC, id ASC
`
	rows, err := r.db.Query(ctx, q, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var meta map[string]any
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.EntityType, &e.EntityID, &meta, &e.OccurredAt); err != nil {
			return nil, err
		}
		e.Metadata = meta
		out = append(out, e)
	}
	return out, rows.Err()
}
