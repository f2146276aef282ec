package memory

import (
	"context"

	"makerspace/internal/audit"
)

type Audit struct{ s *Store }

func (r *Audit) Record(_ context.Context, e audit.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seq++
	e.ID = r.s.seq
	if e.OccurredAt.IsZero() {
		e.OccurredAt = r.s.now()
	}
	r.s.audit = append(r.s.audit, e)
	return nil
}

func (r *Audit) ListForEntity(_ context.Context, entityType, entityID string) ([]audit.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []audit.Entry{}
	for _, e := range r.s.audit {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}
