package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"makerspace/internal/apperr"
	"makerspace/internal/machine"
)

type Machines struct{ s *Store }

// reconcile mirrors what the Postgres scan does to stored values.
func reconcile(m machine.Machine) *machine.Machine {
	m.Category = machine.ParseCategory(string(m.Category))
	m.Status = machine.ReconcileStatus(string(m.Status))
	return &m
}

func (r *Machines) Get(_ context.Context, id string) (*machine.Machine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.machines[id]
	if !ok {
		return nil, fmt.Errorf("machine %s: %w", id, apperr.ErrNotFound)
	}
	return reconcile(m), nil
}

func (r *Machines) List(_ context.Context) ([]machine.Machine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]machine.Machine, 0, len(r.s.machines))
	for _, m := range r.s.machines {
		out = append(out, *reconcile(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Machines) Create(_ context.Context, m *machine.Machine) error {
	if strings.TrimSpace(m.ID) == "" {
		return apperr.Validation("MACHINE_ID_REQUIRED", "machine id is required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.machines[m.ID]; taken {
		return fmt.Errorf("machine %s: %w", m.ID, apperr.ErrConflict)
	}
	if m.Category == machine.CategorySafety {
		m.Bookable = false
	}
	if m.Status == "" {
		m.Status = machine.StatusAvailable
	}
	m.UpdatedAt = r.s.now()
	r.s.machines[m.ID] = *m
	return nil
}

func (r *Machines) UpdateStatus(_ context.Context, id string, status machine.Status, note string) (*machine.Machine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.machines[id]
	if !ok {
		return nil, fmt.Errorf("machine %s: %w", id, apperr.ErrNotFound)
	}
	m.Status = status
	m.MaintenanceNote = note
	m.UpdatedAt = r.s.now()
	r.s.machines[id] = m
	return reconcile(m), nil
}
