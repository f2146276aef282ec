package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"makerspace/internal/apperr"
	"makerspace/internal/user"
)

type Users struct{ s *Store }

func cloneUser(u user.User) *user.User {
	u.Certifications = cloneStrings(u.Certifications)
	return &u
}

func (r *Users) Get(_ context.Context, id string) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, apperr.ErrNotFound)
	}
	return cloneUser(r.s.users[id]), nil
}

func (r *Users) List(_ context.Context) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Users) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = user.NormalizeEmail(u.Email)
	if _, taken := r.s.byEmail[u.Email]; taken {
		return fmt.Errorf("email %s: %w", u.Email, apperr.ErrConflict)
	}
	if _, taken := r.s.users[u.ID]; taken {
		return fmt.Errorf("user %s: %w", u.ID, apperr.ErrConflict)
	}
	u.Certifications = cloneStrings(u.Certifications)
	now := r.s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *cloneUser(*u)
	r.s.byEmail[u.Email] = u.ID
	return nil
}

func (r *Users) Update(_ context.Context, id string, p user.Patch) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		e := user.NormalizeEmail(*p.Email)
		if owner, taken := r.s.byEmail[e]; taken && owner != id {
			return nil, fmt.Errorf("email %s: %w", e, apperr.ErrConflict)
		}
		delete(r.s.byEmail, u.Email)
		u.Email = e
		r.s.byEmail[e] = id
	}
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return cloneUser(u), nil
}

// GrantCertification re-checks the safety-course ordering under the lock.
func (r *Users) GrantCertification(_ context.Context, userID, machineID string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	if u.HasCertification(machineID) {
		return cloneUser(u), nil
	}
	if machineID != user.SafetyCourseID && !u.HasSafetyCourse() {
		return nil, fmt.Errorf("%w: safety course not held at grant time", apperr.ErrConflict)
	}
	u.Certifications = user.WithCertification(u.Certifications, machineID)
	u.UpdatedAt = r.s.now()
	r.s.users[userID] = u
	return cloneUser(u), nil
}

func (r *Users) SetActive(_ context.Context, userID string, active bool) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	u.Active = active
	u.UpdatedAt = r.s.now()
	r.s.users[userID] = u
	return cloneUser(u), nil
}
