package adminaction

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"makerspace/internal/api"
	"makerspace/internal/audit"
	"makerspace/internal/booking"
	"makerspace/internal/user"
)

type UserLister interface {
	List(ctx context.Context) ([]user.User, error)
}

type BookingLister interface {
	List(ctx context.Context, f booking.Filter) ([]booking.Booking, error)
}

type AuditReader interface {
	ListForEntity(ctx context.Context, entityType, entityID string) ([]audit.Entry, error)
}

// Handlers are mounted behind api.RequireAdmin.
type Handlers struct {
	Mutator  Mutator
	Users    UserLister
	Bookings BookingLister
	Audit    AuditReader
}

func actor(w http.ResponseWriter, r *http.Request) (user.User, bool) {
	u := api.UserFromContext(r.Context())
	if u == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not signed in")
		return user.User{}, false
	}
	return *u, true
}

func (h Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	items, err := h.Users.List(r.Context())
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []user.User{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) GrantCertification(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var in struct {
		MachineID string `json:"machineId"`
	}
	if !api.DecodeJSON(w, r, &in) {
		return
	}
	u, err := h.Mutator.GrantCertification(r.Context(), a, chi.URLParam(r, "id"), in.MachineID)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}

func (h Handlers) SetUserActive(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var in struct {
		Active *bool `json:"active"`
	}
	if !api.DecodeJSON(w, r, &in) {
		return
	}
	if in.Active == nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "active is required")
		return
	}
	u, err := h.Mutator.SetUserActive(r.Context(), a, chi.URLParam(r, "id"), *in.Active)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}

func (h Handlers) CreateMachine(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var in NewMachine
	if !api.DecodeJSON(w, r, &in) {
		return
	}
	m, err := h.Mutator.CreateMachine(r.Context(), a, in)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, m)
}

func (h Handlers) SetMachineStatus(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var in struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if !api.DecodeJSON(w, r, &in) {
		return
	}
	res, err := h.Mutator.SetMachineStatus(r.Context(), a, chi.URLParam(r, "id"), in.Status, in.Note)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

func (h Handlers) MachineConflicts(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	items, err := h.Mutator.Conflicts(r.Context(), a, chi.URLParam(r, "id"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := booking.Filter{MachineID: q.Get("machineId")}
	if raw := q.Get("status"); raw != "" {
		st, err := booking.ParseStatus(raw)
		if err != nil {
			api.WriteServiceError(w, r, err)
			return
		}
		f.Status = st
	}
	if raw := q.Get("date"); raw != "" {
		d, err := booking.ParseDate(raw)
		if err != nil {
			api.WriteServiceError(w, r, err)
			return
		}
		f.Date = d
	}

	items, err := h.Bookings.List(r.Context(), f)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []booking.Booking{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) SetBookingStatus(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var in struct {
		Status string `json:"status"`
	}
	if !api.DecodeJSON(w, r, &in) {
		return
	}
	b, err := h.Mutator.SetBookingStatus(r.Context(), a, chi.URLParam(r, "id"), in.Status)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

// AuditTrail serves GET /v1/admin/audit/{entityType}/{id}.
func (h Handlers) AuditTrail(w http.ResponseWriter, r *http.Request) {
	items, err := h.Audit.ListForEntity(r.Context(), chi.URLParam(r, "entityType"), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []audit.Entry{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}
