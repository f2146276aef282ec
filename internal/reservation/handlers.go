package reservation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"makerspace/internal/api"
	"makerspace/internal/booking"
)

type Handlers struct {
	Service Service
}

func (h Handlers) Eligibility(w http.ResponseWriter, r *http.Request) {
	u := api.UserFromContext(r.Context())
	if u == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not signed in")
		return
	}
	q := r.URL.Query()
	adv, err := h.Service.Check(r.Context(), u.ID, chi.URLParam(r, "id"), q.Get("date"), q.Get("time"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, adv)
}

type createRequest struct {
	MachineID string `json:"machineId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	u := api.UserFromContext(r.Context())
	if u == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not signed in")
		return
	}
	var in createRequest
	if !api.DecodeJSON(w, r, &in) {
		return
	}
	if in.MachineID == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "machineId is required")
		return
	}

	b, err := h.Service.Create(r.Context(), u.ID, in.MachineID, in.Date, in.Time)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, b)
}

func (h Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	u := api.UserFromContext(r.Context())
	if u == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not signed in")
		return
	}
	b, err := h.Service.Cancel(r.Context(), u.ID, chi.URLParam(r, "id"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

func (h Handlers) Mine(w http.ResponseWriter, r *http.Request) {
	u := api.UserFromContext(r.Context())
	if u == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not signed in")
		return
	}
	items, err := h.Service.Mine(r.Context(), u.ID)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []booking.Booking{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}
