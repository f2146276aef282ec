package machine

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"makerspace/internal/api"
)

type Reader interface {
	Get(ctx context.Context, id string) (*Machine, error)
	List(ctx context.Context) ([]Machine, error)
}

// Handlers serve the catalogue. Statuses are reported as EffectiveStatus.
type Handlers struct {
	Machines Reader
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Machines.List(r.Context())
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	out := make([]Machine, 0, len(items))
	for _, m := range items {
		out = append(out, Reconciled(m))
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.Machines.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, Reconciled(*m))
}
