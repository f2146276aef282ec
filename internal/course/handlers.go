package course

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"makerspace/internal/api"
	"makerspace/internal/certification"
)

type Handlers struct {
	Service Service
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []Course{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, d)
}

func (h Handlers) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	u := api.UserFromContext(r.Context())
	if u == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not signed in")
		return
	}
	var in struct {
		Answers map[string]int `json:"answers"`
	}
	if !api.DecodeJSON(w, r, &in) {
		return
	}

	out, err := h.Service.SubmitQuiz(r.Context(), u.ID, chi.URLParam(r, "id"), in.Answers)
	if errors.Is(err, certification.ErrSafetyCourseRequired) && out != nil {
		api.WriteErrorDetails(w, http.StatusBadRequest, certification.ErrSafetyCourseRequired.Code,
			certification.ErrSafetyCourseRequired.Message, out)
		return
	}
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h Handlers) MyAttempts(w http.ResponseWriter, r *http.Request) {
	u := api.UserFromContext(r.Context())
	if u == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not signed in")
		return
	}
	items, err := h.Service.Attempts(r.Context(), u.ID)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []Attempt{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}
