package auth

import (
	"net/http"

	"makerspace/internal/api"
	"makerspace/internal/user"
)

type Handlers struct {
	Service Service
}

func (h Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if !api.DecodeJSON(w, r, &in) {
		return
	}
	sess, err := h.Service.Register(r.Context(), in)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, sess)
}

func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !api.DecodeJSON(w, r, &in) {
		return
	}
	sess, err := h.Service.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, sess)
}

func (h Handlers) Me(w http.ResponseWriter, r *http.Request) {
	u := api.UserFromContext(r.Context())
	if u == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not signed in")
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}

func (h Handlers) PatchMe(w http.ResponseWriter, r *http.Request) {
	u := api.UserFromContext(r.Context())
	if u == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not signed in")
		return
	}
	var p user.Patch
	if !api.DecodeJSON(w, r, &p) {
		return
	}
	updated, err := h.Service.UpdateProfile(r.Context(), u.ID, p)
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, updated)
}
