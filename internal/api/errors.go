package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"makerspace/internal/apperr"
)

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// CodeTimeSlotTaken is the one validation code reported as a conflict.
const CodeTimeSlotTaken = "TIME_SLOT_TAKEN"

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorDetails(w, status, code, message, nil)
}

func WriteErrorDetails(w http.ResponseWriter, status int, code, message string, details any) {
	WriteJSON(w, status, ErrorEnvelope{
		Error: APIError{Code: code, Message: message, Details: details},
	})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusFor maps a service error onto an HTTP status and error code.
func StatusFor(err error) (int, string) {
	if ve, ok := apperr.AsValidation(err); ok {
		if ve.Code == CodeTimeSlotTaken {
			return http.StatusConflict, ve.Code
		}
		code := ve.Code
		if code == "" {
			code = "VALIDATION_FAILED"
		}
		return http.StatusBadRequest, code
	}
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

// WriteServiceError writes err with its mapped status. Internal errors are
// logged and never echoed to the client.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusFor(err)
	msg := err.Error()
	if ve, ok := apperr.AsValidation(err); ok {
		msg = ve.Message
	}
	if status == http.StatusInternalServerError {
		Logger(r.Context()).WithError(err).Error("request failed")
		msg = "internal error"
	}
	WriteError(w, status, code, msg)
}

const maxBodyBytes = 1 << 20

// DecodeJSON reads a JSON body into v, rejecting unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		msg := "invalid json"
		if errors.Is(err, io.EOF) {
			msg = "empty body"
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", msg)
		return false
	}
	return true
}
