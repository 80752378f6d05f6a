package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"applecare-activation/internal/domain"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto HTTP statuses. Anything unmapped is
// a 500 with a generic body so internals never leak to the form.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errBody("not found"))
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errBody("invalid email or password"))
	case errors.Is(err, domain.ErrWrongPassword):
		writeJSON(w, http.StatusBadRequest, errBody("current password is incorrect"))
	case errors.Is(err, domain.ErrInvalidPlan):
		writeJSON(w, http.StatusBadRequest, errBody("invalid plan"))
	case errors.Is(err, domain.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, errBody("invalid status"))
	case errors.Is(err, domain.ErrNotAwaitingReview):
		writeJSON(w, http.StatusBadRequest, errBody("request is not awaiting review"))
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errBody("invalid request"))
	case errors.Is(err, domain.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errBody("already exists"))
	case errors.Is(err, domain.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errBody("too many submissions, try again later"))
	default:
		writeJSON(w, http.StatusInternalServerError, errBody("internal error"))
	}
}

func errBody(msg string) map[string]string {
	return map[string]string{"detail": msg}
}
