package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domerrors "github.com/julien-rg/wheelbase-server/internal/domain/errors"
)

// writeErr sends JSON { "error": message, "code": code } with a stable
// code derived from the HTTP status.
func writeErr(w http.ResponseWriter, httpCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": defaultErrCode(httpCode)})
}

func defaultErrCode(httpCode int) string {
	switch httpCode {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusTooManyRequests:
		return ErrCodeRateLimited
	default:
		return ErrCodeInternal
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainErr translates a domain failure to its HTTP shape. The
// mapping is the stable external contract; unknown errors become an
// opaque 500 so internals never leak.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domerrors.ErrUserNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domerrors.ErrAccessDenied),
		errors.Is(err, domerrors.ErrInvalidCredentials):
		writeErr(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domerrors.ErrAlreadyFollowing):
		writeErr(w, http.StatusConflict, err.Error())
	case errors.Is(err, domerrors.ErrCannotFollowSelf),
		errors.Is(err, domerrors.ErrCannotUnfollowSelf),
		errors.Is(err, domerrors.ErrNotFollowing):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		if _, ok := domerrors.IsFieldConflict(err); ok {
			writeErr(w, http.StatusConflict, err.Error())
			return
		}
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}
