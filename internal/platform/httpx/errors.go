package httpx

import (
	"errors"
	"net/http"

	"github.com/gatewarden/gatewarden/internal/store"
)

// ErrValidation marks request payloads that failed validation.
var ErrValidation = errors.New("validation failed")

// IsNotFound reports whether err is the storage not-found outcome. Disable
// and unbind handlers use it to treat not-found as success.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// RespondError maps use-case errors to HTTP responses using RFC7807.
// Temporary and fatal storage faults are both opaque 500s; the distinction
// matters to callers deciding on retries, not to the response body.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, store.ErrAlreadyExists):
		Problem(w, http.StatusBadRequest, "Already Exists", "")
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
