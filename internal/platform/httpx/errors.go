// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
)

// Sentinel errors shared by handlers.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// GenerationFailed is the single user-facing message for rendering failures.
const GenerationFailed = "invoice generation failed"

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var verr *invoice.ValidationError
	switch {
	case errors.As(err, &verr):
		ValidationProblem(w, verr.Fields)
	case errors.Is(err, invoice.ErrInvalidJob):
		Problem(w, http.StatusBadRequest, "Invalid Job", err.Error())
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", GenerationFailed)
	}
}
