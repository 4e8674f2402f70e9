package verifications

import (
	"errors"
	"net/http"

	"github.com/vmaretto/sigillo/internal/safefetch"
	"github.com/vmaretto/sigillo/internal/verify"
)

// Domain errors for verification operations.
var (
	ErrNotFound  = errors.New("verification not found")
	ErrDuplicate = errors.New("verification already exists")
	ErrPersist   = errors.New("verification could not be persisted")
)

// MapHTTPStatus maps verification domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, verify.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, safefetch.ErrUnsafeURL):
		return http.StatusUnprocessableEntity
	case errors.Is(err, verify.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
