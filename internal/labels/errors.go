package labels

import (
	"errors"
	"net/http"
)

// Domain errors for reference label operations.
var (
	ErrNotFound      = errors.New("reference label not found")
	ErrDuplicate     = errors.New("reference label already exists")
	ErrInvalidLabel  = errors.New("invalid reference label")
	ErrImageTooLarge = errors.New("label image exceeds maximum upload size")
)

// MapHTTPStatus maps label domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidLabel):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
