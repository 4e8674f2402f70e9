package contents

import (
	"errors"
	"net/http"
)

// Domain errors for monitored content operations.
var (
	ErrNotFound       = errors.New("monitored content not found")
	ErrInvalidContent = errors.New("invalid monitored content")
)

// MapHTTPStatus maps content domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidContent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
