package units

import (
	"errors"
	"net/http"
)

// Domain errors for unit identifier operations.
var (
	ErrNotFound  = errors.New("unit identifier not found")
	ErrDuplicate = errors.New("unit identifier already exists")
)

// MapHTTPStatus maps unit domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
