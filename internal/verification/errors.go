package verification

import (
	"errors"
	"net/http"
)

// Domain errors for verification operations.
var (
	ErrUnknownCode = errors.New("unit identifier does not resolve")
)

// MapHTTPStatus maps verification domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnknownCode) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
