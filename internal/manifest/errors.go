package manifest

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for manifest handling.
var (
	ErrUnsupportedFile = errors.New("unsupported manifest file type")
	ErrFileTooLarge    = errors.New("manifest exceeds maximum upload size")
	ErrEmptyManifest   = errors.New("manifest contains no data rows")
)

// ParseError indicates the manifest could not be parsed into rows at all:
// a missing or malformed header, or a row with the wrong field count.
// Parse failures abort validation before any row-level checks run.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("manifest parse failed at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("manifest parse failed: %s", e.Reason)
}

// MapHTTPStatus maps manifest errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrUnsupportedFile) || errors.Is(err, ErrEmptyManifest) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
