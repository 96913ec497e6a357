package batches

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/provenance/internal/ledger"
	"github.com/JaimeStill/provenance/internal/manifest"
)

// Domain errors for batch operations.
var (
	ErrNotFound        = errors.New("upload not found")
	ErrDuplicate       = errors.New("upload already exists")
	ErrManifestInvalid = errors.New("manifest validation failed")
	ErrAnchorFailed    = errors.New("batch anchoring failed")
)

// MapHTTPStatus maps batch domain errors to HTTP status codes. Manifest
// file and parse errors delegate to the manifest mapping; ledger failures
// surface as 500 because the submission itself was well formed.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrManifestInvalid) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrAnchorFailed) ||
		errors.Is(err, ledger.ErrRejected) ||
		errors.Is(err, ledger.ErrTimeout) ||
		errors.Is(err, ledger.ErrUnavailable) {
		return http.StatusInternalServerError
	}
	if status := manifest.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return http.StatusInternalServerError
}
