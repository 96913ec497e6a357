// Package units implements the unit issuance domain: deterministic
// derivation of scannable unit identifiers, per-unit ledger anchoring with
// partial-failure tolerance, and unit identifier persistence and scan-state
// management.
package units

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UnitIdentifier is the anchored record for one physical product unit.
// Once anchored it is immutable except for the scan-state fields.
type UnitIdentifier struct {
	ID           uuid.UUID  `json:"id"`
	UploadID     uuid.UUID  `json:"uploadId"`
	QRCodeID     string     `json:"qrCodeId"`
	Sequence     int        `json:"sequence"`
	BlockchainTx string     `json:"blockchainTx"`
	DrugName     string     `json:"drugName"`
	Manufacturer string     `json:"manufacturer"`
	BatchID      string     `json:"batchId"`
	ExpiryDate   time.Time  `json:"expiryDate"`
	IsScanned    bool       `json:"isScanned"`
	ScannedAt    *time.Time `json:"scannedAt,omitempty"`
	ScannedBy    *string    `json:"scannedBy,omitempty"`
	IssuedAt     time.Time  `json:"issuedAt"`
}

// IssueCommand carries the batch metadata needed to issue units for an
// upload. The metadata fields are denormalized onto each unit so later
// verification does not require a join back to the upload.
type IssueCommand struct {
	UploadID     uuid.UUID
	DrugName     string
	Manufacturer string
	BatchID      string
	ExpiryDate   time.Time
	Quantity     int
}

// Failure records one unit whose ledger anchor was not confirmed.
// Retryable distinguishes timeouts and node unavailability from terminal
// rejections; the failed sequence can be re-derived and retried safely.
type Failure struct {
	Sequence  int    `json:"sequence"`
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// IssueResult reports the outcome of an issuance run. Issued may be less
// than the requested quantity; Failures enumerates exactly which sequence
// numbers were not anchored.
type IssueResult struct {
	Issued      int              `json:"issued"`
	Identifiers []UnitIdentifier `json:"identifiers"`
	Failures    []Failure        `json:"failures,omitempty"`
}

// DeriveQRCodeID deterministically derives the unit identifier for a given
// upload and sequence number. The derivation is pure: re-deriving for the
// same (uploadID, seq) always yields the same identifier, so a retried
// anchor can never mint a duplicate. Sequence numbers are zero-padded for
// stable lexical ordering.
func DeriveQRCodeID(uploadID uuid.UUID, seq int) string {
	key := strings.ToUpper(strings.ReplaceAll(uploadID.String(), "-", ""))
	return fmt.Sprintf("PRV-%s-%06d", key, seq)
}
