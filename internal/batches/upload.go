// Package batches implements the batch anchoring domain for provenance.
// It validates uploaded manifests, anchors the batch content digest on the
// ledger, fans out unit issuance, and persists the resulting upload record
// with honest partial-success accounting.
package batches

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/provenance/internal/manifest"
	"github.com/JaimeStill/provenance/internal/units"
)

// Upload statuses. An upload is never deleted; status transitions are
// pending → completed or pending → failed, and rejected submissions are
// recorded directly as failed.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Upload is the ledger-anchored record of one manufacturer submission.
type Upload struct {
	ID               uuid.UUID                  `json:"id"`
	FileName         string                     `json:"fileName"`
	FileSize         int64                      `json:"fileSize"`
	ContentHash      string                     `json:"contentHash"`
	DrugName         string                     `json:"drugName"`
	BatchID          string                     `json:"batchId"`
	Manufacturer     string                     `json:"manufacturer"`
	Quantity         int                        `json:"quantity"`
	ExpiryDate       time.Time                  `json:"expiryDate"`
	Status           string                     `json:"status"`
	BlockchainTx     string                     `json:"blockchainTx,omitempty"`
	QRCodesGenerated int                        `json:"qrCodesGenerated"`
	ValidationResult *manifest.ValidationResult `json:"validationResult,omitempty"`
	UserEmail        string                     `json:"userEmail"`
	StorageKey       string                     `json:"storageKey,omitempty"`
	ProcessingTimeMS int64                      `json:"processingTimeMs"`
	UploadedAt       time.Time                  `json:"uploadedAt"`
	UpdatedAt        time.Time                  `json:"updatedAt"`
}

// SubmitCommand carries one batch submission. Organization is the
// submitter's registered manufacturer name from trusted request metadata;
// rows naming a different manufacturer get a validation warning.
type SubmitCommand struct {
	FileContent  []byte
	FileName     string
	FileSize     int64
	UserEmail    string
	Organization string
}

// SubmitResult reports a submission outcome. On validation failure the
// Upload carries the full ValidationResult and Failures is empty; on
// success Failures enumerates any units whose individual anchors failed.
type SubmitResult struct {
	Upload   *Upload         `json:"upload"`
	Failures []units.Failure `json:"failures,omitempty"`
}
