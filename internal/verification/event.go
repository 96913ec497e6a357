// Package verification implements the scan verification domain: resolving
// scanned unit identifiers, classifying them against their anchored
// records, and recording every scan attempt as an append-only event.
package verification

import (
	"time"

	"github.com/google/uuid"
)

// Result classifies one scan of a unit identifier.
type Result string

const (
	ResultAuthentic   Result = "authentic"
	ResultSuspicious  Result = "suspicious"
	ResultCounterfeit Result = "counterfeit"
	ResultUnknown     Result = "unknown"
)

// Classification pairs a Result with the signal that produced it, so every
// non-authentic outcome is explainable.
type Classification struct {
	Result Result `json:"result"`
	Reason string `json:"reason,omitempty"`
}

// Event is the immutable record of one scan attempt. Events are append
// only: never mutated, never deleted. UnitID is nil when the scanned code
// resolved to no unit identifier.
type Event struct {
	ID           uuid.UUID  `json:"id"`
	QRCodeID     string     `json:"qrCodeId"`
	UnitID       *uuid.UUID `json:"unitId,omitempty"`
	Result       Result     `json:"result"`
	Reason       string     `json:"reason,omitempty"`
	VerifiedBy   string     `json:"verifiedBy"`
	Location     string     `json:"location,omitempty"`
	BlockchainTx string     `json:"blockchainTx,omitempty"`
	VerifiedAt   time.Time  `json:"verifiedAt"`
}

// Outcome is the full verification response for one scan: the
// classification plus the denormalized drug metadata for display.
type Outcome struct {
	Result            Result     `json:"result"`
	Reason            string     `json:"reason,omitempty"`
	QRCodeID          string     `json:"qrCodeId"`
	DrugName          string     `json:"drugName,omitempty"`
	Manufacturer      string     `json:"manufacturer,omitempty"`
	BatchID           string     `json:"batchId,omitempty"`
	ExpiryDate        *time.Time `json:"expiryDate,omitempty"`
	BlockchainTx      string     `json:"blockchainTx,omitempty"`
	VerificationCount int        `json:"verificationCount"`
	VerifiedAt        time.Time  `json:"verifiedAt"`
}
