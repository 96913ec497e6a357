package units

import (
	"context"
)

// System defines the public contract for unit identifier operations.
type System interface {
	// Issue derives and anchors one unit identifier per sequence number in
	// [1, cmd.Quantity]. A single unit's anchoring failure never aborts the
	// remaining units; the result enumerates failed sequences so a caller
	// can retry precisely those.
	Issue(ctx context.Context, cmd IssueCommand) (*IssueResult, error)

	// Find resolves a unit identifier by its scannable code.
	Find(ctx context.Context, qrCodeID string) (*UnitIdentifier, error)

	// MarkScanned sets the scan-state fields on first scan. Repeated calls
	// are idempotent and never revert IsScanned.
	MarkScanned(ctx context.Context, qrCodeID, scannedBy string) error
}

// Store is the persistence contract for unit identifiers. Insert must
// surface the store-level qr_code_id uniqueness violation as ErrDuplicate.
type Store interface {
	Insert(ctx context.Context, unit *UnitIdentifier) error
	Find(ctx context.Context, qrCodeID string) (*UnitIdentifier, error)
	MarkScanned(ctx context.Context, qrCodeID, scannedBy string) error
}
