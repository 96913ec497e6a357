package verification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/provenance/internal/batches"
	"github.com/JaimeStill/provenance/internal/ledger"
	"github.com/JaimeStill/provenance/internal/units"
)

// System defines the public contract for verification operations.
type System interface {
	Handler() *Handler

	// Verify resolves a scanned identifier, classifies it, marks the unit
	// scanned on first resolution, and appends exactly one Event. An
	// unresolvable code yields Result unknown and still appends an Event.
	Verify(ctx context.Context, qrCodeID, verifiedBy, location string) (*Outcome, error)

	// Reconfirm re-reads the unit's anchoring transaction from the ledger
	// and reclassifies accordingly, appending an Event for the check.
	Reconfirm(ctx context.Context, qrCodeID, verifiedBy string) (*Outcome, error)

	// Stats derives per-actor aggregate statistics purely by counting and
	// filtering the event log.
	Stats(ctx context.Context, userEmail string) (*StatsReport, error)
}

// UnitSource resolves and updates unit identifiers. Satisfied by the
// units system.
type UnitSource interface {
	Find(ctx context.Context, qrCodeID string) (*units.UnitIdentifier, error)
	MarkScanned(ctx context.Context, qrCodeID, scannedBy string) error
}

// UploadSource resolves parent batch records. Satisfied by the batches
// system.
type UploadSource interface {
	Find(ctx context.Context, id uuid.UUID) (*batches.Upload, error)
}

// TxConfirmer reads anchoring transaction status from the ledger for the
// explicit re-confirmation path. Satisfied by the ledger client.
type TxConfirmer interface {
	Confirm(ctx context.Context, txHash string) (*ledger.TxResult, error)
}

// Store is the persistence contract for verification events. Events are
// append-only; Store exposes no update or delete.
type Store interface {
	Insert(ctx context.Context, event *Event) error
	CountByQRCode(ctx context.Context, qrCodeID string) (int, error)
	CountByQRCodeSince(ctx context.Context, qrCodeID string, since time.Time) (int, error)
	CountByUserSince(ctx context.Context, userEmail string, since time.Time) (int, error)
	CountsByResult(ctx context.Context, userEmail string) (map[Result]int, error)
	RecentByUser(ctx context.Context, userEmail string, limit int) ([]Event, error)
}
