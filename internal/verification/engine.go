package verification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/provenance/internal/batches"
	"github.com/JaimeStill/provenance/internal/ledger"
	"github.com/JaimeStill/provenance/internal/units"
)

type engine struct {
	store   Store
	units   UnitSource
	uploads UploadSource
	anchor  TxConfirmer
	logger  *slog.Logger
	cfg     *Config
}

// New creates a verification system backed by PostgreSQL.
func New(
	db *sql.DB,
	unitSrc UnitSource,
	uploads UploadSource,
	anchor TxConfirmer,
	logger *slog.Logger,
	cfg *Config,
) System {
	return NewWithStore(NewStore(db), unitSrc, uploads, anchor, logger, cfg)
}

// NewWithStore creates a verification system over an explicit Store implementation.
func NewWithStore(
	store Store,
	unitSrc UnitSource,
	uploads UploadSource,
	anchor TxConfirmer,
	logger *slog.Logger,
	cfg *Config,
) System {
	return &engine{
		store:   store,
		units:   unitSrc,
		uploads: uploads,
		anchor:  anchor,
		logger:  logger.With("system", "verification"),
		cfg:     cfg,
	}
}

func (e *engine) Handler() *Handler {
	return NewHandler(e, e.logger)
}

func (e *engine) Verify(ctx context.Context, qrCodeID, verifiedBy, location string) (*Outcome, error) {
	now := time.Now().UTC()

	unit, err := e.units.Find(ctx, qrCodeID)
	if err != nil {
		if errors.Is(err, units.ErrNotFound) {
			return e.recordUnknown(ctx, qrCodeID, verifiedBy, location, now)
		}
		return nil, fmt.Errorf("resolve unit: %w", err)
	}

	uploadStatus := ""
	upload, err := e.uploads.Find(ctx, unit.UploadID)
	switch {
	case err == nil:
		uploadStatus = upload.Status
	case errors.Is(err, batches.ErrNotFound):
		// orphaned unit; classification treats it as unanchored
	default:
		return nil, fmt.Errorf("resolve upload: %w", err)
	}

	policy := e.cfg.Policy()
	recent, err := e.store.CountByQRCodeSince(ctx, qrCodeID, now.Add(-policy.ScanWindow))
	if err != nil {
		return nil, fmt.Errorf("count recent scans: %w", err)
	}

	cls := Classify(unit, uploadStatus, recent, policy, now)

	// Scan state is secondary to the audit trail; a failed mark never
	// blocks event recording.
	if err := e.units.MarkScanned(ctx, qrCodeID, verifiedBy); err != nil {
		e.logger.Warn("mark scanned failed", "qr_code_id", qrCodeID, "error", err)
	}

	return e.record(ctx, unit, cls, verifiedBy, location, now)
}

func (e *engine) Reconfirm(ctx context.Context, qrCodeID, verifiedBy string) (*Outcome, error) {
	now := time.Now().UTC()

	unit, err := e.units.Find(ctx, qrCodeID)
	if err != nil {
		if errors.Is(err, units.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCode, qrCodeID)
		}
		return nil, fmt.Errorf("resolve unit: %w", err)
	}

	cls := Classification{Result: ResultAuthentic, Reason: "anchoring transaction reconfirmed"}

	tx, err := e.anchor.Confirm(ctx, unit.BlockchainTx)
	switch {
	case errors.Is(err, ledger.ErrTxNotFound):
		cls = Classification{
			Result: ResultCounterfeit,
			Reason: "anchoring transaction cannot be found on the ledger",
		}
	case err != nil:
		return nil, fmt.Errorf("confirm tx: %w", err)
	case tx.Status != ledger.TxConfirmed:
		cls = Classification{
			Result: ResultCounterfeit,
			Reason: "anchoring transaction failed on the ledger",
		}
	}

	e.logger.Info(
		"reconfirmation",
		"qr_code_id", qrCodeID,
		"result", cls.Result,
	)

	return e.record(ctx, unit, cls, verifiedBy, "", now)
}

func (e *engine) record(
	ctx context.Context,
	unit *units.UnitIdentifier,
	cls Classification,
	verifiedBy, location string,
	now time.Time,
) (*Outcome, error) {
	event := &Event{
		ID:           uuid.New(),
		QRCodeID:     unit.QRCodeID,
		UnitID:       &unit.ID,
		Result:       cls.Result,
		Reason:       cls.Reason,
		VerifiedBy:   verifiedBy,
		Location:     location,
		BlockchainTx: unit.BlockchainTx,
		VerifiedAt:   now,
	}

	if err := e.store.Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("record verification: %w", err)
	}

	count, err := e.store.CountByQRCode(ctx, unit.QRCodeID)
	if err != nil {
		return nil, fmt.Errorf("count verifications: %w", err)
	}

	expiry := unit.ExpiryDate
	return &Outcome{
		Result:            cls.Result,
		Reason:            cls.Reason,
		QRCodeID:          unit.QRCodeID,
		DrugName:          unit.DrugName,
		Manufacturer:      unit.Manufacturer,
		BatchID:           unit.BatchID,
		ExpiryDate:        &expiry,
		BlockchainTx:      unit.BlockchainTx,
		VerificationCount: count,
		VerifiedAt:        now,
	}, nil
}

// recordUnknown persists the scan attempt against an unresolvable code.
// Repeated attempts against invented codes stay auditable, which is how
// counterfeit-code-generation campaigns surface.
func (e *engine) recordUnknown(
	ctx context.Context,
	qrCodeID, verifiedBy, location string,
	now time.Time,
) (*Outcome, error) {
	event := &Event{
		ID:         uuid.New(),
		QRCodeID:   qrCodeID,
		Result:     ResultUnknown,
		Reason:     "no anchored unit for this code",
		VerifiedBy: verifiedBy,
		Location:   location,
		VerifiedAt: now,
	}

	if err := e.store.Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("record unknown scan: %w", err)
	}

	count, err := e.store.CountByQRCode(ctx, qrCodeID)
	if err != nil {
		return nil, fmt.Errorf("count verifications: %w", err)
	}

	return &Outcome{
		Result:            ResultUnknown,
		Reason:            event.Reason,
		QRCodeID:          qrCodeID,
		VerificationCount: count,
		VerifiedAt:        now,
	}, nil
}
