package units

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/provenance/internal/ledger"
)

type engine struct {
	store  Store
	anchor ledger.Client
	logger *slog.Logger
	cfg    *Config
}

// New creates a unit issuance engine implementing the System interface.
func New(store Store, anchor ledger.Client, logger *slog.Logger, cfg *Config) System {
	return &engine{
		store:  store,
		anchor: anchor,
		logger: logger.With("system", "units"),
		cfg:    cfg,
	}
}

// unitPayload is the anchoring transaction body for one unit.
type unitPayload struct {
	Type         string    `json:"type"`
	QRCodeID     string    `json:"qr_code_id"`
	UploadID     string    `json:"upload_id"`
	Sequence     int       `json:"sequence"`
	DrugName     string    `json:"drug_name"`
	Manufacturer string    `json:"manufacturer"`
	BatchID      string    `json:"batch_id"`
	ExpiryDate   string    `json:"expiry_date"`
	IssuedAt     time.Time `json:"issued_at"`
}

func (e *engine) Issue(ctx context.Context, cmd IssueCommand) (*IssueResult, error) {
	if cmd.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be positive: %d", cmd.Quantity)
	}

	type outcome struct {
		unit    *UnitIdentifier
		failure *Failure
	}
	outcomes := make([]outcome, cmd.Quantity)

	// Per-unit submissions share no mutable state beyond the outcome slot
	// each goroutine owns, so the pool runs without cross-unit locking.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.WorkerCount(cmd.Quantity))

	for seq := 1; seq <= cmd.Quantity; seq++ {
		g.Go(func() error {
			if gctx.Err() != nil {
				outcomes[seq-1] = outcome{failure: &Failure{
					Sequence:  seq,
					Error:     gctx.Err().Error(),
					Retryable: true,
				}}
				return nil
			}

			unit, err := e.issueOne(gctx, cmd, seq)
			if err != nil {
				e.logger.Warn(
					"unit anchoring failed",
					"upload_id", cmd.UploadID,
					"sequence", seq,
					"retryable", ledger.Retryable(err),
					"error", err,
				)
				outcomes[seq-1] = outcome{failure: &Failure{
					Sequence:  seq,
					Error:     err.Error(),
					Retryable: ledger.Retryable(err),
				}}
				return nil
			}

			outcomes[seq-1] = outcome{unit: unit}
			return nil
		})
	}

	// Goroutines only ever return nil; Wait is a completion barrier.
	_ = g.Wait()

	result := &IssueResult{
		Identifiers: make([]UnitIdentifier, 0, cmd.Quantity),
	}
	for _, o := range outcomes {
		if o.unit != nil {
			result.Issued++
			result.Identifiers = append(result.Identifiers, *o.unit)
		} else if o.failure != nil {
			result.Failures = append(result.Failures, *o.failure)
		}
	}

	e.logger.Info(
		"issuance complete",
		"upload_id", cmd.UploadID,
		"requested", cmd.Quantity,
		"issued", result.Issued,
		"failed", len(result.Failures),
	)

	return result, nil
}

func (e *engine) issueOne(ctx context.Context, cmd IssueCommand, seq int) (*UnitIdentifier, error) {
	qrCodeID := DeriveQRCodeID(cmd.UploadID, seq)
	issuedAt := time.Now().UTC()

	payload, err := json.Marshal(unitPayload{
		Type:         "unit",
		QRCodeID:     qrCodeID,
		UploadID:     cmd.UploadID.String(),
		Sequence:     seq,
		DrugName:     cmd.DrugName,
		Manufacturer: cmd.Manufacturer,
		BatchID:      cmd.BatchID,
		ExpiryDate:   cmd.ExpiryDate.Format("2006-01-02"),
		IssuedAt:     issuedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal unit payload: %w", err)
	}

	tx, err := e.anchor.Submit(ctx, payload)
	if err != nil {
		return nil, err
	}

	unit := &UnitIdentifier{
		ID:           uuid.New(),
		UploadID:     cmd.UploadID,
		QRCodeID:     qrCodeID,
		Sequence:     seq,
		BlockchainTx: tx.Hash,
		DrugName:     cmd.DrugName,
		Manufacturer: cmd.Manufacturer,
		BatchID:      cmd.BatchID,
		ExpiryDate:   cmd.ExpiryDate,
		IssuedAt:     issuedAt,
	}

	if err := e.store.Insert(ctx, unit); err != nil {
		// Deterministic derivation makes a duplicate insert a retried unit
		// that already anchored; keep the stored record.
		if errors.Is(err, ErrDuplicate) {
			existing, findErr := e.store.Find(ctx, qrCodeID)
			if findErr == nil {
				return existing, nil
			}
			return unit, nil
		}
		return nil, fmt.Errorf("persist unit %s: %w", qrCodeID, err)
	}

	return unit, nil
}

func (e *engine) Find(ctx context.Context, qrCodeID string) (*UnitIdentifier, error) {
	return e.store.Find(ctx, qrCodeID)
}

func (e *engine) MarkScanned(ctx context.Context, qrCodeID, scannedBy string) error {
	return e.store.MarkScanned(ctx, qrCodeID, scannedBy)
}
