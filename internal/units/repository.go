package units

import (
	"context"
	"database/sql"

	"github.com/JaimeStill/provenance/pkg/query"
	"github.com/JaimeStill/provenance/pkg/repository"
)

type store struct {
	db *sql.DB
}

// NewStore creates a PostgreSQL-backed unit identifier store. The
// qr_code_id uniqueness constraint lives in the schema; a violation
// surfaces as ErrDuplicate.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) Insert(ctx context.Context, unit *UnitIdentifier) error {
	q := `
		INSERT INTO unit_identifiers(
			id, upload_id, qr_code_id, sequence, blockchain_tx,
			drug_name, manufacturer, batch_id, expiry_date, issued_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.ExecContext(ctx, q,
		unit.ID,
		unit.UploadID,
		unit.QRCodeID,
		unit.Sequence,
		unit.BlockchainTx,
		unit.DrugName,
		unit.Manufacturer,
		unit.BatchID,
		unit.ExpiryDate,
		unit.IssuedAt,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return nil
}

func (s *store) Find(ctx context.Context, qrCodeID string) (*UnitIdentifier, error) {
	q, args := query.NewBuilder(projection).BuildSingle("QRCodeID", qrCodeID)

	u, err := repository.QueryOne(ctx, s.db, q, args, scanUnit)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &u, nil
}

func (s *store) MarkScanned(ctx context.Context, qrCodeID, scannedBy string) error {
	q := `
		UPDATE unit_identifiers
		SET is_scanned = TRUE,
			scanned_at = COALESCE(scanned_at, now()),
			scanned_by = COALESCE(scanned_by, $2)
		WHERE qr_code_id = $1`

	if err := repository.ExecExpectOne(ctx, s.db, q, qrCodeID, scannedBy); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}
