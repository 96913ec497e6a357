package batches

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/provenance/pkg/pagination"
	"github.com/JaimeStill/provenance/pkg/query"
	"github.com/JaimeStill/provenance/pkg/repository"
)

type store struct {
	db *sql.DB
}

// NewStore creates a PostgreSQL-backed upload store.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) Insert(ctx context.Context, upload *Upload) error {
	snapshot, err := marshalSnapshot(upload)
	if err != nil {
		return err
	}

	q := `
		INSERT INTO uploads(
			id, file_name, file_size, content_hash, drug_name, batch_id,
			manufacturer, quantity, expiry_date, status, blockchain_tx,
			qr_codes_generated, validation_result, user_email, storage_key,
			processing_time_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = s.db.ExecContext(ctx, q,
		upload.ID,
		upload.FileName,
		upload.FileSize,
		upload.ContentHash,
		upload.DrugName,
		upload.BatchID,
		upload.Manufacturer,
		upload.Quantity,
		upload.ExpiryDate,
		upload.Status,
		upload.BlockchainTx,
		upload.QRCodesGenerated,
		snapshot,
		upload.UserEmail,
		upload.StorageKey,
		upload.ProcessingTimeMS,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return nil
}

func (s *store) Update(ctx context.Context, upload *Upload) error {
	snapshot, err := marshalSnapshot(upload)
	if err != nil {
		return err
	}

	q := `
		UPDATE uploads
		SET status = $2,
			blockchain_tx = $3,
			qr_codes_generated = $4,
			validation_result = $5,
			processing_time_ms = $6,
			updated_at = now()
		WHERE id = $1`

	if err := repository.ExecExpectOne(ctx, s.db, q,
		upload.ID,
		upload.Status,
		upload.BlockchainTx,
		upload.QRCodesGenerated,
		snapshot,
		upload.ProcessingTimeMS,
	); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return nil
}

func (s *store) Find(ctx context.Context, id uuid.UUID) (*Upload, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	u, err := repository.QueryOne(ctx, s.db, q, args, scanUpload)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &u, nil
}

func (s *store) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
	cfg pagination.Config,
) (*pagination.PageResult[Upload], error) {
	page.Normalize(cfg)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "DrugName", "BatchID", "Manufacturer")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count uploads: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	uploads, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanUpload)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}

	result := pagination.NewPageResult(uploads, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *store) ExistsByHash(ctx context.Context, userEmail, contentHash string) (bool, error) {
	q := `SELECT EXISTS(SELECT 1 FROM uploads WHERE user_email = $1 AND content_hash = $2)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, q, userEmail, contentHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("check content hash: %w", err)
	}
	return exists, nil
}

func marshalSnapshot(upload *Upload) ([]byte, error) {
	if upload.ValidationResult == nil {
		return nil, nil
	}

	snapshot, err := json.Marshal(upload.ValidationResult)
	if err != nil {
		return nil, fmt.Errorf("marshal validation snapshot: %w", err)
	}
	return snapshot, nil
}
