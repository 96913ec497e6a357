package batches

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/provenance/internal/ledger"
	"github.com/JaimeStill/provenance/internal/manifest"
	"github.com/JaimeStill/provenance/internal/units"
	"github.com/JaimeStill/provenance/pkg/pagination"
	"github.com/JaimeStill/provenance/pkg/storage"
)

type service struct {
	store      Store
	blobs      storage.System
	anchor     ledger.Client
	issuer     units.System
	validator  *manifest.Validator
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a batch system backed by PostgreSQL.
func New(
	db *sql.DB,
	blobs storage.System,
	anchor ledger.Client,
	issuer units.System,
	validator *manifest.Validator,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return NewWithStore(NewStore(db), blobs, anchor, issuer, validator, logger, pagination)
}

// NewWithStore creates a batch system over an explicit Store implementation.
func NewWithStore(
	store Store,
	blobs storage.System,
	anchor ledger.Client,
	issuer units.System,
	validator *manifest.Validator,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &service{
		store:      store,
		blobs:      blobs,
		anchor:     anchor,
		issuer:     issuer,
		validator:  validator,
		logger:     logger.With("system", "batches"),
		pagination: pagination,
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger, s.pagination)
}

// batchPayload is the batch-level anchoring transaction body: the content
// digest plus a compact summary of the validated data.
type batchPayload struct {
	Type          string    `json:"type"`
	UploadID      string    `json:"upload_id"`
	ContentHash   string    `json:"content_hash"`
	DrugName      string    `json:"drug_name"`
	BatchID       string    `json:"batch_id"`
	Manufacturer  string    `json:"manufacturer"`
	TotalQuantity int       `json:"total_quantity"`
	Rows          int       `json:"rows"`
	SubmittedBy   string    `json:"submitted_by"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

func (s *service) Submit(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error) {
	started := time.Now()

	if err := s.validator.CheckFile(cmd.FileName, cmd.FileSize); err != nil {
		return nil, err
	}

	result, err := s.validator.Validate(cmd.FileContent, cmd.Organization)
	if err != nil {
		return nil, err
	}

	contentHash := manifest.HashManifest(cmd.FileContent)

	upload := &Upload{
		ID:               uuid.New(),
		FileName:         cmd.FileName,
		FileSize:         cmd.FileSize,
		ContentHash:      contentHash,
		UserEmail:        cmd.UserEmail,
		ValidationResult: result,
		UploadedAt:       started.UTC(),
	}
	upload.DrugName, upload.BatchID, upload.Manufacturer,
		upload.Quantity, upload.ExpiryDate = result.Summary()

	if !result.IsValid {
		upload.Status = StatusFailed
		upload.ProcessingTimeMS = time.Since(started).Milliseconds()
		if err := s.store.Insert(ctx, upload); err != nil {
			s.logger.Warn("failed to record rejected upload", "id", upload.ID, "error", err)
		}
		s.logger.Info(
			"manifest rejected",
			"id", upload.ID,
			"errors", len(result.Errors),
			"user", cmd.UserEmail,
		)
		return &SubmitResult{Upload: upload}, ErrManifestInvalid
	}

	s.flagDuplicateContent(ctx, upload, result)

	upload.StorageKey = s.archiveManifest(ctx, upload.ID, cmd)

	upload.Status = StatusPending
	if err := s.store.Insert(ctx, upload); err != nil {
		return nil, fmt.Errorf("persist upload: %w", err)
	}

	tx, err := s.anchorBatch(ctx, upload, result)
	if err != nil {
		upload.Status = StatusFailed
		upload.ProcessingTimeMS = time.Since(started).Milliseconds()
		if updateErr := s.store.Update(ctx, upload); updateErr != nil {
			s.logger.Error("failed to record anchor failure", "id", upload.ID, "error", updateErr)
		}
		return &SubmitResult{Upload: upload}, fmt.Errorf("%w: %w", ErrAnchorFailed, err)
	}
	upload.BlockchainTx = tx.Hash

	issued, err := s.issuer.Issue(ctx, units.IssueCommand{
		UploadID:     upload.ID,
		DrugName:     upload.DrugName,
		Manufacturer: upload.Manufacturer,
		BatchID:      upload.BatchID,
		ExpiryDate:   upload.ExpiryDate,
		Quantity:     upload.Quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("issue units: %w", err)
	}

	// Partial issuance is not a batch failure: the upload reports exactly
	// how many units anchored so downstream consumers can see the deficit.
	upload.Status = StatusCompleted
	upload.QRCodesGenerated = issued.Issued
	upload.ProcessingTimeMS = time.Since(started).Milliseconds()

	if err := s.store.Update(ctx, upload); err != nil {
		return nil, fmt.Errorf("finalize upload: %w", err)
	}

	s.logger.Info(
		"batch anchored",
		"id", upload.ID,
		"tx", upload.BlockchainTx,
		"declared", upload.Quantity,
		"issued", issued.Issued,
		"duration_ms", upload.ProcessingTimeMS,
	)

	return &SubmitResult{Upload: upload, Failures: issued.Failures}, nil
}

func (s *service) anchorBatch(ctx context.Context, upload *Upload, result *manifest.ValidationResult) (*ledger.TxResult, error) {
	payload, err := json.Marshal(batchPayload{
		Type:          "batch",
		UploadID:      upload.ID.String(),
		ContentHash:   upload.ContentHash,
		DrugName:      upload.DrugName,
		BatchID:       upload.BatchID,
		Manufacturer:  upload.Manufacturer,
		TotalQuantity: upload.Quantity,
		Rows:          len(result.Data),
		SubmittedBy:   upload.UserEmail,
		SubmittedAt:   upload.UploadedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal batch payload: %w", err)
	}

	return s.anchor.Submit(ctx, payload)
}

// flagDuplicateContent appends a warning when the submitter has already
// uploaded a byte-identical manifest. Detection only; resubmission is the
// caller's recovery path for partially processed batches.
func (s *service) flagDuplicateContent(ctx context.Context, upload *Upload, result *manifest.ValidationResult) {
	exists, err := s.store.ExistsByHash(ctx, upload.UserEmail, upload.ContentHash)
	if err != nil {
		s.logger.Warn("duplicate content check failed", "error", err)
		return
	}
	if exists {
		result.Warnings = append(result.Warnings, manifest.Issue{
			Row:      0,
			Column:   "file",
			Message:  "an identical manifest was previously submitted",
			Severity: manifest.SeverityWarning,
			Value:    upload.ContentHash,
		})
	}
}

// archiveManifest stores the raw manifest bytes for regulatory audit.
// Archive failure never blocks the submission.
func (s *service) archiveManifest(ctx context.Context, id uuid.UUID, cmd SubmitCommand) string {
	key := fmt.Sprintf("manifests/%s/%s", id, sanitizeFileName(cmd.FileName))

	if err := s.blobs.Upload(ctx, key, bytes.NewReader(cmd.FileContent), "text/csv"); err != nil {
		s.logger.Warn("manifest archive failed", "key", key, "error", err)
		return ""
	}

	return key
}

func (s *service) Find(ctx context.Context, id uuid.UUID) (*Upload, error) {
	return s.store.Find(ctx, id)
}

func (s *service) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Upload], error) {
	return s.store.List(ctx, page, filters, s.pagination)
}

func (s *service) DownloadManifest(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error) {
	upload, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if upload.StorageKey == "" {
		return nil, "", fmt.Errorf("%w: no archived manifest", ErrNotFound)
	}

	body, err := s.blobs.Download(ctx, upload.StorageKey)
	if err != nil {
		return nil, "", fmt.Errorf("download manifest %s: %w", upload.StorageKey, err)
	}

	return body, upload.FileName, nil
}

func sanitizeFileName(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "manifest"
	}
	return url.PathEscape(name)
}
