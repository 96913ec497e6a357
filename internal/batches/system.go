package batches

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/provenance/pkg/pagination"
)

// System defines the public contract for batch operations.
type System interface {
	Handler() *Handler

	// Submit runs the full anchoring pipeline: validate, hash, anchor the
	// batch record, issue units, persist the upload. On ErrManifestInvalid
	// the returned result is non-nil and carries the ValidationResult.
	Submit(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error)

	Find(ctx context.Context, id uuid.UUID) (*Upload, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Upload], error)

	// DownloadManifest streams the archived raw manifest for an upload.
	// The caller must close the reader.
	DownloadManifest(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error)
}

// Store is the persistence contract for upload records.
type Store interface {
	Insert(ctx context.Context, upload *Upload) error
	Update(ctx context.Context, upload *Upload) error
	Find(ctx context.Context, id uuid.UUID) (*Upload, error)
	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
		cfg pagination.Config,
	) (*pagination.PageResult[Upload], error)
	// ExistsByHash reports whether the submitter already uploaded a
	// byte-identical manifest, by content digest.
	ExistsByHash(ctx context.Context, userEmail, contentHash string) (bool, error)
}
