package batches

import (
	"encoding/json"
	"net/url"

	"github.com/JaimeStill/provenance/internal/manifest"
	"github.com/JaimeStill/provenance/pkg/query"
	"github.com/JaimeStill/provenance/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "uploads", "b").
	Project("id", "ID").
	Project("file_name", "FileName").
	Project("file_size", "FileSize").
	Project("content_hash", "ContentHash").
	Project("drug_name", "DrugName").
	Project("batch_id", "BatchID").
	Project("manufacturer", "Manufacturer").
	Project("quantity", "Quantity").
	Project("expiry_date", "ExpiryDate").
	Project("status", "Status").
	Project("blockchain_tx", "BlockchainTx").
	Project("qr_codes_generated", "QRCodesGenerated").
	Project("validation_result", "ValidationResult").
	Project("user_email", "UserEmail").
	Project("storage_key", "StorageKey").
	Project("processing_time_ms", "ProcessingTimeMS").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for upload queries.
// Nil fields are ignored. Status, UserEmail, and ContentHash use exact
// matching; DrugName and Manufacturer use case-insensitive contains.
type Filters struct {
	Status       *string `json:"status,omitempty"`
	UserEmail    *string `json:"user_email,omitempty"`
	DrugName     *string `json:"drug_name,omitempty"`
	Manufacturer *string `json:"manufacturer,omitempty"`
	ContentHash  *string `json:"content_hash,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("UserEmail", f.UserEmail).
		WhereContains("DrugName", f.DrugName).
		WhereContains("Manufacturer", f.Manufacturer).
		WhereEquals("ContentHash", f.ContentHash)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if e := values.Get("user_email"); e != "" {
		f.UserEmail = &e
	}
	if d := values.Get("drug_name"); d != "" {
		f.DrugName = &d
	}
	if m := values.Get("manufacturer"); m != "" {
		f.Manufacturer = &m
	}
	if h := values.Get("content_hash"); h != "" {
		f.ContentHash = &h
	}

	return f
}

func scanUpload(s repository.Scanner) (Upload, error) {
	var (
		u        Upload
		snapshot []byte
	)

	err := s.Scan(
		&u.ID,
		&u.FileName,
		&u.FileSize,
		&u.ContentHash,
		&u.DrugName,
		&u.BatchID,
		&u.Manufacturer,
		&u.Quantity,
		&u.ExpiryDate,
		&u.Status,
		&u.BlockchainTx,
		&u.QRCodesGenerated,
		&snapshot,
		&u.UserEmail,
		&u.StorageKey,
		&u.ProcessingTimeMS,
		&u.UploadedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return u, err
	}

	if len(snapshot) > 0 {
		var vr manifest.ValidationResult
		if err := json.Unmarshal(snapshot, &vr); err != nil {
			return u, err
		}
		u.ValidationResult = &vr
	}

	return u, nil
}
