// Package manifest implements batch manifest parsing, validation, and
// content hashing. Validation is pure: identical input always produces
// an identical ValidationResult, and no function in this package performs
// I/O.
package manifest

import "time"

// Severity distinguishes blocking validation errors from advisory warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Row is one validated line of an uploaded batch manifest.
type Row struct {
	DrugName     string     `json:"drugName"`
	BatchID      string     `json:"batchId"`
	Quantity     int        `json:"quantity"`
	ExpiryDate   time.Time  `json:"expiryDate"`
	Manufacturer string     `json:"manufacturer"`
	Location     string     `json:"location,omitempty"`
	MfgDate      *time.Time `json:"mfgDate,omitempty"`
}

// Issue describes a single validation finding tied to a row and column.
// Row is the 1-based data row index (the header row is not counted).
type Issue struct {
	Row      int      `json:"row"`
	Column   string   `json:"column"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Value    string   `json:"value,omitempty"`
}

// ValidationResult is the outcome of validating one manifest upload attempt.
// It is immutable after creation. IsValid holds iff Errors is empty;
// warnings never block validity.
type ValidationResult struct {
	IsValid     bool    `json:"isValid"`
	Data        []Row   `json:"data"`
	Errors      []Issue `json:"errors"`
	Warnings    []Issue `json:"warnings"`
	TotalRows   int     `json:"totalRows"`
	ValidRows   int     `json:"validRows"`
	InvalidRows int     `json:"invalidRows"`
}

// Summary returns the aggregate quantity and the first row's identifying
// fields, used for the batch-level upload projection. Returns zero values
// for an empty manifest.
func (r *ValidationResult) Summary() (drugName, batchID, manufacturer string, quantity int, expiry time.Time) {
	for _, row := range r.Data {
		quantity += row.Quantity
	}
	if len(r.Data) > 0 {
		first := r.Data[0]
		drugName = first.DrugName
		batchID = first.BatchID
		manufacturer = first.Manufacturer
		expiry = first.ExpiryDate
	}
	return
}
