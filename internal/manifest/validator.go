package manifest

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/provenance/pkg/formatting"
)

// DateLayout is the calendar date format accepted for expiry and
// manufacturing dates.
const DateLayout = "2006-01-02"

// header is the fixed manifest schema. The first five columns are required;
// location and mfg_date are optional metadata.
var header = []string{
	"drug_name", "batch_id", "quantity",
	"expiry_date", "manufacturer", "location", "mfg_date",
}

const requiredColumns = 5

// Validator checks manifest files and rows against the configured limits.
type Validator struct {
	cfg *Config
}

// NewValidator creates a Validator with the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// CheckFile performs the file-level checks that precede row parsing:
// extension whitelist and maximum payload size. Both failures are fatal
// and short-circuit row validation.
func (v *Validator) CheckFile(fileName string, size int64) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	allowed := false
	for _, e := range v.cfg.AllowedExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, ext)
	}

	if size > v.cfg.MaxFileSizeBytes() {
		return fmt.Errorf("%w: %s exceeds %s",
			ErrFileTooLarge,
			formatting.FormatBytes(size, 1),
			formatting.FormatBytes(v.cfg.MaxFileSizeBytes(), 1),
		)
	}

	return nil
}

// Validate parses raw manifest text and applies per-row business rules.
// registeredManufacturer is the submitter's registered name; rows naming a
// different manufacturer produce a warning, not an error. A header or row
// shape problem returns a ParseError and no ValidationResult.
func (v *Validator) Validate(raw []byte, registeredManufacturer string) (*ValidationResult, error) {
	records, err := parseRecords(raw)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrEmptyManifest
	}

	result := &ValidationResult{
		Data:      make([]Row, 0, len(records)),
		Errors:    []Issue{},
		Warnings:  []Issue{},
		TotalRows: len(records),
	}

	invalid := make(map[int]bool)

	for i, record := range records {
		rowNum := i + 1
		row, issues := v.validateRow(rowNum, record, registeredManufacturer)

		rowValid := true
		for _, issue := range issues {
			if issue.Severity == SeverityError {
				result.Errors = append(result.Errors, issue)
				rowValid = false
			} else {
				result.Warnings = append(result.Warnings, issue)
			}
		}

		if rowValid {
			result.Data = append(result.Data, row)
		} else {
			invalid[rowNum] = true
		}
	}

	result.InvalidRows = len(invalid)
	result.ValidRows = result.TotalRows - result.InvalidRows
	result.IsValid = len(result.Errors) == 0

	return result, nil
}

func (v *Validator) validateRow(rowNum int, record []string, registeredManufacturer string) (Row, []Issue) {
	var issues []Issue

	required := func(col string, idx int) string {
		val := strings.TrimSpace(record[idx])
		if val == "" {
			issues = append(issues, Issue{
				Row:      rowNum,
				Column:   col,
				Message:  col + " is required",
				Severity: SeverityError,
			})
		}
		return val
	}

	row := Row{
		DrugName:     required("drug_name", 0),
		BatchID:      required("batch_id", 1),
		Manufacturer: required("manufacturer", 4),
	}

	qtyRaw := strings.TrimSpace(record[2])
	qty, err := strconv.Atoi(qtyRaw)
	switch {
	case err != nil:
		issues = append(issues, Issue{
			Row:      rowNum,
			Column:   "quantity",
			Message:  "quantity must be an integer",
			Severity: SeverityError,
			Value:    qtyRaw,
		})
	case qty <= 0:
		issues = append(issues, Issue{
			Row:      rowNum,
			Column:   "quantity",
			Message:  "quantity must be a positive integer",
			Severity: SeverityError,
			Value:    qtyRaw,
		})
	default:
		row.Quantity = qty
		if qty > v.cfg.QuantityWarning {
			issues = append(issues, Issue{
				Row:      rowNum,
				Column:   "quantity",
				Message:  fmt.Sprintf("quantity exceeds %d, verify batch size", v.cfg.QuantityWarning),
				Severity: SeverityWarning,
				Value:    qtyRaw,
			})
		}
	}

	expiryRaw := strings.TrimSpace(record[3])
	expiry, err := time.Parse(DateLayout, expiryRaw)
	if err != nil {
		issues = append(issues, Issue{
			Row:      rowNum,
			Column:   "expiry_date",
			Message:  "expiry_date must be a valid date in YYYY-MM-DD format",
			Severity: SeverityError,
			Value:    expiryRaw,
		})
	} else {
		row.ExpiryDate = expiry
	}

	if registeredManufacturer != "" && row.Manufacturer != "" &&
		!strings.EqualFold(row.Manufacturer, registeredManufacturer) {
		issues = append(issues, Issue{
			Row:      rowNum,
			Column:   "manufacturer",
			Message:  "manufacturer does not match the submitter's registered name",
			Severity: SeverityWarning,
			Value:    row.Manufacturer,
		})
	}

	if len(record) > 5 {
		row.Location = strings.TrimSpace(record[5])
	}
	if len(record) > 6 {
		mfgRaw := strings.TrimSpace(record[6])
		if mfgRaw != "" {
			mfg, err := time.Parse(DateLayout, mfgRaw)
			if err != nil {
				issues = append(issues, Issue{
					Row:      rowNum,
					Column:   "mfg_date",
					Message:  "mfg_date must be a valid date in YYYY-MM-DD format",
					Severity: SeverityWarning,
					Value:    mfgRaw,
				})
			} else {
				row.MfgDate = &mfg
			}
		}
	}

	return row, issues
}

func parseRecords(raw []byte) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(string(raw)))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		line := 0
		if parseErr, ok := err.(*csv.ParseError); ok {
			line = parseErr.Line
		}
		return nil, &ParseError{Line: line, Reason: err.Error()}
	}

	if len(records) == 0 {
		return nil, &ParseError{Reason: "empty file"}
	}

	if err := checkHeader(records[0]); err != nil {
		return nil, err
	}

	return records[1:], nil
}

func checkHeader(record []string) error {
	if len(record) < requiredColumns {
		return &ParseError{Line: 1, Reason: fmt.Sprintf(
			"header has %d columns, expected at least %d", len(record), requiredColumns,
		)}
	}
	for i := 0; i < requiredColumns; i++ {
		got := strings.ToLower(strings.TrimSpace(record[i]))
		if got != header[i] {
			return &ParseError{Line: 1, Reason: fmt.Sprintf(
				"header column %d is %q, expected %q", i+1, got, header[i],
			)}
		}
	}
	return nil
}
