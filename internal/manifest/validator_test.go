package manifest_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/provenance/internal/manifest"
)

func testValidator(t *testing.T) *manifest.Validator {
	t.Helper()

	cfg := &manifest.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("config finalize: %v", err)
	}
	return manifest.NewValidator(cfg)
}

const validManifest = `drug_name,batch_id,quantity,expiry_date,manufacturer,location,mfg_date
Amoxicillin,BATCH-001,500,2027-06-30,Pharma Labs,Plant A,2026-01-15
Amoxicillin,BATCH-001,250,2027-06-30,Pharma Labs,Plant B,2026-01-16
`

func TestCheckFile(t *testing.T) {
	v := testValidator(t)

	tests := []struct {
		name     string
		fileName string
		size     int64
		wantErr  error
	}{
		{"csv accepted", "batch.csv", 1024, nil},
		{"txt accepted", "batch.txt", 1024, nil},
		{"uppercase extension accepted", "BATCH.CSV", 1024, nil},
		{"pdf rejected", "batch.pdf", 1024, manifest.ErrUnsupportedFile},
		{"no extension rejected", "batch", 1024, manifest.ErrUnsupportedFile},
		{"oversized rejected", "batch.csv", 11 * 1024 * 1024, manifest.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.CheckFile(tt.fileName, tt.size)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("CheckFile() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckFile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCleanManifest(t *testing.T) {
	v := testValidator(t)

	result, err := v.Validate([]byte(validManifest), "Pharma Labs")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if !result.IsValid {
		t.Errorf("IsValid = false, errors: %+v", result.Errors)
	}
	if result.TotalRows != 2 || result.ValidRows != 2 || result.InvalidRows != 0 {
		t.Errorf("rows: total=%d valid=%d invalid=%d, want 2/2/0",
			result.TotalRows, result.ValidRows, result.InvalidRows)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings: %+v, want none", result.Warnings)
	}

	drug, batch, mfr, qty, expiry := result.Summary()
	if drug != "Amoxicillin" || batch != "BATCH-001" || mfr != "Pharma Labs" {
		t.Errorf("summary identity: got %s/%s/%s", drug, batch, mfr)
	}
	if qty != 750 {
		t.Errorf("summary quantity = %d, want 750", qty)
	}
	if expiry.Format(manifest.DateLayout) != "2027-06-30" {
		t.Errorf("summary expiry = %s", expiry.Format(manifest.DateLayout))
	}
}

func TestValidateRowErrors(t *testing.T) {
	v := testValidator(t)

	tests := []struct {
		name    string
		row     string
		column  string
		invalid int
	}{
		{"negative quantity", "Aspirin,B-1,-5,2027-01-01,Pharma Labs,,", "quantity", 1},
		{"zero quantity", "Aspirin,B-1,0,2027-01-01,Pharma Labs,,", "quantity", 1},
		{"non-numeric quantity", "Aspirin,B-1,many,2027-01-01,Pharma Labs,,", "quantity", 1},
		{"bad expiry format", "Aspirin,B-1,10,30/06/2027,Pharma Labs,,", "expiry_date", 1},
		{"missing drug name", ",B-1,10,2027-01-01,Pharma Labs,,", "drug_name", 1},
		{"missing manufacturer", "Aspirin,B-1,10,2027-01-01,,,", "manufacturer", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "drug_name,batch_id,quantity,expiry_date,manufacturer,location,mfg_date\n" + tt.row + "\n"

			result, err := v.Validate([]byte(raw), "Pharma Labs")
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}

			if result.IsValid {
				t.Fatal("IsValid = true, want false")
			}
			if result.InvalidRows != tt.invalid {
				t.Errorf("InvalidRows = %d, want %d", result.InvalidRows, tt.invalid)
			}

			found := false
			for _, issue := range result.Errors {
				if issue.Column == tt.column {
					found = true
					if issue.Severity != manifest.SeverityError {
						t.Errorf("severity = %s, want error", issue.Severity)
					}
				}
			}
			if !found {
				t.Errorf("no error for column %s: %+v", tt.column, result.Errors)
			}
		})
	}
}

func TestValidateWarningsDoNotBlock(t *testing.T) {
	v := testValidator(t)

	raw := "drug_name,batch_id,quantity,expiry_date,manufacturer\n" +
		"Aspirin,B-1,200000,2027-01-01,Other Corp\n"

	result, err := v.Validate([]byte(raw), "Pharma Labs")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if !result.IsValid {
		t.Fatalf("IsValid = false, errors: %+v", result.Errors)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("warnings = %d, want 2 (quantity + manufacturer): %+v",
			len(result.Warnings), result.Warnings)
	}
}

func TestValidateMixedRows(t *testing.T) {
	v := testValidator(t)

	raw := "drug_name,batch_id,quantity,expiry_date,manufacturer\n" +
		"Aspirin,B-1,10,2027-01-01,Pharma Labs\n" +
		"Aspirin,B-1,-1,2027-01-01,Pharma Labs\n" +
		"Aspirin,B-1,20,2027-01-01,Pharma Labs\n"

	result, err := v.Validate([]byte(raw), "Pharma Labs")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if result.IsValid {
		t.Error("IsValid = true, want false")
	}
	if result.ValidRows != 2 || result.InvalidRows != 1 {
		t.Errorf("rows: valid=%d invalid=%d, want 2/1", result.ValidRows, result.InvalidRows)
	}
	if len(result.Data) != 2 {
		t.Errorf("Data holds %d rows, want only the 2 valid ones", len(result.Data))
	}
}

func TestValidateHeaderMismatch(t *testing.T) {
	v := testValidator(t)

	raw := "name,lot,count,expires,maker\nAspirin,B-1,10,2027-01-01,Pharma Labs\n"

	_, err := v.Validate([]byte(raw), "")
	var parseErr *manifest.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Validate() error = %v, want ParseError", err)
	}
	if parseErr.Line != 1 {
		t.Errorf("ParseError.Line = %d, want 1", parseErr.Line)
	}
}

func TestValidateEmptyManifest(t *testing.T) {
	v := testValidator(t)

	raw := "drug_name,batch_id,quantity,expiry_date,manufacturer\n"

	_, err := v.Validate([]byte(raw), "")
	if !errors.Is(err, manifest.ErrEmptyManifest) {
		t.Errorf("Validate() error = %v, want ErrEmptyManifest", err)
	}
}

func TestValidateRaggedRow(t *testing.T) {
	v := testValidator(t)

	raw := "drug_name,batch_id,quantity,expiry_date,manufacturer\nAspirin,B-1,10\n"

	_, err := v.Validate([]byte(raw), "")
	var parseErr *manifest.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Validate() error = %v, want ParseError", err)
	}
}

func TestValidateDeterministic(t *testing.T) {
	v := testValidator(t)

	first, err := v.Validate([]byte(validManifest), "Pharma Labs")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	second, err := v.Validate([]byte(validManifest), "Pharma Labs")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if first.IsValid != second.IsValid ||
		first.TotalRows != second.TotalRows ||
		len(first.Data) != len(second.Data) {
		t.Error("identical input produced differing results")
	}
}

func TestHashManifest(t *testing.T) {
	a := manifest.HashManifest([]byte(validManifest))
	b := manifest.HashManifest([]byte(validManifest))
	c := manifest.HashManifest([]byte(validManifest + "extra"))

	if a != b {
		t.Error("identical content produced differing hashes")
	}
	if a == c {
		t.Error("differing content produced identical hashes")
	}
	if len(a) != 64 || strings.ToLower(a) != a {
		t.Errorf("hash format: %q, want 64 lowercase hex chars", a)
	}
}
