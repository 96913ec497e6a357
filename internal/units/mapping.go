package units

import (
	"github.com/JaimeStill/provenance/pkg/query"
	"github.com/JaimeStill/provenance/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "unit_identifiers", "u").
	Project("id", "ID").
	Project("upload_id", "UploadID").
	Project("qr_code_id", "QRCodeID").
	Project("sequence", "Sequence").
	Project("blockchain_tx", "BlockchainTx").
	Project("drug_name", "DrugName").
	Project("manufacturer", "Manufacturer").
	Project("batch_id", "BatchID").
	Project("expiry_date", "ExpiryDate").
	Project("is_scanned", "IsScanned").
	Project("scanned_at", "ScannedAt").
	Project("scanned_by", "ScannedBy").
	Project("issued_at", "IssuedAt")

func scanUnit(s repository.Scanner) (UnitIdentifier, error) {
	var u UnitIdentifier
	err := s.Scan(
		&u.ID,
		&u.UploadID,
		&u.QRCodeID,
		&u.Sequence,
		&u.BlockchainTx,
		&u.DrugName,
		&u.Manufacturer,
		&u.BatchID,
		&u.ExpiryDate,
		&u.IsScanned,
		&u.ScannedAt,
		&u.ScannedBy,
		&u.IssuedAt,
	)
	return u, err
}
