package verification

import (
	"github.com/JaimeStill/provenance/pkg/query"
	"github.com/JaimeStill/provenance/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "verification_events", "v").
	Project("id", "ID").
	Project("qr_code_id", "QRCodeID").
	Project("unit_id", "UnitID").
	Project("result", "Result").
	Project("reason", "Reason").
	Project("verified_by", "VerifiedBy").
	Project("location", "Location").
	Project("blockchain_tx", "BlockchainTx").
	Project("verified_at", "VerifiedAt")

func scanEvent(s repository.Scanner) (Event, error) {
	var e Event
	err := s.Scan(
		&e.ID,
		&e.QRCodeID,
		&e.UnitID,
		&e.Result,
		&e.Reason,
		&e.VerifiedBy,
		&e.Location,
		&e.BlockchainTx,
		&e.VerifiedAt,
	)
	return e, err
}
