package verification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JaimeStill/provenance/pkg/query"
	"github.com/JaimeStill/provenance/pkg/repository"
)

type store struct {
	db *sql.DB
}

// NewStore creates a PostgreSQL-backed verification event store. The
// table is append-only: the store only inserts and reads.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) Insert(ctx context.Context, event *Event) error {
	q := `
		INSERT INTO verification_events(
			id, qr_code_id, unit_id, result, reason,
			verified_by, location, blockchain_tx, verified_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(ctx, q,
		event.ID,
		event.QRCodeID,
		event.UnitID,
		event.Result,
		event.Reason,
		event.VerifiedBy,
		event.Location,
		event.BlockchainTx,
		event.VerifiedAt,
	)
	if err != nil {
		return fmt.Errorf("insert verification event: %w", err)
	}

	return nil
}

func (s *store) CountByQRCode(ctx context.Context, qrCodeID string) (int, error) {
	q := `SELECT COUNT(*) FROM verification_events WHERE qr_code_id = $1`

	var count int
	if err := s.db.QueryRowContext(ctx, q, qrCodeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

func (s *store) CountByQRCodeSince(ctx context.Context, qrCodeID string, since time.Time) (int, error) {
	q := `
		SELECT COUNT(*) FROM verification_events
		WHERE qr_code_id = $1 AND verified_at >= $2`

	var count int
	if err := s.db.QueryRowContext(ctx, q, qrCodeID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count recent events: %w", err)
	}
	return count, nil
}

func (s *store) CountByUserSince(ctx context.Context, userEmail string, since time.Time) (int, error) {
	q := `
		SELECT COUNT(*) FROM verification_events
		WHERE verified_by = $1 AND verified_at >= $2`

	var count int
	if err := s.db.QueryRowContext(ctx, q, userEmail, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count user events: %w", err)
	}
	return count, nil
}

func (s *store) CountsByResult(ctx context.Context, userEmail string) (map[Result]int, error) {
	q := `
		SELECT result, COUNT(*) FROM verification_events
		WHERE verified_by = $1
		GROUP BY result`

	rows, err := s.db.QueryContext(ctx, q, userEmail)
	if err != nil {
		return nil, fmt.Errorf("count events by result: %w", err)
	}
	defer rows.Close()

	counts := make(map[Result]int)
	for rows.Next() {
		var result Result
		var count int
		if err := rows.Scan(&result, &count); err != nil {
			return nil, fmt.Errorf("scan result count: %w", err)
		}
		counts[result] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result counts: %w", err)
	}

	return counts, nil
}

func (s *store) RecentByUser(ctx context.Context, userEmail string, limit int) ([]Event, error) {
	q, args := query.
		NewBuilder(projection, query.SortField{Field: "VerifiedAt", Descending: true}).
		WhereEquals("VerifiedBy", userEmail).
		BuildPage(1, limit)

	events, err := repository.QueryMany(ctx, s.db, q, args, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	return events, nil
}
