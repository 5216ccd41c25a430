package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/transfer"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) UnmatchedEntries(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*ledger.Entry, error) {
	query := `
		SELECT e.id, e.user_id, e.posted_date, e.amount_cents, e.direction, e.type,
		       e.description_raw, e.description_normalized, COALESCE(e.merchant_normalized, ''),
		       e.account_id, e.credit_card_account_id, e.institution_id, e.category_id,
		       e.fingerprint, e.is_internal_transfer, e.created_at, e.updated_at
		FROM ledger_entries e
		WHERE e.user_id = $1
		  AND e.type <> 'transfer'
		  AND NOT EXISTS (
			SELECT 1 FROM transfer_suggestions ts
			WHERE ts.user_id = e.user_id
			  AND ts.status <> 'rejected'
			  AND (ts.out_entry_id = e.id OR ts.in_entry_id = e.id)
		  )
	`

	args := []any{userID}
	argIdx := 2

	if from != nil {
		query += fmt.Sprintf(" AND e.posted_date >= $%d", argIdx)

		args = append(args, *from)
		argIdx++
	}

	if to != nil {
		query += fmt.Sprintf(" AND e.posted_date <= $%d", argIdx)

		args = append(args, *to)
		argIdx++
	}

	query += " ORDER BY e.posted_date ASC, e.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing unmatched entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		var e ledger.Entry

		var direction, entryType string

		if err := rows.Scan(
			&e.ID, &e.UserID, &e.PostedDate, &e.AmountCents, &direction, &entryType,
			&e.DescriptionRaw, &e.DescriptionNormalized, &e.MerchantNormalized,
			&e.AccountID, &e.CreditCardAccountID, &e.InstitutionID, &e.CategoryID,
			&e.Fingerprint, &e.IsInternalTransfer, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		e.Direction = ledger.Direction(direction)
		e.Type = ledger.EntryType(entryType)

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}

func (s *Store) PairStatuses(ctx context.Context, userID uuid.UUID) (map[transfer.PairKey]transfer.Status, error) {
	query := `
		SELECT out_entry_id, in_entry_id, status
		FROM transfer_suggestions
		WHERE user_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing pair statuses: %w", err)
	}
	defer rows.Close()

	statuses := make(map[transfer.PairKey]transfer.Status)

	for rows.Next() {
		var key transfer.PairKey

		var status string

		if err := rows.Scan(&key.OutEntryID, &key.InEntryID, &status); err != nil {
			return nil, fmt.Errorf("scanning pair status: %w", err)
		}

		statuses[key] = transfer.Status(status)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pair statuses: %w", err)
	}

	return statuses, nil
}

// UpsertSuggestion inserts the pair or refreshes the score of an existing
// pending suggestion. The WHERE clause keeps terminal rows untouched, which
// is what makes rejection permanent.
func (s *Store) UpsertSuggestion(ctx context.Context, sg *transfer.Suggestion) error {
	query := `
		INSERT INTO transfer_suggestions (user_id, out_entry_id, in_entry_id, score, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, out_entry_id, in_entry_id)
		DO UPDATE SET score = EXCLUDED.score
		WHERE transfer_suggestions.status = 'pending'
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		sg.UserID, sg.OutEntryID, sg.InEntryID, sg.Score, sg.Status,
	).Scan(&sg.ID, &sg.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			// Conflict on a terminal row: nothing updated, nothing to do.
			return nil
		}

		return fmt.Errorf("upserting suggestion: %w", err)
	}

	return nil
}
