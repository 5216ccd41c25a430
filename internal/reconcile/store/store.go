package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/reconcile"
	"github.com/contaflow/contaflow/internal/transfer"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectEntryColumns = `
	e.id, e.user_id, e.posted_date, e.amount_cents, e.direction, e.type,
	e.description_raw, e.description_normalized, COALESCE(e.merchant_normalized, ''),
	e.account_id, e.credit_card_account_id, e.institution_id, e.category_id,
	e.fingerprint, e.is_internal_transfer, e.created_at, e.updated_at
`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	var direction, entryType string

	if err := s.Scan(
		&e.ID, &e.UserID, &e.PostedDate, &e.AmountCents, &direction, &entryType,
		&e.DescriptionRaw, &e.DescriptionNormalized, &e.MerchantNormalized,
		&e.AccountID, &e.CreditCardAccountID, &e.InstitutionID, &e.CategoryID,
		&e.Fingerprint, &e.IsInternalTransfer, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.Direction = ledger.Direction(direction)
	e.Type = ledger.EntryType(entryType)

	return &e, nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM ledger_entries e WHERE e.id = $1`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting entry: %w", err)
	}

	return e, nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*reconcile.Account, error) {
	query := `SELECT id, user_id, type FROM accounts WHERE id = $1`

	var a reconcile.Account

	err := s.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.UserID, &a.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return &a, nil
}

// userLockKey mirrors the commit pipeline's advisory lock so reconciliation
// and commits for one user serialize against each other.
func userLockKey(userID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(userID[:])

	return int64(h.Sum64())
}

func (s *Store) ConfirmTransferPair(ctx context.Context, userID, outEntryID, inEntryID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", userLockKey(userID)); err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}

	entryQuery := `
		UPDATE ledger_entries
		SET type = 'transfer', is_internal_transfer = TRUE, updated_at = NOW()
		WHERE user_id = $1 AND id IN ($2, $3)
	`

	if _, err := tx.ExecContext(ctx, entryQuery, userID, outEntryID, inEntryID); err != nil {
		return fmt.Errorf("updating entries: %w", err)
	}

	suggestionQuery := `
		UPDATE transfer_suggestions
		SET status = 'confirmed'
		WHERE user_id = $1 AND out_entry_id = $2 AND in_entry_id = $3 AND status = 'pending'
	`

	if _, err := tx.ExecContext(ctx, suggestionQuery, userID, outEntryID, inEntryID); err != nil {
		return fmt.Errorf("confirming suggestion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	return nil
}

// RejectByID rejects the suggestion. Re-rejecting an already-rejected row
// matches again so the call stays idempotent; only confirmed rows never
// match.
func (s *Store) RejectByID(ctx context.Context, userID, suggestionID uuid.UUID) (int64, error) {
	query := `
		UPDATE transfer_suggestions
		SET status = 'rejected'
		WHERE user_id = $1 AND id = $2 AND status <> 'confirmed'
	`

	res, err := s.db.ExecContext(ctx, query, userID, suggestionID)
	if err != nil {
		return 0, fmt.Errorf("rejecting suggestion: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return affected, nil
}

// RejectPair upserts a rejected row for the pair. A pair rejected before the
// matcher ever proposed it gets a zero-score rejected record, and the unique
// constraint suppresses any future proposal.
func (s *Store) RejectPair(ctx context.Context, userID, outEntryID, inEntryID uuid.UUID) error {
	query := `
		INSERT INTO transfer_suggestions (user_id, out_entry_id, in_entry_id, score, status, created_at)
		VALUES ($1, $2, $3, 0, 'rejected', NOW())
		ON CONFLICT (user_id, out_entry_id, in_entry_id)
		DO UPDATE SET status = 'rejected'
		WHERE transfer_suggestions.status = 'pending'
	`

	if _, err := s.db.ExecContext(ctx, query, userID, outEntryID, inEntryID); err != nil {
		return fmt.Errorf("rejecting pair: %w", err)
	}

	return nil
}

func (s *Store) ConfirmPayment(ctx context.Context, userID uuid.UUID, link *reconcile.PaymentLink) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", userLockKey(userID)); err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}

	linkQuery := `
		INSERT INTO cc_payment_links (payment_entry_id, credit_card_account_id, confirmed_at)
		VALUES ($1, $2, NOW())
		RETURNING confirmed_at
	`

	if err := tx.QueryRowContext(ctx, linkQuery, link.PaymentEntryID, link.CreditCardAccountID).Scan(&link.ConfirmedAt); err != nil {
		return fmt.Errorf("inserting payment link: %w", err)
	}

	entryQuery := `
		UPDATE ledger_entries
		SET type = 'cc_payment', updated_at = NOW()
		WHERE user_id = $1 AND id = $2
	`

	if _, err := tx.ExecContext(ctx, entryQuery, userID, link.PaymentEntryID); err != nil {
		return fmt.Errorf("updating payment entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	return nil
}

func (s *Store) PendingSuggestions(ctx context.Context, userID uuid.UUID) ([]*reconcile.InboxSuggestion, error) {
	query := `
		SELECT ts.id, ts.user_id, ts.out_entry_id, ts.in_entry_id, ts.score, ts.status, ts.created_at,
		       ` + prefixedEntryColumns("o") + `,
		       ` + prefixedEntryColumns("i") + `
		FROM transfer_suggestions ts
		JOIN ledger_entries o ON o.id = ts.out_entry_id
		JOIN ledger_entries i ON i.id = ts.in_entry_id
		WHERE ts.user_id = $1 AND ts.status = 'pending'
		ORDER BY ts.score DESC, ts.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing pending suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []*reconcile.InboxSuggestion

	for rows.Next() {
		sg, err := scanInboxSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning suggestion: %w", err)
		}

		suggestions = append(suggestions, sg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating suggestions: %w", err)
	}

	return suggestions, nil
}

func prefixedEntryColumns(alias string) string {
	return fmt.Sprintf(`
		%[1]s.id, %[1]s.user_id, %[1]s.posted_date, %[1]s.amount_cents, %[1]s.direction, %[1]s.type,
		%[1]s.description_raw, %[1]s.description_normalized, COALESCE(%[1]s.merchant_normalized, ''),
		%[1]s.account_id, %[1]s.credit_card_account_id, %[1]s.institution_id, %[1]s.category_id,
		%[1]s.fingerprint, %[1]s.is_internal_transfer, %[1]s.created_at, %[1]s.updated_at`, alias)
}

func scanInboxSuggestion(rows *sql.Rows) (*reconcile.InboxSuggestion, error) {
	var sg reconcile.InboxSuggestion

	var status string

	var out, in ledger.Entry

	var outDir, outType, inDir, inType string

	if err := rows.Scan(
		&sg.ID, &sg.UserID, &sg.OutEntryID, &sg.InEntryID, &sg.Score, &status, &sg.CreatedAt,
		&out.ID, &out.UserID, &out.PostedDate, &out.AmountCents, &outDir, &outType,
		&out.DescriptionRaw, &out.DescriptionNormalized, &out.MerchantNormalized,
		&out.AccountID, &out.CreditCardAccountID, &out.InstitutionID, &out.CategoryID,
		&out.Fingerprint, &out.IsInternalTransfer, &out.CreatedAt, &out.UpdatedAt,
		&in.ID, &in.UserID, &in.PostedDate, &in.AmountCents, &inDir, &inType,
		&in.DescriptionRaw, &in.DescriptionNormalized, &in.MerchantNormalized,
		&in.AccountID, &in.CreditCardAccountID, &in.InstitutionID, &in.CategoryID,
		&in.Fingerprint, &in.IsInternalTransfer, &in.CreatedAt, &in.UpdatedAt,
	); err != nil {
		return nil, err
	}

	sg.Status = transfer.Status(status)
	out.Direction, out.Type = ledger.Direction(outDir), ledger.EntryType(outType)
	in.Direction, in.Type = ledger.Direction(inDir), ledger.EntryType(inType)
	sg.OutEntry, sg.InEntry = &out, &in

	return &sg, nil
}

// UnlinkedCCOutflows returns credit-card purchases and bank-side outflows on
// credit-type accounts not yet linked to a payment.
func (s *Store) UnlinkedCCOutflows(ctx context.Context, userID uuid.UUID) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM ledger_entries e
		JOIN accounts a ON a.id = COALESCE(e.credit_card_account_id, e.account_id)
		WHERE e.user_id = $1
		  AND a.type = 'credit'
		  AND e.direction = 'OUT'
		  AND e.type <> 'cc_payment'
		  AND NOT EXISTS (
			SELECT 1 FROM cc_payment_links l WHERE l.payment_entry_id = e.id
		  )
		ORDER BY e.posted_date DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing unlinked outflows: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}
