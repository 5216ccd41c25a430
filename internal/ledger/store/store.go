package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectEntryColumns = `
	e.id, e.user_id, e.posted_date, e.amount_cents, e.direction, e.type,
	e.description_raw, e.description_normalized, e.merchant_normalized,
	e.account_id, e.credit_card_account_id, e.institution_id, e.category_id,
	e.fingerprint, e.is_internal_transfer, e.created_at, e.updated_at
`

// scanEntry reads a ledger entry row in selectEntryColumns order.
func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	var direction, entryType string

	var merchant sql.NullString

	if err := s.Scan(
		&e.ID, &e.UserID, &e.PostedDate, &e.AmountCents, &direction, &entryType,
		&e.DescriptionRaw, &e.DescriptionNormalized, &merchant,
		&e.AccountID, &e.CreditCardAccountID, &e.InstitutionID, &e.CategoryID,
		&e.Fingerprint, &e.IsInternalTransfer, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.Direction = ledger.Direction(direction)
	e.Type = ledger.EntryType(entryType)
	e.MerchantNormalized = merchant.String

	return &e, nil
}

const insertEntryQuery = `
	INSERT INTO ledger_entries (
		user_id, posted_date, amount_cents, direction, type,
		description_raw, description_normalized, merchant_normalized,
		account_id, credit_card_account_id, institution_id, category_id,
		fingerprint, is_internal_transfer, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	ON CONFLICT (user_id, fingerprint) DO NOTHING
	RETURNING id, created_at
`

// insertEntry inserts one entry. A fingerprint collision must not abort the
// surrounding transaction, so the duplicate is absorbed by ON CONFLICT and
// detected by RETURNING yielding no row.
func insertEntry(ctx context.Context, q queryRower, e *ledger.Entry) error {
	err := q.QueryRowContext(ctx, insertEntryQuery,
		e.UserID, e.PostedDate, e.AmountCents, e.Direction, e.Type,
		e.DescriptionRaw, e.DescriptionNormalized, nullIfEmpty(e.MerchantNormalized),
		e.AccountID, e.CreditCardAccountID, e.InstitutionID, e.CategoryID,
		e.Fingerprint, e.IsInternalTransfer,
	).Scan(&e.ID, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.ErrDuplicateFingerprint
	}

	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}

	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) CreateEntry(ctx context.Context, e *ledger.Entry) error {
	return insertEntry(ctx, s.db, e)
}

func (s *Store) GetEntry(ctx context.Context, userID, id uuid.UUID) (*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM ledger_entries e
		WHERE e.id = $1 AND e.user_id = $2`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting entry: %w", err)
	}

	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, userID uuid.UUID, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM ledger_entries e
		WHERE e.user_id = $1`

	args := []any{userID}
	argIdx := 2

	if filter.From != nil {
		query += fmt.Sprintf(" AND e.posted_date >= $%d", argIdx)

		args = append(args, *filter.From)
		argIdx++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND e.posted_date <= $%d", argIdx)

		args = append(args, *filter.To)
		argIdx++
	}

	query += " ORDER BY e.posted_date ASC, e.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
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

func (s *Store) FindBatchByFileHash(ctx context.Context, userID uuid.UUID, fileHash string) (*ledger.ImportBatch, error) {
	query := `
		SELECT id, user_id, source_type, file_name, file_hash, mapping,
		       total_imported, total_skipped, imported_at
		FROM import_batches
		WHERE user_id = $1 AND file_hash = $2
		ORDER BY imported_at DESC
		LIMIT 1
	`

	var b ledger.ImportBatch

	err := s.db.QueryRowContext(ctx, query, userID, fileHash).Scan(
		&b.ID, &b.UserID, &b.SourceType, &b.FileName, &b.FileHash, &b.Mapping,
		&b.TotalImported, &b.TotalSkipped, &b.ImportedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding batch: %w", err)
	}

	return &b, nil
}

// commitLockKey derives the per-user advisory lock key. Commit and
// reconciliation for one user serialize on it.
func commitLockKey(userID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(userID[:])

	return int64(h.Sum64())
}

type commitTx struct {
	tx *sql.Tx
}

func (s *Store) BeginCommit(ctx context.Context, userID uuid.UUID) (ledger.CommitTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning commit tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", commitLockKey(userID)); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("acquiring commit lock: %w", err)
	}

	return &commitTx{tx: tx}, nil
}

func (c *commitTx) Commit() error   { return c.tx.Commit() }
func (c *commitTx) Rollback() error { return c.tx.Rollback() }

func (c *commitTx) ExistingFingerprints(ctx context.Context, userID uuid.UUID, fps []string) (map[string]struct{}, error) {
	if len(fps) == 0 {
		return map[string]struct{}{}, nil
	}

	args := make([]any, 0, len(fps)+1)
	args = append(args, userID)

	placeholders := make([]string, len(fps))
	for i, fp := range fps {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, fp)
	}

	query := fmt.Sprintf(`
		SELECT fingerprint
		FROM ledger_entries
		WHERE user_id = $1 AND fingerprint IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := c.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying fingerprints: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})

	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("scanning fingerprint: %w", err)
		}

		existing[fp] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fingerprints: %w", err)
	}

	return existing, nil
}

func (c *commitTx) InsertEntry(ctx context.Context, e *ledger.Entry) error {
	return insertEntry(ctx, c.tx, e)
}

func (c *commitTx) InsertBatch(ctx context.Context, b *ledger.ImportBatch) error {
	query := `
		INSERT INTO import_batches (user_id, source_type, file_name, file_hash, mapping, total_imported, total_skipped, imported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, imported_at
	`

	err := c.tx.QueryRowContext(ctx, query,
		b.UserID, b.SourceType, b.FileName, b.FileHash, b.Mapping,
		b.TotalImported, b.TotalSkipped,
	).Scan(&b.ID, &b.ImportedAt)
	if err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}

	return nil
}
