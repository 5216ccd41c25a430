package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/canonical"
	"github.com/contaflow/contaflow/internal/category"
	"github.com/contaflow/contaflow/internal/fingerprint"
	"github.com/contaflow/contaflow/internal/textnorm"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	GetEntry(ctx context.Context, userID, id uuid.UUID) (*Entry, error)
	ListEntries(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Entry, error)
	FindBatchByFileHash(ctx context.Context, userID uuid.UUID, fileHash string) (*ImportBatch, error)

	BeginCommit(ctx context.Context, userID uuid.UUID) (CommitTx, error)
}

// CommitTx is the transactional boundary of one import commit. The insert
// step is atomic: either an entry is durably recorded or it is not.
type CommitTx interface {
	ExistingFingerprints(ctx context.Context, userID uuid.UUID, fps []string) (map[string]struct{}, error)
	InsertEntry(ctx context.Context, e *Entry) error
	InsertBatch(ctx context.Context, b *ImportBatch) error
	Commit() error
	Rollback() error
}

// Categorizer is the deterministic engine run during commit so imported rows
// are not dumped uncategorized.
type Categorizer interface {
	CategorizeBatch(ctx context.Context, userID uuid.UUID, ins []category.Input) ([]category.Result, error)
}

type Service struct {
	repo        Repository
	categorizer Categorizer
	norm        *textnorm.Normalizer
	maxRows     int
}

func NewService(repo Repository, categorizer Categorizer, norm *textnorm.Normalizer, maxRows int) *Service {
	return &Service{repo: repo, categorizer: categorizer, norm: norm, maxRows: maxRows}
}

// CommitRow is one canonical row bound to its destination account. Exactly
// one of AccountID/CreditCardAccountID must be set.
type CommitRow struct {
	canonical.Row
	AccountID           *uuid.UUID
	CreditCardAccountID *uuid.UUID
	InstitutionID       *uuid.UUID
}

type CommitParams struct {
	SourceType string
	FileName   string
	Mapping    string
	Rows       []CommitRow
}

// CommitSummary is always returned, even when everything was a duplicate:
// zero imported is a valid outcome, not an error. A duplicate row increments
// both TotalSkipped and Duplicates.
type CommitSummary struct {
	TotalReceived int
	TotalImported int
	TotalSkipped  int
	Duplicates    int
	InvalidRows   int
	BatchID       uuid.UUID
	// DuplicateOfBatch flags a re-submission of a file whose hash was
	// committed before. The commit still runs; dedup is per row.
	DuplicateOfBatch *uuid.UUID
}

type ListFilter struct {
	From *time.Time
	To   *time.Time
}

// CommitImport is the transactional boundary of ingestion: canonicalize,
// categorize, fingerprint and insert a bounded batch of rows, skipping
// fingerprints that already exist for the user. Row-level failures are
// counted, never fatal to sibling rows.
func (s *Service) CommitImport(ctx context.Context, userID uuid.UUID, params CommitParams) (*CommitSummary, error) {
	if len(params.Rows) > s.maxRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrRowsLimitExceeded, len(params.Rows), s.maxRows)
	}

	summary := &CommitSummary{TotalReceived: len(params.Rows)}

	entries, catInputs := s.buildEntries(userID, params.Rows, summary)

	if err := s.categorizeEntries(ctx, userID, entries, catInputs); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginCommit(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback()

	fps := make([]string, len(entries))
	for i, e := range entries {
		fps[i] = e.Fingerprint
	}

	existing, err := tx.ExistingFingerprints(ctx, userID, fps)
	if err != nil {
		return nil, fmt.Errorf("check fingerprints: %w", err)
	}

	for _, e := range entries {
		if _, dup := existing[e.Fingerprint]; dup {
			summary.TotalSkipped++
			summary.Duplicates++

			continue
		}

		if err := tx.InsertEntry(ctx, e); err != nil {
			// ErrDuplicateFingerprint here means a concurrent commit won the
			// race. The store absorbs the conflict without aborting the
			// transaction, so the rest of the batch still goes through.
			if errors.Is(err, ErrDuplicateFingerprint) {
				summary.TotalSkipped++
				summary.Duplicates++

				continue
			}

			return nil, fmt.Errorf("insert entry: %w", err)
		}

		// Guards against the same fingerprint appearing twice in one batch.
		existing[e.Fingerprint] = struct{}{}
		summary.TotalImported++
	}

	batch := &ImportBatch{
		UserID:        userID,
		SourceType:    params.SourceType,
		FileName:      params.FileName,
		FileHash:      s.fileHash(params),
		Mapping:       params.Mapping,
		TotalImported: summary.TotalImported,
		TotalSkipped:  summary.TotalSkipped,
	}

	if prev, err := s.repo.FindBatchByFileHash(ctx, userID, batch.FileHash); err == nil && prev != nil {
		summary.DuplicateOfBatch = &prev.ID
	}

	if err := tx.InsertBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	summary.BatchID = batch.ID

	return summary, nil
}

// buildEntries canonicalizes and fingerprints rows, counting invalid ones.
// The returned category inputs run parallel to the entries and carry the
// normalized kind/counterparty text the entry itself does not store.
func (s *Service) buildEntries(userID uuid.UUID, rows []CommitRow, summary *CommitSummary) ([]*Entry, []category.Input) {
	var (
		entries   []*Entry
		catInputs []category.Input
	)

	for _, row := range rows {
		e, err := s.entryFromRow(userID, row)
		if err != nil {
			summary.InvalidRows++
			continue
		}

		var accountID uuid.UUID
		if e.AccountID != nil {
			accountID = *e.AccountID
		} else {
			accountID = *e.CreditCardAccountID
		}

		entries = append(entries, e)
		catInputs = append(catInputs, category.Input{
			DescriptionNormalized:  e.DescriptionNormalized,
			KindNormalized:         s.norm.MatchKey(row.TransactionKindRaw),
			CounterpartyNormalized: s.norm.MatchKey(row.CounterpartyRaw),
			AccountID:              accountID,
			AmountCents:            e.AmountCents,
		})
	}

	return entries, catInputs
}

func (s *Service) entryFromRow(userID uuid.UUID, row CommitRow) (*Entry, error) {
	if err := row.Validate(); err != nil {
		return nil, err
	}

	cents, err := fingerprint.AmountToCents(row.Amount)
	if err != nil {
		return nil, err
	}

	direction := DirectionIn
	if row.Amount.IsNegative() {
		direction = DirectionOut
	}

	e := &Entry{
		UserID:                userID,
		PostedDate:            row.PostedDate,
		AmountCents:           cents,
		Direction:             direction,
		Type:                  defaultType(direction, row.CreditCardAccountID != nil),
		DescriptionRaw:        row.Description,
		DescriptionNormalized: s.norm.MatchKey(row.Description),
		AccountID:             row.AccountID,
		CreditCardAccountID:   row.CreditCardAccountID,
		InstitutionID:         row.InstitutionID,
	}

	if merchantSrc := firstNonEmpty(row.CounterpartyRaw, row.Description); merchantSrc != "" {
		e.MerchantNormalized = s.norm.MerchantKey(merchantSrc)
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}

	e.Fingerprint = s.fingerprintEntry(e)

	return e, nil
}

// defaultType is the pre-reconciliation classification: reconciliation may
// later flip entries to transfer or cc_payment.
func defaultType(direction Direction, onCreditCard bool) EntryType {
	if onCreditCard {
		if direction == DirectionOut {
			return TypeCCPurchase
		}

		return TypeRefund
	}

	if direction == DirectionOut {
		return TypeExpense
	}

	return TypeIncome
}

func (s *Service) fingerprintEntry(e *Entry) string {
	institution := ""
	if e.InstitutionID != nil {
		institution = e.InstitutionID.String()
	}

	return fingerprint.Entry(fingerprint.Input{
		PostedDate:            e.PostedDate,
		AmountCents:           e.AmountCents,
		Type:                  string(e.Type),
		Direction:             string(e.Direction),
		DescriptionNormalized: e.DescriptionNormalized,
		MerchantNormalized:    e.MerchantNormalized,
		AccountRef:            e.AccountRef(),
		InstitutionID:         institution,
	})
}

func (s *Service) categorizeEntries(ctx context.Context, userID uuid.UUID, entries []*Entry, ins []category.Input) error {
	if len(entries) == 0 {
		return nil
	}

	results, err := s.categorizer.CategorizeBatch(ctx, userID, ins)
	if err != nil {
		return fmt.Errorf("categorize: %w", err)
	}

	for i, res := range results {
		entries[i].CategoryID = res.CategoryID
	}

	return nil
}

func (s *Service) fileHash(params CommitParams) string {
	rows := make([]canonical.Row, len(params.Rows))
	for i, r := range params.Rows {
		rows[i] = r.Row
	}

	return fingerprint.File(params.FileName, params.SourceType, rows)
}

// ManualEntryParams is the direct-entry creation path. It goes through the
// same normalization and fingerprinting as imported rows so a manual entry
// and a later import of the same movement collide on the fingerprint.
type ManualEntryParams struct {
	Row                 canonical.Row
	AccountID           *uuid.UUID
	CreditCardAccountID *uuid.UUID
	InstitutionID       *uuid.UUID
}

// CreateManual records a single user-entered movement. Unlike the commit
// pipeline, an existing fingerprint is surfaced as ErrDuplicateFingerprint:
// silently dropping what the user just typed would be worse than telling
// them it already exists.
func (s *Service) CreateManual(ctx context.Context, userID uuid.UUID, params ManualEntryParams) (*Entry, error) {
	e, err := s.entryFromRow(userID, CommitRow{
		Row:                 params.Row,
		AccountID:           params.AccountID,
		CreditCardAccountID: params.CreditCardAccountID,
		InstitutionID:       params.InstitutionID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.categorizeEntries(ctx, userID, []*Entry{e}, []category.Input{{
		DescriptionNormalized:  e.DescriptionNormalized,
		KindNormalized:         s.norm.MatchKey(params.Row.TransactionKindRaw),
		CounterpartyNormalized: s.norm.MatchKey(params.Row.CounterpartyRaw),
		AccountID:              uuid.MustParse(e.AccountRef()),
		AmountCents:            e.AmountCents,
	}}); err != nil {
		return nil, err
	}

	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Entry, error) {
	return s.repo.GetEntry(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, userID, filter)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
