// Package ledger owns the authoritative per-user ledger: the entry model and
// the commit pipeline that turns canonical rows into at-most-once recorded
// entries.
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// EntryType classifies a money movement.
type EntryType string

const (
	TypeIncome     EntryType = "income"
	TypeExpense    EntryType = "expense"
	TypeTransfer   EntryType = "transfer"
	TypeCCPurchase EntryType = "cc_purchase"
	TypeCCPayment  EntryType = "cc_payment"
	TypeFee        EntryType = "fee"
	TypeRefund     EntryType = "refund"
)

// Direction says which way the money moved. Amounts are always stored
// positive; direction carries the sign.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Entry is one money movement as recorded by one account.
type Entry struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	PostedDate            time.Time // calendar day; time component ignored for matching
	AmountCents           int64     // always > 0
	Direction             Direction
	Type                  EntryType
	DescriptionRaw        string
	DescriptionNormalized string
	MerchantNormalized    string
	AccountID             *uuid.UUID
	CreditCardAccountID   *uuid.UUID
	InstitutionID         *uuid.UUID
	CategoryID            *uuid.UUID
	Fingerprint           string
	IsInternalTransfer    bool
	CreatedAt             time.Time
	UpdatedAt             *time.Time
}

// Validate enforces the entry invariants before persistence.
func (e *Entry) Validate() error {
	if e.AmountCents <= 0 {
		return ErrInvalidEntry
	}

	if (e.AccountID == nil) == (e.CreditCardAccountID == nil) {
		return ErrInvalidEntry
	}

	if (e.Type == TypeTransfer) != e.IsInternalTransfer {
		return ErrInvalidEntry
	}

	if e.Direction != DirectionIn && e.Direction != DirectionOut {
		return ErrInvalidEntry
	}

	return nil
}

// AccountRef returns the string identity of whichever account reference is
// set, as hashed into the fingerprint.
func (e *Entry) AccountRef() string {
	if e.AccountID != nil {
		return e.AccountID.String()
	}

	if e.CreditCardAccountID != nil {
		return e.CreditCardAccountID.String()
	}

	return ""
}

// ImportBatch records one file/commit event. Immutable after creation except
// the totals written at the end of the commit.
type ImportBatch struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	SourceType    string
	FileName      string
	FileHash      string
	Mapping       string
	TotalImported int
	TotalSkipped  int
	ImportedAt    time.Time
}
