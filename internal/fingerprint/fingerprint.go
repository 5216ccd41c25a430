// Package fingerprint computes the content hashes that make imports
// idempotent. The entry hash is the sole deduplication identity of a ledger
// entry and must stay byte-for-byte reproducible: any change here breaks
// dedup against already-committed data.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/canonical"
)

var ErrInvalidAmount = errors.New("invalid amount")

// AmountToCents converts a signed decimal amount to positive integer cents,
// rounding half away from zero. Amounts that round to zero or below are
// rejected.
func AmountToCents(amount decimal.Decimal) (int64, error) {
	cents := amount.Abs().Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}

	return cents, nil
}

// Input is the ordered tuple hashed into an entry fingerprint. Optional
// fields hash as empty strings.
type Input struct {
	PostedDate            time.Time
	AmountCents           int64
	Type                  string
	Direction             string
	DescriptionNormalized string
	MerchantNormalized    string
	AccountRef            string
	InstitutionID         string
}

// Entry hashes the input with SHA-256 over the '|'-joined tuple:
// day|cents|type|direction|description|merchant|account|institution.
// The calendar day is taken in UTC.
func Entry(in Input) string {
	fields := []string{
		in.PostedDate.UTC().Format(time.DateOnly),
		strconv.FormatInt(in.AmountCents, 10),
		in.Type,
		in.Direction,
		in.DescriptionNormalized,
		in.MerchantNormalized,
		in.AccountRef,
		in.InstitutionID,
	}

	sum := sha256.Sum256([]byte(strings.Join(fields, "|")))

	return hex.EncodeToString(sum[:])
}

// File hashes a source file's identity: lowercase-trimmed filename, the
// statement kind, and a deterministic serialization of its canonical rows.
// Used to flag re-submission of an unchanged file, not to block it.
func File(fileName, kind string, rows []canonical.Row) string {
	var sb strings.Builder

	sb.WriteString(strings.ToLower(strings.TrimSpace(fileName)))
	sb.WriteByte('|')
	sb.WriteString(kind)

	for _, r := range rows {
		sb.WriteByte('\n')
		sb.WriteString(r.PostedDate.UTC().Format(time.DateOnly))
		sb.WriteByte('|')
		sb.WriteString(r.Amount.StringFixed(2))
		sb.WriteByte('|')
		sb.WriteString(r.Description)
	}

	sum := sha256.Sum256([]byte(sb.String()))

	return hex.EncodeToString(sum[:])
}
