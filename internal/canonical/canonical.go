// Package canonical defines the source-agnostic row shape that every parsed
// transaction line is reduced to before categorization and persistence.
package canonical

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	// ErrNotTransaction marks lines that parse but do not describe a money
	// movement, such as running-balance summaries.
	ErrNotTransaction = errors.New("not a transaction line")
)

// Row is one canonical transaction line. Amount is signed: negative for
// money leaving the account, positive for money entering it.
type Row struct {
	PostedDate         time.Time
	Amount             decimal.Decimal
	Description        string
	CounterpartyRaw    string
	TransactionKindRaw string
}

// Validate reports whether the row is committable. Amounts below one cent in
// magnitude are non-transaction noise, not errors worth surfacing per row.
func (r Row) Validate() error {
	if r.PostedDate.IsZero() {
		return ErrInvalidDate
	}

	if r.Amount.IsZero() || r.Amount.Abs().LessThan(decimal.New(1, -2)) {
		return ErrInvalidAmount
	}

	return nil
}

// dateLayouts are tried in order when resolving dates from source text.
var dateLayouts = []string{
	"02-01-2006",
	"02/01/2006",
	"2006-01-02",
	"02/01/06",
}

// ParseDate resolves a date string in any of the supported source layouts.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrInvalidDate
}
