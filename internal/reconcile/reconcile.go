// Package reconcile is the human-in-the-loop side of matching: confirming
// suggested transfers, rejecting them permanently, and linking credit-card
// bill payments.
package reconcile

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/transfer"
)

var (
	// ErrInvalidPair covers transfer-confirmation ownership and state
	// violations. The wrapped message distinguishes not-found, not-yours
	// and already-a-transfer.
	ErrInvalidPair = errors.New("invalid pair")
	// ErrInvalidLink covers credit-card payment ownership/type violations.
	ErrInvalidLink = errors.New("invalid link")
	ErrNotFound    = errors.New("suggestion not found")
)

// PaymentLink records that a bank-side outflow was confirmed as the payment
// of a specific credit-card account's bill.
type PaymentLink struct {
	PaymentEntryID      uuid.UUID
	CreditCardAccountID uuid.UUID
	ConfirmedAt         time.Time
}

// Account is the minimal account shape this core needs for validation.
// Account CRUD itself belongs to external collaborators.
type Account struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Type   string
}

// AccountTypeCredit marks accounts that can receive payment links.
const AccountTypeCredit = "credit"

// InboxSuggestion is a pending suggestion with both legs resolved for
// display.
type InboxSuggestion struct {
	transfer.Suggestion
	OutEntry *ledger.Entry
	InEntry  *ledger.Entry
}

// Inbox is everything awaiting review: pending transfer suggestions plus
// credit-card outflows not yet linked to a payment.
type Inbox struct {
	Suggestions       []*InboxSuggestion
	UnmatchedPayments []*ledger.Entry
}
