// Package transfer finds candidate internal-transfer pairs among a user's
// unmatched ledger entries and persists them as reviewable suggestions.
package transfer

import (
	"time"

	"github.com/google/uuid"
)

// Status is the review state of a suggestion. Confirmed and rejected are
// terminal; a rejected pair is never proposed again.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

// Suggestion is one proposed pairing of an OUT entry with an IN entry. The
// unordered pair is unique per user.
type Suggestion struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	OutEntryID uuid.UUID
	InEntryID  uuid.UUID
	Score      float64
	Status     Status
	CreatedAt  time.Time
}
