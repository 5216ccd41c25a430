package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=reconcile
type Repository interface {
	// GetEntry is deliberately unscoped by user: the service needs to tell
	// "not found" apart from "not yours".
	GetEntry(ctx context.Context, id uuid.UUID) (*ledger.Entry, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)

	// ConfirmTransferPair atomically flips both entries to transfer and
	// marks any pending suggestion for the pair confirmed.
	ConfirmTransferPair(ctx context.Context, userID, outEntryID, inEntryID uuid.UUID) error
	// RejectByID marks the user's suggestion rejected, returning the number
	// of rows matched. An already-rejected suggestion matches again so the
	// call is idempotent; confirmed suggestions never match.
	RejectByID(ctx context.Context, userID, suggestionID uuid.UUID) (int64, error)
	// RejectPair marks any suggestion for the pair rejected, inserting a
	// rejected row if the matcher never proposed it, so a future run stays
	// suppressed.
	RejectPair(ctx context.Context, userID, outEntryID, inEntryID uuid.UUID) error
	// ConfirmPayment atomically creates the payment link and sets the
	// entry's type to cc_payment.
	ConfirmPayment(ctx context.Context, userID uuid.UUID, link *PaymentLink) error

	PendingSuggestions(ctx context.Context, userID uuid.UUID) ([]*InboxSuggestion, error)
	UnlinkedCCOutflows(ctx context.Context, userID uuid.UUID) ([]*ledger.Entry, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ConfirmTransfer promotes both legs of a pair to internal transfers. The
// suggestion state machine is pending → confirmed, terminal.
func (s *Service) ConfirmTransfer(ctx context.Context, userID, outEntryID, inEntryID uuid.UUID) error {
	if _, err := s.transferLeg(ctx, userID, outEntryID); err != nil {
		return err
	}

	if _, err := s.transferLeg(ctx, userID, inEntryID); err != nil {
		return err
	}

	if err := s.repo.ConfirmTransferPair(ctx, userID, outEntryID, inEntryID); err != nil {
		return fmt.Errorf("confirm transfer pair: %w", err)
	}

	return nil
}

// transferLeg validates one entry of a candidate pair.
func (s *Service) transferLeg(ctx context.Context, userID, entryID uuid.UUID) (*ledger.Entry, error) {
	e, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, fmt.Errorf("%w: entry %s not found", ErrInvalidPair, entryID)
		}

		return nil, fmt.Errorf("get entry: %w", err)
	}

	if e.UserID != userID {
		return nil, fmt.Errorf("%w: entry %s not yours", ErrInvalidPair, entryID)
	}

	if e.Type == ledger.TypeTransfer {
		return nil, fmt.Errorf("%w: entry %s already a transfer", ErrInvalidPair, entryID)
	}

	return e, nil
}

// RejectParams identifies a suggestion either directly or by its pair.
type RejectParams struct {
	SuggestionID *uuid.UUID
	OutEntryID   *uuid.UUID
	InEntryID    *uuid.UUID
}

// RejectSuggestion marks a suggestion rejected. Rejecting a pair the matcher
// never proposed still records the rejection so the pair is pre-suppressed.
func (s *Service) RejectSuggestion(ctx context.Context, userID uuid.UUID, params RejectParams) error {
	if params.SuggestionID != nil {
		affected, err := s.repo.RejectByID(ctx, userID, *params.SuggestionID)
		if err != nil {
			return fmt.Errorf("reject suggestion: %w", err)
		}

		if affected == 0 {
			return ErrNotFound
		}

		return nil
	}

	if params.OutEntryID == nil || params.InEntryID == nil {
		return fmt.Errorf("%w: missing pair", ErrInvalidPair)
	}

	if err := s.repo.RejectPair(ctx, userID, *params.OutEntryID, *params.InEntryID); err != nil {
		return fmt.Errorf("reject pair: %w", err)
	}

	return nil
}

// ConfirmCreditCardPayment links a bank-side outflow to the credit-card
// account it paid and retypes the entry to cc_payment.
func (s *Service) ConfirmCreditCardPayment(ctx context.Context, userID, paymentEntryID, creditCardAccountID uuid.UUID) error {
	e, err := s.repo.GetEntry(ctx, paymentEntryID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return fmt.Errorf("%w: entry %s not found", ErrInvalidLink, paymentEntryID)
		}

		return fmt.Errorf("get entry: %w", err)
	}

	if e.UserID != userID {
		return fmt.Errorf("%w: entry %s not yours", ErrInvalidLink, paymentEntryID)
	}

	account, err := s.repo.GetAccount(ctx, creditCardAccountID)
	if err != nil {
		return fmt.Errorf("%w: account %s not found", ErrInvalidLink, creditCardAccountID)
	}

	if account.UserID != userID {
		return fmt.Errorf("%w: account %s not yours", ErrInvalidLink, creditCardAccountID)
	}

	if account.Type != AccountTypeCredit {
		return fmt.Errorf("%w: account %s is not a credit account", ErrInvalidLink, creditCardAccountID)
	}

	link := &PaymentLink{
		PaymentEntryID:      paymentEntryID,
		CreditCardAccountID: creditCardAccountID,
	}

	if err := s.repo.ConfirmPayment(ctx, userID, link); err != nil {
		return fmt.Errorf("confirm payment: %w", err)
	}

	return nil
}

// GetInbox returns everything awaiting the user's review.
func (s *Service) GetInbox(ctx context.Context, userID uuid.UUID) (*Inbox, error) {
	suggestions, err := s.repo.PendingSuggestions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("pending suggestions: %w", err)
	}

	payments, err := s.repo.UnlinkedCCOutflows(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("unlinked cc outflows: %w", err)
	}

	return &Inbox{Suggestions: suggestions, UnmatchedPayments: payments}, nil
}
