package reconciliation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/http/httputil"
	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/reconcile"
	"github.com/contaflow/contaflow/internal/transfer"
)

type Handler struct {
	matcherSvc   *transfer.Service
	reconcileSvc *reconcile.Service
}

func NewHandler(matcherSvc *transfer.Service, reconcileSvc *reconcile.Service) *Handler {
	return &Handler{matcherSvc: matcherSvc, reconcileSvc: reconcileSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/run", h.runMatcher)
	r.Get("/inbox", h.inbox)
	r.Post("/transfers/confirm", h.confirmTransfer)
	r.Post("/transfers/reject", h.rejectTransfer)
	r.Post("/cc-payments/confirm", h.confirmPayment)
}

type runRequest struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

type suggestionDTO struct {
	ID         uuid.UUID `json:"id"`
	OutEntryID uuid.UUID `json:"out_entry_id"`
	InEntryID  uuid.UUID `json:"in_entry_id"`
	Score      float64   `json:"score"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func toSuggestionDTO(s *transfer.Suggestion) suggestionDTO {
	return suggestionDTO{
		ID:         s.ID,
		OutEntryID: s.OutEntryID,
		InEntryID:  s.InEntryID,
		Score:      s.Score,
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
	}
}

func (h *Handler) runMatcher(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req runRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	suggestions, err := h.matcherSvc.Run(r.Context(), userID, req.From, req.To)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]suggestionDTO, len(suggestions))
	for i, s := range suggestions {
		dtos[i] = toSuggestionDTO(s)
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"suggestions": dtos})
}

type entryDTO struct {
	ID                 uuid.UUID  `json:"id"`
	PostedDate         string     `json:"posted_date"`
	AmountCents        int64      `json:"amount_cents"`
	Direction          string     `json:"direction"`
	Type               string     `json:"type"`
	Description        string     `json:"description"`
	MerchantNormalized string     `json:"merchant_normalized,omitempty"`
	AccountID          *uuid.UUID `json:"account_id,omitempty"`
	CreditCardID       *uuid.UUID `json:"credit_card_account_id,omitempty"`
}

func toEntryDTO(e *ledger.Entry) entryDTO {
	return entryDTO{
		ID:                 e.ID,
		PostedDate:         e.PostedDate.Format(time.DateOnly),
		AmountCents:        e.AmountCents,
		Direction:          string(e.Direction),
		Type:               string(e.Type),
		Description:        e.DescriptionRaw,
		MerchantNormalized: e.MerchantNormalized,
		AccountID:          e.AccountID,
		CreditCardID:       e.CreditCardAccountID,
	}
}

type inboxSuggestionDTO struct {
	suggestionDTO
	OutEntry entryDTO `json:"out_entry"`
	InEntry  entryDTO `json:"in_entry"`
}

type inboxResponse struct {
	Suggestions       []inboxSuggestionDTO `json:"suggestions"`
	UnmatchedPayments []entryDTO           `json:"unmatched_payments"`
}

func (h *Handler) inbox(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	inbox, err := h.reconcileSvc.GetInbox(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := inboxResponse{
		Suggestions:       make([]inboxSuggestionDTO, len(inbox.Suggestions)),
		UnmatchedPayments: make([]entryDTO, len(inbox.UnmatchedPayments)),
	}

	for i, s := range inbox.Suggestions {
		resp.Suggestions[i] = inboxSuggestionDTO{
			suggestionDTO: toSuggestionDTO(&s.Suggestion),
			OutEntry:      toEntryDTO(s.OutEntry),
			InEntry:       toEntryDTO(s.InEntry),
		}
	}

	for i, e := range inbox.UnmatchedPayments {
		resp.UnmatchedPayments[i] = toEntryDTO(e)
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

type pairRequest struct {
	OutEntryID uuid.UUID `json:"out_entry_id"`
	InEntryID  uuid.UUID `json:"in_entry_id"`
}

func (h *Handler) confirmTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req pairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.reconcileSvc.ConfirmTransfer(r.Context(), userID, req.OutEntryID, req.InEntryID); err != nil {
		writeReconcileError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type rejectRequest struct {
	SuggestionID *uuid.UUID `json:"suggestion_id,omitempty"`
	OutEntryID   *uuid.UUID `json:"out_entry_id,omitempty"`
	InEntryID    *uuid.UUID `json:"in_entry_id,omitempty"`
}

func (h *Handler) rejectTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.reconcileSvc.RejectSuggestion(r.Context(), userID, reconcile.RejectParams{
		SuggestionID: req.SuggestionID,
		OutEntryID:   req.OutEntryID,
		InEntryID:    req.InEntryID,
	})
	if err != nil {
		writeReconcileError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type paymentRequest struct {
	PaymentEntryID      uuid.UUID `json:"payment_entry_id"`
	CreditCardAccountID uuid.UUID `json:"credit_card_account_id"`
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.reconcileSvc.ConfirmCreditCardPayment(r.Context(), userID, req.PaymentEntryID, req.CreditCardAccountID); err != nil {
		writeReconcileError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeReconcileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reconcile.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, reconcile.ErrInvalidPair), errors.Is(err, reconcile.ErrInvalidLink):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
