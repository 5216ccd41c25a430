package entries

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/canonical"
	"github.com/contaflow/contaflow/internal/http/httputil"
	"github.com/contaflow/contaflow/internal/ledger"
)

type Handler struct {
	ledgerSvc *ledger.Service
}

func NewHandler(ledgerSvc *ledger.Service) *Handler {
	return &Handler{ledgerSvc: ledgerSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{entryID}", h.get)
}

type entryDTO struct {
	ID           uuid.UUID  `json:"id"`
	PostedDate   string     `json:"posted_date"`
	AmountCents  int64      `json:"amount_cents"`
	Direction    string     `json:"direction"`
	Type         string     `json:"type"`
	Description  string     `json:"description"`
	Merchant     string     `json:"merchant_normalized,omitempty"`
	AccountID    *uuid.UUID `json:"account_id,omitempty"`
	CreditCardID *uuid.UUID `json:"credit_card_account_id,omitempty"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	IsTransfer   bool       `json:"is_internal_transfer"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toEntryDTO(e *ledger.Entry) entryDTO {
	return entryDTO{
		ID:           e.ID,
		PostedDate:   e.PostedDate.Format(time.DateOnly),
		AmountCents:  e.AmountCents,
		Direction:    string(e.Direction),
		Type:         string(e.Type),
		Description:  e.DescriptionRaw,
		Merchant:     e.MerchantNormalized,
		AccountID:    e.AccountID,
		CreditCardID: e.CreditCardAccountID,
		CategoryID:   e.CategoryID,
		IsTransfer:   e.IsInternalTransfer,
		CreatedAt:    e.CreatedAt,
	}
}

type createRequest struct {
	Date                string     `json:"date"`
	Amount              string     `json:"amount"`
	Description         string     `json:"description"`
	Counterparty        string     `json:"counterparty,omitempty"`
	Kind                string     `json:"kind,omitempty"`
	AccountID           *uuid.UUID `json:"account_id,omitempty"`
	CreditCardAccountID *uuid.UUID `json:"credit_card_account_id,omitempty"`
	InstitutionID       *uuid.UUID `json:"institution_id,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	date, err := canonical.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	amount, err := canonical.ParseMoney(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	entry, err := h.ledgerSvc.CreateManual(r.Context(), userID, ledger.ManualEntryParams{
		Row: canonical.Row{
			PostedDate:         date,
			Amount:             amount,
			Description:        req.Description,
			CounterpartyRaw:    req.Counterparty,
			TransactionKindRaw: req.Kind,
		},
		AccountID:           req.AccountID,
		CreditCardAccountID: req.CreditCardAccountID,
		InstitutionID:       req.InstitutionID,
	})
	if err != nil {
		writeEntryError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toEntryDTO(entry))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := h.ledgerSvc.List(r.Context(), userID, filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]entryDTO, len(list))
	for i, e := range list {
		dtos[i] = toEntryDTO(e)
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"entries": dtos})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	entryID, err := uuid.Parse(chi.URLParam(r, "entryID"))
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	entry, err := h.ledgerSvc.Get(r.Context(), userID, entryID)
	if err != nil {
		writeEntryError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toEntryDTO(entry))
}

func parseListFilter(r *http.Request) (ledger.ListFilter, error) {
	var filter ledger.ListFilter

	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return filter, errors.New("invalid from date")
		}

		filter.From = &from
	}

	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return filter, errors.New("invalid to date")
		}

		filter.To = &to
	}

	return filter, nil
}

func writeEntryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ledger.ErrDuplicateFingerprint):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ledger.ErrInvalidEntry), errors.Is(err, canonical.ErrInvalidDate), errors.Is(err, canonical.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
