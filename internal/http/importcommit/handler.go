package importcommit

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/canonical"
	"github.com/contaflow/contaflow/internal/http/httputil"
	"github.com/contaflow/contaflow/internal/importer"
	"github.com/contaflow/contaflow/internal/ledger"
)

type Handler struct {
	importSvc *importer.Service
	ledgerSvc *ledger.Service
}

func NewHandler(importSvc *importer.Service, ledgerSvc *ledger.Service) *Handler {
	return &Handler{importSvc: importSvc, ledgerSvc: ledgerSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importFile)
	r.Post("/commit", h.commitRows)
}

type summaryResponse struct {
	TotalReceived    int        `json:"total_received"`
	TotalImported    int        `json:"total_imported"`
	TotalSkipped     int        `json:"total_skipped"`
	Duplicates       int        `json:"duplicates"`
	InvalidRows      int        `json:"invalid_rows"`
	BatchID          uuid.UUID  `json:"batch_id"`
	DuplicateOfBatch *uuid.UUID `json:"duplicate_of_batch,omitempty"`
}

func toSummaryResponse(s *ledger.CommitSummary) summaryResponse {
	return summaryResponse{
		TotalReceived:    s.TotalReceived,
		TotalImported:    s.TotalImported,
		TotalSkipped:     s.TotalSkipped,
		Duplicates:       s.Duplicates,
		InvalidRows:      s.InvalidRows,
		BatchID:          s.BatchID,
		DuplicateOfBatch: s.DuplicateOfBatch,
	}
}

// importFile parses an uploaded source file and commits the resulting rows
// in one call.
func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	source := importer.SourceType(r.FormValue("source"))
	if source == "" {
		http.Error(w, "source field is required", http.StatusBadRequest)
		return
	}

	accountID, ccAccountID, err := parseAccountRefs(r.FormValue("account_id"), r.FormValue("credit_card_account_id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := h.importSvc.Parse(source, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	commitRows := make([]ledger.CommitRow, len(rows))
	for i, row := range rows {
		commitRows[i] = ledger.CommitRow{
			Row:                 row,
			AccountID:           accountID,
			CreditCardAccountID: ccAccountID,
		}
	}

	summary, err := h.ledgerSvc.CommitImport(r.Context(), userID, ledger.CommitParams{
		SourceType: string(source),
		FileName:   header.Filename,
		Rows:       commitRows,
	})
	if err != nil {
		writeCommitError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toSummaryResponse(summary))
}

type rowDTO struct {
	Date                string     `json:"date"`
	Amount              string     `json:"amount"`
	Description         string     `json:"description"`
	Counterparty        string     `json:"counterparty,omitempty"`
	Kind                string     `json:"kind,omitempty"`
	AccountID           *uuid.UUID `json:"account_id,omitempty"`
	CreditCardAccountID *uuid.UUID `json:"credit_card_account_id,omitempty"`
	InstitutionID       *uuid.UUID `json:"institution_id,omitempty"`
}

type commitRequest struct {
	SourceType string   `json:"source_type"`
	FileName   string   `json:"file_name"`
	Mapping    string   `json:"mapping,omitempty"`
	Rows       []rowDTO `json:"rows"`
}

// commitRows commits pre-parsed rows. Unparseable dates and amounts count
// as invalid rows in the summary instead of failing the request.
func (h *Handler) commitRows(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows := make([]ledger.CommitRow, len(req.Rows))
	for i, dto := range req.Rows {
		rows[i] = toCommitRow(dto)
	}

	summary, err := h.ledgerSvc.CommitImport(r.Context(), userID, ledger.CommitParams{
		SourceType: req.SourceType,
		FileName:   req.FileName,
		Mapping:    req.Mapping,
		Rows:       rows,
	})
	if err != nil {
		writeCommitError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// toCommitRow converts leniently: rows with bad dates or amounts keep zero
// values and are counted invalid by the pipeline.
func toCommitRow(dto rowDTO) ledger.CommitRow {
	row := canonical.Row{
		Description:        dto.Description,
		CounterpartyRaw:    dto.Counterparty,
		TransactionKindRaw: dto.Kind,
	}

	if date, err := canonical.ParseDate(dto.Date); err == nil {
		row.PostedDate = date
	}

	if amount, err := canonical.ParseMoney(dto.Amount); err == nil {
		row.Amount = amount
	}

	return ledger.CommitRow{
		Row:                 row,
		AccountID:           dto.AccountID,
		CreditCardAccountID: dto.CreditCardAccountID,
		InstitutionID:       dto.InstitutionID,
	}
}

func parseAccountRefs(accountID, ccAccountID string) (*uuid.UUID, *uuid.UUID, error) {
	switch {
	case accountID != "":
		id, err := uuid.Parse(accountID)
		if err != nil {
			return nil, nil, errors.New("invalid account_id")
		}

		return &id, nil, nil
	case ccAccountID != "":
		id, err := uuid.Parse(ccAccountID)
		if err != nil {
			return nil, nil, errors.New("invalid credit_card_account_id")
		}

		return nil, &id, nil
	}

	return nil, nil, errors.New("account_id or credit_card_account_id is required")
}

func writeCommitError(w http.ResponseWriter, err error) {
	if errors.Is(err, ledger.ErrRowsLimitExceeded) {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	http.Error(w, err.Error(), http.StatusInternalServerError)
}
