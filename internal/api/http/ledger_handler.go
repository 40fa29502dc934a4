package http

import (
	"net/http"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/service"
)

type LedgerHandler struct {
	ledger service.LedgerService
}

func NewLedgerHandler(ledger service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

type transactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
	Total        int32                `json:"total"`
}

func (h *LedgerHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationFromRequest(r)
	txs, total, err := h.ledger.GetTransactions(r.Context(), userIDFromContext(r.Context()), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionsResponse{Transactions: txs, Total: total})
}

func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ledger.GetLedgerSummary(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
