package http

import (
	"net/http"
	"strconv"

	"karkhana/internal/core"
	"karkhana/internal/storage"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var filter storage.TransactionFilter

	q := r.URL.Query()
	if v := q.Get("month"); v != "" {
		m, err := core.ParseMonth(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid month, want YYYY-MM")
			return
		}
		filter.Month = &m
	}
	if v := q.Get("wallet_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid wallet_id")
			return
		}
		filter.WalletID = &id
	}
	if v := q.Get("contact_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid contact_id")
			return
		}
		filter.ContactID = &id
	}
	if v := q.Get("type"); v != "" {
		t := core.TransactionType(v)
		if err := t.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, "invalid type, want income or expense")
			return
		}
		filter.Type = t
	}

	txns, err := s.ledger.ListTransactions(r.Context(), filter)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponses(txns))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := req.toTransaction()
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.ledger.CreateTransaction(r.Context(), t)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateSummaries()
	respondJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	t, err := s.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := req.toTransaction()
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updated, err := s.ledger.UpdateTransaction(r.Context(), id, t)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateSummaries()
	respondJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}
