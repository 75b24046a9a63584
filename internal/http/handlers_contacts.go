package http

import (
	"net/http"

	"karkhana/internal/core"
	"karkhana/internal/finance"
)

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.repo.ListContacts(r.Context())
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, contactsToResponse(contacts))
}

type contactResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func contactsToResponse(contacts []core.Contact) []contactResponse {
	out := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, contactResponse(c))
	}
	return out
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.repo.CreateContact(r.Context(), core.Contact{
		Name: req.Name, Phone: req.Phone, Email: req.Email,
	})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, contactResponse(created))
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	c, err := s.repo.GetContact(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, contactResponse(c))
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	updated, err := s.repo.UpdateContact(r.Context(), id, core.Contact{
		Name: req.Name, Phone: req.Phone, Email: req.Email,
	})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, contactResponse(updated))
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.repo.DeleteContact(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContactBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	balance, err := s.ledger.ContactBalance(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, contactBalanceResponse{
		ContactID: id,
		Balance:   balance.String(),
		Standing:  string(finance.Standing(balance)),
	})
}

type contactLedgerResponse struct {
	ContactID    int64                 `json:"contact_id"`
	Balance      string                `json:"balance"`
	Standing     string                `json:"standing"`
	Transactions []transactionResponse `json:"transactions"`
}

func (s *Server) handleContactTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	txns, err := s.repo.ContactLedger(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	balance := finance.ContactBalance(txns)
	respondJSON(w, http.StatusOK, contactLedgerResponse{
		ContactID:    id,
		Balance:      balance.String(),
		Standing:     string(finance.Standing(balance)),
		Transactions: toTransactionResponses(txns),
	})
}

func (s *Server) handleSettleContact(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req settleRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	settlement, settled, err := s.ledger.SettleContact(r.Context(), id, req.WalletID)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	if !settled {
		respondJSON(w, http.StatusOK, settleResponse{Settled: false})
		return
	}
	s.invalidateSummaries()
	resp := toTransactionResponse(settlement)
	respondJSON(w, http.StatusCreated, settleResponse{Settled: true, Transaction: &resp})
}
