package http

import (
	"net/http"

	"karkhana/internal/core"
)

func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.repo.ListWallets(r.Context())
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]walletResponse, 0, len(wallets))
	for _, wallet := range wallets {
		out = append(out, toWalletResponse(wallet))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wallet := core.Wallet{Name: req.Name, Type: core.WalletType(req.Type)}
	if req.Balance != "" {
		opening, err := parseRate(req.Balance)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid opening balance")
			return
		}
		wallet.Balance = opening
	}

	created, err := s.repo.CreateWallet(r.Context(), wallet)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateSummaries()
	respondJSON(w, http.StatusCreated, toWalletResponse(created))
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	wallet, err := s.repo.GetWallet(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toWalletResponse(wallet))
}

func (s *Server) handleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req walletRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	updated, err := s.repo.UpdateWallet(r.Context(), id, core.Wallet{
		Name: req.Name,
		Type: core.WalletType(req.Type),
	})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toWalletResponse(updated))
}

func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.repo.DeleteWallet(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReconcileAllWallets(w http.ResponseWriter, r *http.Request) {
	results, err := s.repo.ReconcileAllWallets(r.Context())
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]reconcileResponse, 0, len(results))
	for _, rr := range results {
		out = append(out, toReconcileResponse(rr))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleReconcileWallet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	rr, err := s.ledger.ReconcileWallet(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toReconcileResponse(rr))
}
