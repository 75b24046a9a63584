package http

import (
	"net/http"

	"karkhana/internal/core"
	"karkhana/internal/storage"
)

func (s *Server) handleListDocuments(kind storage.DocKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := s.repo.ListDocuments(r.Context(), kind)
		if err != nil {
			respondStorageError(w, r, err)
			return
		}
		out := make([]documentResponse, 0, len(docs))
		for _, d := range docs {
			out = append(out, toDocumentResponse(d))
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleCreateDocument(kind storage.DocKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req documentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		d, err := req.toDocument()
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		created, err := s.repo.CreateDocument(r.Context(), kind, d)
		if err != nil {
			respondStorageError(w, r, err)
			return
		}
		if kind == storage.DocBill {
			s.invalidateSummaries()
		}
		respondJSON(w, http.StatusCreated, toDocumentResponse(created))
	}
}

func (s *Server) handleGetDocument(kind storage.DocKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		d, err := s.repo.GetDocument(r.Context(), kind, id)
		if err != nil {
			respondStorageError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, toDocumentResponse(d))
	}
}

func (s *Server) handleUpdateDocument(kind storage.DocKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var req documentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		d, err := req.toDocument()
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		updated, err := s.repo.UpdateDocument(r.Context(), kind, id, d)
		if err != nil {
			respondStorageError(w, r, err)
			return
		}
		if kind == storage.DocBill {
			s.invalidateSummaries()
		}
		respondJSON(w, http.StatusOK, toDocumentResponse(updated))
	}
}

func (s *Server) handleDeleteDocument(kind storage.DocKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		if err := s.repo.DeleteDocument(r.Context(), kind, id); err != nil {
			respondStorageError(w, r, err)
			return
		}
		if kind == storage.DocBill {
			s.invalidateSummaries()
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleUpdateBillStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req billStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status := core.BillStatus(req.Status)
	if err := status.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid status, want draft, sent or paid")
		return
	}
	if err := s.repo.UpdateBillStatus(r.Context(), id, status); err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateSummaries()

	bill, err := s.repo.GetDocument(r.Context(), storage.DocBill, id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDocumentResponse(bill))
}
