package http

import (
	"net/http"

	"karkhana/internal/core"
)

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.repo.ListCategories(r.Context())
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Kind: string(c.Kind)})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.repo.CreateCategory(r.Context(), core.Category{
		Name: req.Name,
		Kind: core.TransactionType(req.Kind),
	})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, categoryResponse{ID: created.ID, Name: created.Name, Kind: string(created.Kind)})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.repo.DeleteCategory(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, ok := monthQuery(w, r)
	if !ok {
		return
	}
	budgets, err := s.repo.ListBudgets(r.Context(), month)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	month, err := core.ParseMonth(req.Month)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid month, want YYYY-MM")
		return
	}
	limit, err := parseAmount(req.Limit)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid limit")
		return
	}
	b, err := s.repo.SetBudget(r.Context(), core.Budget{
		Month:      month,
		CategoryID: req.CategoryID,
		Limit:      limit,
	})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateSummaries()
	respondJSON(w, http.StatusOK, toBudgetResponse(b))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.repo.DeleteBudget(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}
