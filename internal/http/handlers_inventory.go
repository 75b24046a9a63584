package http

import (
	"net/http"

	"karkhana/internal/core"
)

type supplierRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

type supplierResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (s *Server) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := s.repo.ListSuppliers(r.Context())
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]supplierResponse, 0, len(suppliers))
	for _, sup := range suppliers {
		out = append(out, supplierResponse(sup))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.repo.CreateSupplier(r.Context(), core.Supplier{Name: req.Name, Phone: req.Phone})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, supplierResponse(created))
}

func (s *Server) handleUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req supplierRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	updated, err := s.repo.UpdateSupplier(r.Context(), id, core.Supplier{Name: req.Name, Phone: req.Phone})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, supplierResponse(updated))
}

func (s *Server) handleDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.repo.DeleteSupplier(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type inventoryItemResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Stock        float64 `json:"stock"`
	ReorderLevel float64 `json:"reorder_level"`
	LowStock     bool    `json:"low_stock"`
}

func toInventoryItemResponse(it core.InventoryItem) inventoryItemResponse {
	return inventoryItemResponse{
		ID:           it.ID,
		Name:         it.Name,
		Unit:         it.Unit,
		Stock:        it.Stock,
		ReorderLevel: it.ReorderLevel,
		LowStock:     it.ReorderLevel > 0 && it.Stock <= it.ReorderLevel,
	}
}

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.ListInventory(r.Context())
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]inventoryItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toInventoryItemResponse(it))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var req inventoryItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.repo.CreateInventoryItem(r.Context(), core.InventoryItem{
		Name:         req.Name,
		Unit:         req.Unit,
		Stock:        req.Stock,
		ReorderLevel: req.ReorderLevel,
	})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toInventoryItemResponse(created))
}

func (s *Server) handleUpdateInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req inventoryItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	updated, err := s.repo.UpdateInventoryItem(r.Context(), id, core.InventoryItem{
		Name:         req.Name,
		Unit:         req.Unit,
		Stock:        req.Stock,
		ReorderLevel: req.ReorderLevel,
	})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toInventoryItemResponse(updated))
}

func (s *Server) handleDeleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.repo.DeleteInventoryItem(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := s.repo.ListPurchases(r.Context())
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]purchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, toPurchaseResponse(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := req.toPurchase()
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.repo.CreatePurchase(r.Context(), p)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateSummaries()
	respondJSON(w, http.StatusCreated, toPurchaseResponse(created))
}

func (s *Server) handleGetPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := s.repo.GetPurchase(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPurchaseResponse(p))
}

type shoppingItemResponse struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Done        bool    `json:"done"`
}

func (s *Server) handleListShoppingItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.ListShoppingItems(r.Context())
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]shoppingItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, shoppingItemResponse(it))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddShoppingItem(w http.ResponseWriter, r *http.Request) {
	var req shoppingItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.repo.AddShoppingItem(r.Context(), core.ShoppingItem{
		Description: req.Description,
		Quantity:    req.Quantity,
	})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, shoppingItemResponse(created))
}

func (s *Server) handleSetShoppingItemDone(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req shoppingItemDoneRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.repo.SetShoppingItemDone(r.Context(), id, req.Done); err != nil {
		respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteShoppingItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.repo.DeleteShoppingItem(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
