package mockapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pharmadash/pharmadash/internal/api"
)

func (s *Server) handleSuppliers(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") != "false"
	writeJSON(w, http.StatusOK, s.store.Suppliers(activeOnly))
}

func (s *Server) handleSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid supplier id")
		return
	}
	supplier, ok := s.store.Supplier(id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Supplier not found")
		return
	}
	writeJSON(w, http.StatusOK, supplier)
}

func (s *Server) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req api.SupplierCreate
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.store.CreateSupplier(req))
}

func (s *Server) handleUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid supplier id")
		return
	}
	var req api.SupplierCreate
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	supplier, ok := s.store.UpdateSupplier(id, req)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Supplier not found")
		return
	}
	writeJSON(w, http.StatusOK, supplier)
}

func (s *Server) handleDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid supplier id")
		return
	}
	if !s.store.DeleteSupplier(id) {
		writeDetail(w, http.StatusNotFound, "Supplier not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Supplier deactivated"})
}

func (s *Server) handleCreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req api.PurchaseOrderCreate
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	po, ok := s.store.CreatePurchaseOrder(req)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Supplier not found or inactive")
		return
	}
	writeJSON(w, http.StatusCreated, po)
}

func (s *Server) handlePurchaseOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	supplierID, _ := strconv.Atoi(q.Get("supplier_id"))
	writeJSON(w, http.StatusOK, s.store.PurchaseOrders(supplierID, q.Get("status")))
}

func (s *Server) handleAIAnalysis(w http.ResponseWriter, r *http.Request) {
	suppliers := s.store.Suppliers(true)
	analysis := "Based on current order history, " + strconv.Itoa(len(suppliers)) +
		" active suppliers are available. Lead times range from 3 to 5 days; " +
		"prefer the shortest lead time for critical reorders."
	writeJSON(w, http.StatusOK, api.AIAnalysis{Analysis: analysis})
}
