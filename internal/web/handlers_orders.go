package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/krishdev/permithub/internal/schema"
)

// handleCreateOrder stores a new order. The id is the external order id and
// must be supplied by the caller.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var order schema.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "BAD_REQUEST"})
		return
	}
	if order.ID == "" {
		order.ID = order.OrderID
	}
	if order.ID == "" {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "order id is required", Code: "BAD_REQUEST"})
		return
	}
	if order.OrderID == "" {
		order.OrderID = order.ID
	}
	now := time.Now().Format(time.RFC3339)
	if order.CreatedAt == "" {
		order.CreatedAt = now
	}
	if order.UpdatedAt == "" {
		order.UpdatedAt = now
	}

	if err := s.orders.Save(&order); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// handleListOrders returns every order.
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.List()
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []schema.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// handleGetOrder returns one order by id.
func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, found, err := s.orders.Get(id)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if !found {
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: "order not found", Code: "NOT_FOUND"})
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// handleUpdateOrder replaces the order at the path id with the request body.
func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var order schema.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "BAD_REQUEST"})
		return
	}
	order.ID = id
	if order.OrderID == "" {
		order.OrderID = id
	}
	if order.UpdatedAt == "" {
		order.UpdatedAt = time.Now().Format(time.RFC3339)
	}

	if err := s.orders.Save(&order); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// handleDeleteOrder removes an order; 204 regardless of prior existence.
func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.orders.Delete(id); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReconcile triggers one synchronous reconciliation run against the
// return sheet and reports what it did.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if s.sync == nil {
		respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "sheet sync is disabled", Code: "SYNC_DISABLED"})
		return
	}

	res, err := s.sync.Run(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
