package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tair/orderflow/internal/order/domain"
	"github.com/tair/orderflow/internal/order/usecase/command"
	"github.com/tair/orderflow/internal/order/usecase/query"
	userdomain "github.com/tair/orderflow/internal/user/domain"
	userhttp "github.com/tair/orderflow/internal/user/delivery/http"
	"github.com/tair/orderflow/pkg/logger"
)

// OrderHandler handles HTTP reads and fulfillment transitions for orders
type OrderHandler struct {
	transitionHandler *command.TransitionStatusHandler

	getHandler  *query.GetOrderHandler
	listHandler *query.ListOrdersHandler

	repo  domain.OrderRepository
	users userdomain.UserRepository
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(repo domain.OrderRepository, users userdomain.UserRepository) *OrderHandler {
	return &OrderHandler{
		transitionHandler: command.NewTransitionStatusHandler(repo),
		getHandler:        query.NewGetOrderHandler(repo),
		listHandler:       query.NewListOrdersHandler(repo),
		repo:              repo,
		users:             users,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// GetOrder handles GET /api/orders/{public_id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userhttp.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	publicID := mux.Vars(r)["public_id"]
	order, err := h.getHandler.Handle(query.GetOrderQuery{
		PublicID: publicID,
		UserID:   userID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    order,
	})
}

// ListOrders handles GET /api/orders for the authenticated user
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := userhttp.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.listHandler.Handle(query.ListOrdersQuery{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Uint("user_id", userID).Msg("Failed to list orders")
		respondError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    orders,
	})
}

// ListAllOrders handles GET /api/admin/orders
func (h *OrderHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.listHandler.Handle(query.ListOrdersQuery{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list all orders")
		respondError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    orders,
	})
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status for fulfillment
// transitions (SHIPPED, DELIVERED)
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.transitionHandler.Handle(command.TransitionStatusCommand{
		OrderID:   uint(id),
		NewStatus: req.Status,
		Notes:     req.Notes,
	})
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidOrderState) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Order status updated successfully",
		Data:    order,
	})
}

// DeleteOrder handles DELETE /api/admin/orders/{id}. Hard removal is
// reserved for data hygiene; it does not restore stock.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	if err := h.repo.DeleteWithItems(uint(id)); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		logger.Error(r.Context()).Err(err).Uint64("order_id", id).Msg("Failed to delete order")
		respondError(w, http.StatusInternalServerError, "Failed to delete order")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Order deleted successfully",
	})
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(router *mux.Router) {
	authed := userhttp.AuthMiddleware(h.users)
	admin := userhttp.AdminMiddleware(h.users)

	router.HandleFunc("/api/orders", authed(h.ListOrders)).Methods("GET")
	router.HandleFunc("/api/orders/{public_id}", authed(h.GetOrder)).Methods("GET")
	router.HandleFunc("/api/admin/orders", admin(h.ListAllOrders)).Methods("GET")
	router.HandleFunc("/api/admin/orders/{id}/status", admin(h.UpdateStatus)).Methods("PATCH")
	router.HandleFunc("/api/admin/orders/{id}", admin(h.DeleteOrder)).Methods("DELETE")
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Response{
		Success: false,
		Error:   message,
	})
}
