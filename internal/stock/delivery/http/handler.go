package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tair/orderflow/internal/stock/domain"
	"github.com/tair/orderflow/internal/stock/usecase/command"
	"github.com/tair/orderflow/internal/stock/usecase/query"
	userdomain "github.com/tair/orderflow/internal/user/domain"
	userhttp "github.com/tair/orderflow/internal/user/delivery/http"
	"github.com/tair/orderflow/pkg/logger"
)

// StockHandler handles HTTP requests for the stock ledger
type StockHandler struct {
	createHandler *command.CreateInitialStockHandler
	adjustHandler *command.AdjustStockHandler

	getHandler       *query.GetStockHandler
	listHandler      *query.ListStockHandler
	movementsHandler *query.ListMovementsHandler

	users userdomain.UserRepository
}

// NewStockHandler creates a new stock handler
func NewStockHandler(repo domain.StockRepository, users userdomain.UserRepository) *StockHandler {
	return &StockHandler{
		createHandler:    command.NewCreateInitialStockHandler(repo),
		adjustHandler:    command.NewAdjustStockHandler(repo),
		getHandler:       query.NewGetStockHandler(repo),
		listHandler:      query.NewListStockHandler(repo),
		movementsHandler: query.NewListMovementsHandler(repo),
		users:            users,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateStock handles POST /api/stock
func (h *StockHandler) CreateStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKU      string `json:"sku"`
		Quantity int    `json:"quantity"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.createHandler.Handle(command.CreateInitialStockCommand{
		SKU:      req.SKU,
		Quantity: req.Quantity,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateStock) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		logger.Logger.Error().Err(err).Str("sku", req.SKU).Msg("Failed to create initial stock")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Stock item created successfully",
		Data:    item,
	})
}

// AdjustStock handles POST /api/stock/{id}/adjust
func (h *StockHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid stock item ID")
		return
	}

	var req struct {
		Delta  int    `json:"delta"`
		Reason string `json:"reason"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.adjustHandler.Handle(command.AdjustStockCommand{
		StockItemID: uint(id),
		Delta:       req.Delta,
		Reason:      req.Reason,
	})
	if err != nil {
		if errors.Is(err, domain.ErrStockItemNotFound) {
			respondError(w, http.StatusNotFound, "Stock item not found")
			return
		}
		logger.Logger.Error().Err(err).Uint64("stock_item_id", id).Msg("Failed to adjust stock")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stock adjusted successfully",
		Data:    item,
	})
}

// GetStock handles GET /api/stock/{id}
func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid stock item ID")
		return
	}

	item, err := h.getHandler.Handle(query.GetStockQuery{ID: uint(id)})
	if err != nil {
		respondError(w, http.StatusNotFound, "Stock item not found")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    item,
	})
}

// GetStockBySKU handles GET /api/stock/sku/{sku}
func (h *StockHandler) GetStockBySKU(w http.ResponseWriter, r *http.Request) {
	sku := mux.Vars(r)["sku"]

	item, err := h.getHandler.Handle(query.GetStockQuery{SKU: sku})
	if err != nil {
		respondError(w, http.StatusNotFound, "Stock item not found")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    item,
	})
}

// ListStock handles GET /api/stock
func (h *StockHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.listHandler.Handle(query.ListStockQuery{Limit: limit, Offset: offset})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list stock items")
		respondError(w, http.StatusInternalServerError, "Failed to list stock items")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    items,
	})
}

// ListMovements handles GET /api/stock/{id}/movements
func (h *StockHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid stock item ID")
		return
	}

	movements, err := h.movementsHandler.Handle(query.ListMovementsQuery{StockItemID: uint(id)})
	if err != nil {
		if errors.Is(err, domain.ErrStockItemNotFound) {
			respondError(w, http.StatusNotFound, "Stock item not found")
			return
		}
		logger.Logger.Error().Err(err).Uint64("stock_item_id", id).Msg("Failed to list movements")
		respondError(w, http.StatusInternalServerError, "Failed to list movements")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    movements,
	})
}

// RegisterRoutes registers all stock routes. Mutations require an admin.
func (h *StockHandler) RegisterRoutes(router *mux.Router) {
	admin := userhttp.AdminMiddleware(h.users)
	authed := userhttp.AuthMiddleware(h.users)

	router.HandleFunc("/api/stock", admin(h.CreateStock)).Methods("POST")
	router.HandleFunc("/api/stock", authed(h.ListStock)).Methods("GET")
	router.HandleFunc("/api/stock/sku/{sku}", authed(h.GetStockBySKU)).Methods("GET")
	router.HandleFunc("/api/stock/{id}", authed(h.GetStock)).Methods("GET")
	router.HandleFunc("/api/stock/{id}/adjust", admin(h.AdjustStock)).Methods("POST")
	router.HandleFunc("/api/stock/{id}/movements", admin(h.ListMovements)).Methods("GET")
}

// RegisterHealthCheck registers the health check endpoint
func (h *StockHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Service is healthy",
		})
	}).Methods("GET")
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
