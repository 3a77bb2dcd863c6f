package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/orderflow/internal/checkout/domain"
	"github.com/tair/orderflow/internal/checkout/usecase/command"
	"github.com/tair/orderflow/internal/checkout/usecase/query"
	orderdomain "github.com/tair/orderflow/internal/order/domain"
	stockdomain "github.com/tair/orderflow/internal/stock/domain"
	userdomain "github.com/tair/orderflow/internal/user/domain"
	userhttp "github.com/tair/orderflow/internal/user/delivery/http"
	"github.com/tair/orderflow/pkg/logger"
)

// CheckoutHandler handles the order placement and payment confirmation
// workflows
type CheckoutHandler struct {
	placeHandler   *command.PlaceOrderHandler
	confirmHandler *command.ConfirmOrderHandler
	cancelHandler  *command.CancelOrderHandler

	validateHandler *query.ValidateStockHandler

	orders orderdomain.OrderRepository
	users  userdomain.UserRepository

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(
	placeHandler *command.PlaceOrderHandler,
	confirmHandler *command.ConfirmOrderHandler,
	cancelHandler *command.CancelOrderHandler,
	validateHandler *query.ValidateStockHandler,
	orders orderdomain.OrderRepository,
	users userdomain.UserRepository,
) *CheckoutHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_requests_total",
			Help: "Total number of checkout requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_request_duration_seconds",
			Help:    "Duration of checkout requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &CheckoutHandler{
		placeHandler:    placeHandler,
		confirmHandler:  confirmHandler,
		cancelHandler:   cancelHandler,
		validateHandler: validateHandler,
		orders:          orders,
		users:           users,
		requestCounter:  requestCounter,
		requestLatency:  requestLatency,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *CheckoutHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

type lineRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// PlaceOrder handles POST /api/orders
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userhttp.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		ShippingAddress string        `json:"shipping_address"`
		ShippingCost    float64       `json:"shipping_cost"`
		PaymentMethod   string        `json:"payment_method"`
		Notes           string        `json:"notes"`
		Lines           []lineRequest `json:"lines"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.PlaceOrderCommand{
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		ShippingCost:    req.ShippingCost,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	}
	for _, line := range req.Lines {
		cmd.Lines = append(cmd.Lines, domain.Line{SKU: line.SKU, Quantity: line.Quantity})
	}

	order, err := h.placeHandler.Handle(r.Context(), cmd)
	if err != nil {
		h.respondPlaceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Order created successfully",
		Data:    order,
	})
}

func (h *CheckoutHandler) respondPlaceError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		respondJSON(w, http.StatusConflict, Response{
			Success: false,
			Error:   insufficient.Error(),
			Data: map[string]interface{}{
				"sku":       insufficient.SKU,
				"requested": insufficient.Requested,
				"available": insufficient.Available,
			},
		})
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, userdomain.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error(r.Context()).Err(err).Msg("Failed to place order")
		respondError(w, http.StatusBadRequest, err.Error())
	}
}

// ConfirmOrder handles POST /api/orders/{public_id}/confirm
func (h *CheckoutHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userhttp.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.confirmHandler.Handle(r.Context(), command.ConfirmOrderCommand{
		UserID:        userID,
		OrderPublicID: mux.Vars(r)["public_id"],
		SessionID:     req.SessionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, orderdomain.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, domain.ErrPaymentVerification):
			respondError(w, http.StatusBadGateway, err.Error())
		case errors.Is(err, orderdomain.ErrInvalidOrderState):
			respondError(w, http.StatusConflict, err.Error())
		default:
			logger.Error(r.Context()).Err(err).Msg("Failed to confirm order")
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    order,
	})
}

// CancelOrder handles POST /api/orders/{public_id}/cancel
func (h *CheckoutHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userhttp.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	order, err := h.orders.FindByPublicID(mux.Vars(r)["public_id"], userID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}

	if err := h.cancelHandler.Handle(r.Context(), order, "cancelled by customer", stockdomain.ReasonCustomerCancel); err != nil {
		if errors.Is(err, orderdomain.ErrInvalidOrderState) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		logger.Error(r.Context()).Err(err).Msg("Failed to cancel order")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Order cancelled successfully",
		Data:    order,
	})
}

// ValidateStock handles POST /api/stock/validate, a read-only pre-check
// that reserves nothing
func (h *CheckoutHandler) ValidateStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lines []lineRequest `json:"lines"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	q := query.ValidateStockQuery{}
	for _, line := range req.Lines {
		q.Lines = append(q.Lines, domain.Line{SKU: line.SKU, Quantity: line.Quantity})
	}

	result, err := h.validateHandler.Handle(r.Context(), q)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// RegisterRoutes registers all checkout routes
func (h *CheckoutHandler) RegisterRoutes(router *mux.Router) {
	authed := userhttp.AuthMiddleware(h.users)

	router.HandleFunc("/api/orders",
		h.metricsMiddleware("/api/orders", authed(h.PlaceOrder))).Methods("POST")
	router.HandleFunc("/api/orders/{public_id}/confirm",
		h.metricsMiddleware("/api/orders/confirm", authed(h.ConfirmOrder))).Methods("POST")
	router.HandleFunc("/api/orders/{public_id}/cancel",
		h.metricsMiddleware("/api/orders/cancel", authed(h.CancelOrder))).Methods("POST")
	router.HandleFunc("/api/stock/validate",
		h.metricsMiddleware("/api/stock/validate", authed(h.ValidateStock))).Methods("POST")
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
